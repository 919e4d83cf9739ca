package insight

import (
	"net/http"

	"fintrack/internal/peer"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "SUCCESS"
	statusFailed  = "FAILED"
)

// checkPeer lists categories from one peer and reports the outcome under countKey.
func checkPeer(c *gin.Context, client *peer.Client, path, name, countKey string) gin.H {
	cats, err := categories(c.Request.Context(), client, path)
	if err != nil {
		return gin.H{
			"status":  statusFailed,
			"message": "Failed to connect to " + name + ": " + err.Error(),
		}
	}
	return gin.H{
		"status":  statusSuccess,
		"message": "Successfully connected to " + name,
		countKey:  len(cats),
	}
}

// @Summary Check peer connectivity
// @Tags diagnostics
// @Produce json
// @Success 200 {object} map[string]interface{} "Status of each peer"
// @Router /test/communication-status [get]
func (h *Handler) getCommunicationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"insightService":     "RUNNING",
		"userFinanceService": checkPeer(c, h.finance, "/finance/categories", "User Finance Service", "categoriesCount"),
		"goalService":        checkPeer(c, h.goals, "/goals/categories", "Goal Service", "goalCategoriesCount"),
		"timestamp":          h.now(),
	})
}

// @Summary Test peer integration for a user
// @Tags diagnostics
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Counts and samples"
// @Router /test/user/{userId}/test-integration [get]
func (h *Handler) testUserIntegration(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	fail := func(err error) {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Integration test failed: " + err.Error(),
		})
	}

	ctx := c.Request.Context()
	transactions, err := h.userTransactions(ctx, userID)
	if err != nil {
		fail(err)
		return
	}
	goals, err := h.userGoals(ctx, userID)
	if err != nil {
		fail(err)
		return
	}
	summary, err := h.userSummary(ctx, userID)
	if err != nil {
		fail(err)
		return
	}

	resp := gin.H{
		"success":            true,
		"userId":             userID,
		"transactionsCount":  len(transactions),
		"goalsCount":         len(goals),
		"transactionSummary": summary,
		"message":            "Integration test successful",
	}
	if len(transactions) > 0 {
		resp["sampleTransaction"] = transactions[0]
	}
	if len(goals) > 0 {
		resp["sampleGoal"] = goals[0]
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get configured service URLs
// @Tags diagnostics
// @Produce json
// @Success 200 {object} map[string]interface{} "URLs"
// @Router /test/service-urls [get]
func (h *Handler) getServiceURLs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userFinanceServiceUrl": h.services.FinanceURL,
		"goalServiceUrl":        h.services.GoalsURL,
		"insightServiceUrl":     h.services.InsightURL,
		"authServiceUrl":        h.services.AccountsURL,
	})
}

func (h *Handler) echoEvent(c *gin.Context, message string) {
	var event map[string]any
	if err := c.ShouldBindJSON(&event); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     message,
		"eventData":   event,
		"processedAt": h.now(),
	})
}

// @Summary Simulate a transaction event
// @Tags diagnostics
// @Accept json
// @Produce json
// @Param event body map[string]interface{} true "Event payload"
// @Success 200 {object} map[string]interface{} "Echoed event"
// @Router /test/simulate-transaction-event [post]
func (h *Handler) simulateTransactionEvent(c *gin.Context) {
	h.echoEvent(c, "Transaction event processed successfully")
}

// @Summary Simulate a goal event
// @Tags diagnostics
// @Accept json
// @Produce json
// @Param event body map[string]interface{} true "Event payload"
// @Success 200 {object} map[string]interface{} "Echoed event"
// @Router /test/simulate-goal-event [post]
func (h *Handler) simulateGoalEvent(c *gin.Context) {
	h.echoEvent(c, "Goal event processed successfully")
}
