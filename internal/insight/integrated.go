package insight

import (
	"net/http"

	"fintrack/internal/logger"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// unavailable answers 200 with the degraded envelope when a peer call fails.
func unavailable(c *gin.Context, userID int64, err error) {
	logger.Log.Warn("downstream service unavailable",
		zap.String("path", c.FullPath()), zap.Int64("user_id", userID), zap.Error(err))
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": "Service unavailable",
		"error":   err.Error(),
	})
}

// @Summary Get complete user overview
// @Description Transactions, goals, both summaries and combined totals
// @Tags integrated
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Overview, or a Service unavailable envelope"
// @Router /integrated/user/{userId}/complete-overview [get]
func (h *Handler) getCompleteOverview(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	transactions, err := h.userTransactions(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	goals, err := h.userGoals(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	summary, err := h.userSummary(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	analytics, ok := h.spendingSummary(c, userID, Monthly)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"userId":             userID,
		"transactions":       transactions,
		"goals":              goals,
		"transactionSummary": summary,
		"analyticsSummary":   analytics,
		"combinedInsights":   combine(transactions, goals),
	})
}

// @Summary Get goal progress analysis
// @Tags integrated
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Analysis, or a Service unavailable envelope"
// @Router /integrated/user/{userId}/goal-progress-analysis [get]
func (h *Handler) getGoalProgressAnalysis(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	goals, err := h.userGoals(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	transactions, err := h.userTransactions(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  userID,
		"goalAnalysis": gin.H{
			"totalGoals":              len(goals),
			"goalsByStatus":           goalsByStatus(goals),
			"goalRelatedTransactions": goalRelatedCount(transactions),
			"goals":                   goals,
		},
	})
}

// @Summary Get spending versus goals
// @Tags integrated
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Analysis, or a Service unavailable envelope"
// @Router /integrated/user/{userId}/spending-vs-goals [get]
func (h *Handler) getSpendingVsGoals(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	transactions, err := h.userTransactions(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	goals, err := h.userGoals(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	cats, err := categories(ctx, h.finance, "/finance/categories")
	if err != nil {
		unavailable(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  userID,
		"spendingVsGoalsAnalysis": gin.H{
			"spendingByCategory": spendingByCategory(transactions),
			"goalsByCategory":    goalsByCategory(goals),
			"categories":         cats,
		},
	})
}

// @Summary Get personalized recommendations
// @Description Rule-based advice computed from live data. Nothing is stored
// @Tags integrated
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Recommendations, or a Service unavailable envelope"
// @Router /integrated/user/{userId}/recommendations [get]
func (h *Handler) getPersonalizedRecommendations(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	transactions, err := h.userTransactions(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}
	goals, err := h.userGoals(ctx, userID)
	if err != nil {
		unavailable(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"userId":          userID,
		"recommendations": advise(transactions, goals),
	})
}
