package goals

import (
	"context"
	"fmt"
	"net/http"

	"fintrack/internal/logger"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// financeTransaction is the subset of a finance transaction needed to credit
// contributions to a goal.
type financeTransaction struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	GoalID *int64          `json:"goalId"`
}

// contributions sums the user's INCOME transactions tagged with goalID.
func (h *Handler) contributions(ctx context.Context, userID, goalID int64) (decimal.Decimal, error) {
	if h.finance == nil {
		return decimal.Zero, fmt.Errorf("finance service not configured")
	}

	var resp struct {
		Transactions []financeTransaction `json:"transactions"`
	}
	if err := h.finance.Get(ctx, fmt.Sprintf("/finance/transactions/user/%d", userID), &resp); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, t := range resp.Transactions {
		if t.Type == "INCOME" && t.GoalID != nil && *t.GoalID == goalID {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

// @Summary Get goal contributions
// @Description Sum of the owner's INCOME transactions tagged with this goal, read from the finance service
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} map[string]interface{} "Contributions"
// @Failure 404 {object} map[string]interface{} "Goal not found"
// @Router /goals/{id}/contributions [get]
func (h *Handler) getContributions(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	g, err := h.store.GetGoal(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching goal", err, "Goal not found")
		return
	}

	total, err := h.contributions(ctx, g.UserID, g.ID)
	if err != nil {
		logger.Log.Warn("could not load goal contributions", zap.Int64("goal_id", id), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"goalId":        g.ID,
		"contributions": total,
	})
}

// @Summary Get goal insights for a user
// @Description Proxies the insight service's goal progress analysis
// @Tags goals
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Analysis, or a Service unavailable envelope"
// @Router /goals/user/{userId}/insights [get]
func (h *Handler) getUserInsights(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	unavailable := func(err error) {
		logger.Log.Warn("insight service unavailable", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Service unavailable",
			"error":   err.Error(),
		})
	}

	if h.insight == nil {
		unavailable(fmt.Errorf("insight service not configured"))
		return
	}

	var analysis map[string]any
	path := fmt.Sprintf("/integrated/user/%d/goal-progress-analysis", userID)
	if err := h.insight.Get(c.Request.Context(), path, &analysis); err != nil {
		unavailable(err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}
