package insight

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

// Lifetimes of the shortcut recommendations.
const (
	budgetOptimizationTTL = 30 * 24 * time.Hour
	goalAdjustmentTTL     = 15 * 24 * time.Hour
	spendingAlertTTL      = 7 * 24 * time.Hour
)

type typedRecommendationRequest struct {
	UserID      *int64 `json:"userId"`
	CategoryID  *int64 `json:"categoryId"`
	GoalID      *int64 `json:"goalId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) listRecommendations(c *gin.Context, filter RecommendationFilter) ([]Recommendation, bool) {
	list, err := h.store.ListRecommendations(c.Request.Context(), filter)
	if err != nil {
		web.AbortWithStoreError(c, "fetching recommendations", err, "")
		return nil, false
	}
	return list, true
}

// active is the filter for unread, undismissed and unexpired rows.
func (h *Handler) active(userID int64) RecommendationFilter {
	now := h.now()
	return RecommendationFilter{UserID: userID, ActiveAt: &now}
}

// @Summary Get active recommendations
// @Description Unread, undismissed and unexpired; highest priority first
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Recommendations"
// @Router /recommendations/user/{userId} [get]
func (h *Handler) getActiveRecommendations(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	list, ok := h.listRecommendations(c, h.active(userID))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": list, "count": len(list)})
}

// @Summary Get recommendation summary
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Summary"
// @Router /recommendations/user/{userId}/summary [get]
func (h *Handler) getRecommendationSummary(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	list, ok := h.listRecommendations(c, h.active(userID))
	if !ok {
		return
	}
	unread, err := h.store.CountOpenRecommendations(c.Request.Context(), userID)
	if err != nil {
		web.AbortWithStoreError(c, "counting recommendations", err, "")
		return
	}

	high := 0
	for _, r := range list {
		if r.PriorityLevel.rank() >= PriorityHigh.rank() {
			high++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"totalActive":       len(list),
		"unreadCount":       unread,
		"highPriorityCount": high,
		"recommendations":   list,
	})
}

// @Summary Get recommendations by type
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Param type path string true "Recommendation type"
// @Success 200 {object} map[string]interface{} "Recommendations"
// @Failure 400 {object} map[string]interface{} "Invalid recommendation type"
// @Router /recommendations/user/{userId}/type/{type} [get]
func (h *Handler) getRecommendationsByType(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	kind, ok := ParseRecommendationType(c.Param("type"))
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("recommendation type", c.Param("type")))
		return
	}
	filter := h.active(userID)
	filter.Type = kind
	list, ok := h.listRecommendations(c, filter)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": list, "type": kind})
}

// @Summary Get recommendations by priority
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Param priority path string true "Priority level"
// @Success 200 {object} map[string]interface{} "Recommendations"
// @Failure 400 {object} map[string]interface{} "Invalid priority level"
// @Router /recommendations/user/{userId}/priority/{priority} [get]
func (h *Handler) getRecommendationsByPriority(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	priority, ok := ParsePriority(c.Param("priority"))
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("priority level", c.Param("priority")))
		return
	}
	filter := h.active(userID)
	filter.Priority = priority
	list, ok := h.listRecommendations(c, filter)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": list, "priority": priority})
}

// @Summary Get category recommendations
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Param categoryId path int true "Category ID"
// @Success 200 {object} map[string]interface{} "Recommendations"
// @Router /recommendations/user/{userId}/category/{categoryId} [get]
func (h *Handler) getCategoryRecommendations(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	categoryID, ok := web.ParseID(c, "categoryId")
	if !ok {
		return
	}
	list, ok := h.listRecommendations(c, RecommendationFilter{UserID: userID, CategoryID: &categoryID, Open: true})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": list, "categoryId": categoryID})
}

// @Summary Get goal recommendations
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Param goalId path int true "Goal ID"
// @Success 200 {object} map[string]interface{} "Recommendations"
// @Router /recommendations/user/{userId}/goal/{goalId} [get]
func (h *Handler) getGoalRecommendations(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	goalID, ok := web.ParseID(c, "goalId")
	if !ok {
		return
	}
	list, ok := h.listRecommendations(c, RecommendationFilter{UserID: userID, GoalID: &goalID, Open: true})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": list, "goalId": goalID})
}

// @Summary Count open recommendations
// @Tags recommendations
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Unread count"
// @Router /recommendations/user/{userId}/unread-count [get]
func (h *Handler) getUnreadRecommendationCount(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	count, err := h.store.CountOpenRecommendations(c.Request.Context(), userID)
	if err != nil {
		web.AbortWithStoreError(c, "counting recommendations", err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "unreadCount": count})
}

// @Summary Create recommendation
// @Description priorityLevel defaults to MEDIUM
// @Tags recommendations
// @Accept json
// @Produce json
// @Param recommendation body RecommendationRequest true "Recommendation"
// @Success 201 {object} map[string]interface{} "Recommendation created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /recommendations [post]
func (h *Handler) createRecommendation(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields in the documented order
	switch {
	case req.UserID == nil:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
		return
	case strings.TrimSpace(req.RecommendationType) == "":
		web.Fail(c, http.StatusBadRequest, "Recommendation type is required")
		return
	case strings.TrimSpace(req.Title) == "":
		web.Fail(c, http.StatusBadRequest, "Title is required")
		return
	case strings.TrimSpace(req.Description) == "":
		web.Fail(c, http.StatusBadRequest, "Description is required")
		return
	}

	kind, ok := ParseRecommendationType(req.RecommendationType)
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("recommendation type", req.RecommendationType))
		return
	}
	priority := PriorityMedium
	if req.PriorityLevel != "" {
		if priority, ok = ParsePriority(req.PriorityLevel); !ok {
			web.Fail(c, http.StatusBadRequest, invalidEnum("priority level", req.PriorityLevel))
			return
		}
	}

	r := Recommendation{
		UserID:             *req.UserID,
		RecommendationType: kind,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		PriorityLevel:      priority,
		CategoryID:         req.CategoryID,
		GoalID:             req.GoalID,
	}
	if req.ExpiresAt != nil {
		expires := req.ExpiresAt.UTC()
		r.ExpiresAt = &expires
	}
	h.saveRecommendation(c, r, "Recommendation created successfully")
}

func (h *Handler) saveRecommendation(c *gin.Context, r Recommendation, message string) {
	if err := h.store.CreateRecommendation(c.Request.Context(), &r); err != nil {
		web.AbortWithStoreError(c, "creating recommendation", err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "recommendation": r})
}

// bindTypedRecommendation decodes a shortcut body. relation names the id the
// route requires, or is empty.
func bindTypedRecommendation(c *gin.Context, relation string) (typedRecommendationRequest, bool) {
	var req typedRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return req, false
	}

	switch {
	case req.UserID == nil:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
	case relation == "goal" && req.GoalID == nil:
		web.Fail(c, http.StatusBadRequest, "Goal ID is required")
	case relation == "category" && req.CategoryID == nil:
		web.Fail(c, http.StatusBadRequest, "Category ID is required")
	case strings.TrimSpace(req.Title) == "":
		web.Fail(c, http.StatusBadRequest, "Title is required")
	case strings.TrimSpace(req.Description) == "":
		web.Fail(c, http.StatusBadRequest, "Description is required")
	default:
		return req, true
	}
	return req, false
}

func (h *Handler) expiresIn(ttl time.Duration) *time.Time {
	t := h.now().Add(ttl)
	return &t
}

// @Summary Create budget optimization recommendation
// @Description MEDIUM priority, expires in 30 days
// @Tags recommendations
// @Accept json
// @Produce json
// @Param recommendation body typedRecommendationRequest true "userId, categoryId, title, description"
// @Success 201 {object} map[string]interface{} "Budget optimization recommendation created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /recommendations/budget-optimization [post]
func (h *Handler) createBudgetOptimization(c *gin.Context) {
	req, ok := bindTypedRecommendation(c, "category")
	if !ok {
		return
	}
	h.saveRecommendation(c, Recommendation{
		UserID:             *req.UserID,
		RecommendationType: BudgetOptimization,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		PriorityLevel:      PriorityMedium,
		CategoryID:         req.CategoryID,
		ExpiresAt:          h.expiresIn(budgetOptimizationTTL),
	}, "Budget optimization recommendation created successfully")
}

// @Summary Create goal adjustment recommendation
// @Description HIGH priority, expires in 15 days
// @Tags recommendations
// @Accept json
// @Produce json
// @Param recommendation body typedRecommendationRequest true "userId, goalId, title, description"
// @Success 201 {object} map[string]interface{} "Goal adjustment recommendation created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /recommendations/goal-adjustment [post]
func (h *Handler) createGoalAdjustment(c *gin.Context) {
	req, ok := bindTypedRecommendation(c, "goal")
	if !ok {
		return
	}
	h.saveRecommendation(c, Recommendation{
		UserID:             *req.UserID,
		RecommendationType: GoalAdjustment,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		PriorityLevel:      PriorityHigh,
		GoalID:             req.GoalID,
		ExpiresAt:          h.expiresIn(goalAdjustmentTTL),
	}, "Goal adjustment recommendation created successfully")
}

// @Summary Create spending alert recommendation
// @Description HIGH priority, expires in 7 days
// @Tags recommendations
// @Accept json
// @Produce json
// @Param recommendation body typedRecommendationRequest true "userId, categoryId, title, description"
// @Success 201 {object} map[string]interface{} "Spending alert recommendation created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /recommendations/spending-alert [post]
func (h *Handler) createSpendingAlertRecommendation(c *gin.Context) {
	req, ok := bindTypedRecommendation(c, "category")
	if !ok {
		return
	}
	h.saveRecommendation(c, Recommendation{
		UserID:             *req.UserID,
		RecommendationType: SpendingWarning,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		PriorityLevel:      PriorityHigh,
		CategoryID:         req.CategoryID,
		ExpiresAt:          h.expiresIn(spendingAlertTTL),
	}, "Spending alert recommendation created successfully")
}

func (h *Handler) mutateRecommendation(c *gin.Context, message string, apply func(*Recommendation)) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	r, err := h.store.GetRecommendation(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching recommendation", err, "Recommendation not found")
		return
	}
	apply(&r)
	if err := h.store.UpdateRecommendation(ctx, &r); err != nil {
		web.AbortWithStoreError(c, "updating recommendation", err, "Recommendation not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "recommendation": r})
}

// @Summary Mark recommendation read
// @Tags recommendations
// @Produce json
// @Param id path int true "Recommendation ID"
// @Success 200 {object} map[string]interface{} "Recommendation marked as read"
// @Failure 404 {object} map[string]interface{} "Recommendation not found"
// @Router /recommendations/{id}/read [put]
func (h *Handler) markRecommendationRead(c *gin.Context) {
	h.mutateRecommendation(c, "Recommendation marked as read", func(r *Recommendation) {
		r.IsRead = true
	})
}

// @Summary Dismiss recommendation
// @Tags recommendations
// @Produce json
// @Param id path int true "Recommendation ID"
// @Success 200 {object} map[string]interface{} "Recommendation dismissed"
// @Failure 404 {object} map[string]interface{} "Recommendation not found"
// @Router /recommendations/{id}/dismiss [put]
func (h *Handler) dismissRecommendation(c *gin.Context) {
	h.mutateRecommendation(c, "Recommendation dismissed", func(r *Recommendation) {
		r.IsDismissed = true
	})
}

// @Summary Mark recommendation acted on
// @Description Also marks it read
// @Tags recommendations
// @Produce json
// @Param id path int true "Recommendation ID"
// @Success 200 {object} map[string]interface{} "Recommendation marked as action taken"
// @Failure 404 {object} map[string]interface{} "Recommendation not found"
// @Router /recommendations/{id}/action-taken [put]
func (h *Handler) markRecommendationActionTaken(c *gin.Context) {
	h.mutateRecommendation(c, "Recommendation marked as action taken", func(r *Recommendation) {
		r.ActionTaken = true
		r.IsRead = true
	})
}

// @Summary Delete recommendation
// @Tags recommendations
// @Produce json
// @Param id path int true "Recommendation ID"
// @Success 200 {object} map[string]interface{} "Recommendation deleted successfully"
// @Failure 404 {object} map[string]interface{} "Recommendation not found"
// @Router /recommendations/{id} [delete]
func (h *Handler) deleteRecommendation(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteRecommendation(c.Request.Context(), id); err != nil {
		web.AbortWithStoreError(c, "deleting recommendation", err, "Recommendation not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Recommendation deleted successfully"})
}

// @Summary Dismiss expired recommendations
// @Description Rows past expiresAt are dismissed, never deleted
// @Tags recommendations
// @Produce json
// @Success 200 {object} map[string]interface{} "Expired recommendations cleaned up successfully"
// @Router /recommendations/cleanup-expired [post]
func (h *Handler) cleanupExpiredRecommendations(c *gin.Context) {
	count, err := h.store.DismissExpired(c.Request.Context(), h.now())
	if err != nil {
		web.AbortWithStoreError(c, "dismissing expired recommendations", err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Expired recommendations cleaned up successfully",
		"dismissedCount": count,
	})
}
