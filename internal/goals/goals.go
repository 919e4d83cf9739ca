package goals

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/database"
	"fintrack/internal/dates"
	"fintrack/internal/logger"
	"fintrack/internal/money"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Goal handler functions

// @Summary Create goal
// @Description Create a savings goal. currentAmount defaults to 0, priorityLevel to MEDIUM and startDate to today
// @Tags goals
// @Accept json
// @Produce json
// @Param goal body GoalRequest true "Goal data"
// @Success 201 {object} map[string]interface{} "Goal created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /goals [post]
func (h *Handler) createGoal(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields in the documented order
	switch {
	case req.UserID == nil || *req.UserID <= 0:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
		return
	case req.Title == nil || strings.TrimSpace(*req.Title) == "":
		web.Fail(c, http.StatusBadRequest, "Goal title is required")
		return
	case req.TargetAmount == nil || !req.TargetAmount.IsPositive():
		web.Fail(c, http.StatusBadRequest, "Target amount must be greater than zero")
		return
	case !money.FitsAmount(*req.TargetAmount):
		web.Fail(c, http.StatusBadRequest, "Target amount must have at most 13 integer digits and 2 decimal places")
		return
	case req.CurrentAmount != nil && req.CurrentAmount.IsNegative():
		web.Fail(c, http.StatusBadRequest, "Current amount cannot be negative")
		return
	case req.CurrentAmount != nil && !money.FitsAmount(*req.CurrentAmount):
		web.Fail(c, http.StatusBadRequest, "Current amount must have at most 13 integer digits and 2 decimal places")
		return
	case req.CategoryID == nil:
		web.Fail(c, http.StatusBadRequest, "Category is required")
		return
	}

	ctx := c.Request.Context()
	category, err := h.store.GetCategory(ctx, *req.CategoryID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			web.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		web.AbortWithStoreError(c, "loading goal category", err, "Category not found")
		return
	}

	g := Goal{
		UserID:        *req.UserID,
		Title:         strings.TrimSpace(*req.Title),
		TargetAmount:  *req.TargetAmount,
		CurrentAmount: decimal.Zero,
		CategoryID:    category.ID,
		PriorityLevel: PriorityMedium,
		Status:        StatusActive,
		StartDate:     dates.Today(),
	}
	if req.CurrentAmount != nil {
		g.CurrentAmount = *req.CurrentAmount
	}
	if !applyOptional(c, &g, req) {
		return
	}
	g.refreshProgress(h.now(), req.statusSet())

	if err := h.store.CreateGoal(ctx, &g); err != nil {
		// The category can disappear between the lookup and the insert
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrInUse) {
			web.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		web.AbortWithStoreError(c, "creating goal", err, "")
		return
	}
	g.Category = &category

	h.notifyInsight(goalCreated, g)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Goal created successfully",
		"goal":    g,
	})
}

// applyOptional copies the optional request fields shared by create and
// update onto g. It writes a 400 and returns false on an invalid enum.
func applyOptional(c *gin.Context, g *Goal, req GoalRequest) bool {
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.PriorityLevel != nil && *req.PriorityLevel != "" {
		p, ok := ParsePriority(*req.PriorityLevel)
		if !ok {
			web.Fail(c, http.StatusBadRequest, "Invalid priority level")
			return false
		}
		g.PriorityLevel = p
	}
	if req.Status != nil && *req.Status != "" {
		st, ok := ParseStatus(*req.Status)
		if !ok {
			web.Fail(c, http.StatusBadRequest, "Invalid status")
			return false
		}
		g.Status = st
	}
	if req.TargetDate != nil {
		g.TargetDate = *req.TargetDate
	}
	if req.StartDate != nil && !req.StartDate.IsZero() {
		g.StartDate = *req.StartDate
	}
	if req.IsShared != nil {
		g.IsShared = *req.IsShared
	}
	if req.MotivationNote != nil {
		g.MotivationNote = *req.MotivationNote
	}
	if req.RewardDescription != nil {
		g.RewardDescription = *req.RewardDescription
	}
	if req.ImageURL != nil {
		g.ImageURL = *req.ImageURL
	}
	return true
}

// @Summary Get all goals
// @Tags goals
// @Produce json
// @Success 200 {object} map[string]interface{} "Goals retrieved successfully"
// @Router /goals [get]
func (h *Handler) getGoals(c *gin.Context) {
	goals, err := h.store.ListGoals(c.Request.Context())
	if err != nil {
		web.AbortWithStoreError(c, "fetching goals", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Goals retrieved successfully",
		"goals":   goals,
		"count":   len(goals),
	})
}

// @Summary Get user goals
// @Description Newest first
// @Tags goals
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "User goals retrieved successfully"
// @Router /goals/user/{userId} [get]
func (h *Handler) getUserGoals(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	goals, err := h.store.ListGoalsByUser(c.Request.Context(), userID)
	if err != nil {
		web.AbortWithStoreError(c, "fetching user goals", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User goals retrieved successfully",
		"goals":   goals,
		"count":   len(goals),
	})
}

// @Summary Get goal by ID
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} Goal
// @Failure 404 {object} map[string]interface{} "Goal not found"
// @Router /goals/{id} [get]
func (h *Handler) getGoal(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	g, err := h.store.GetGoal(c.Request.Context(), id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching goal", err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary Update goal
// @Description Partial update. Progress is recomputed. Without an explicit status a goal reaching its target is marked COMPLETED and a completed goal below target returns to ACTIVE
// @Tags goals
// @Accept json
// @Produce json
// @Param id path int true "Goal ID"
// @Param goal body GoalRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "Goal updated successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "Goal not found"
// @Router /goals/{id} [put]
func (h *Handler) updateGoal(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	g, err := h.store.GetGoal(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching goal", err, "Goal not found")
		return
	}
	previous := g.CurrentAmount

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			web.Fail(c, http.StatusBadRequest, "Goal title is required")
			return
		}
		g.Title = strings.TrimSpace(*req.Title)
	}
	if req.TargetAmount != nil {
		if !req.TargetAmount.IsPositive() {
			web.Fail(c, http.StatusBadRequest, "Target amount must be greater than zero")
			return
		}
		if !money.FitsAmount(*req.TargetAmount) {
			web.Fail(c, http.StatusBadRequest, "Target amount must have at most 13 integer digits and 2 decimal places")
			return
		}
		g.TargetAmount = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		if req.CurrentAmount.IsNegative() {
			web.Fail(c, http.StatusBadRequest, "Current amount cannot be negative")
			return
		}
		if !money.FitsAmount(*req.CurrentAmount) {
			web.Fail(c, http.StatusBadRequest, "Current amount must have at most 13 integer digits and 2 decimal places")
			return
		}
		g.CurrentAmount = *req.CurrentAmount
	}
	if req.CategoryID != nil {
		// An unknown category leaves the current one in place
		if category, err := h.store.GetCategory(ctx, *req.CategoryID); err == nil {
			g.CategoryID = category.ID
			g.Category = &category
		}
	}
	if !applyOptional(c, &g, req) {
		return
	}
	g.refreshProgress(h.now(), req.statusSet())

	if err := h.store.UpdateGoal(ctx, &g); err != nil {
		web.AbortWithStoreError(c, "updating goal", err, "Goal not found")
		return
	}

	if !g.CurrentAmount.Equal(previous) {
		h.recordSnapshot(c, g, previous)
	}

	if g.Completed() {
		h.notifyInsight(goalCompleted, g)
	} else {
		h.notifyInsight(goalUpdated, g)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Goal updated successfully",
		"goal":    g,
	})
}

// recordSnapshot stores the progress point left by an update that moved
// currentAmount. A failed write is logged and the update still succeeds.
func (h *Handler) recordSnapshot(c *gin.Context, g Goal, previous decimal.Decimal) {
	snap := Snapshot{
		GoalID:             g.ID,
		Amount:             g.CurrentAmount,
		ProgressPercentage: g.CompletionPercentage,
		AmountChange:       g.CurrentAmount.Sub(previous),
		SnapshotType:       SnapshotManual,
		SnapshotDate:       dates.Of(h.now()),
	}
	if g.Completed() {
		snap.SnapshotType = SnapshotMilestone
		snap.Notes = "Goal completed"
	}

	if err := h.store.CreateSnapshot(c.Request.Context(), &snap); err != nil {
		logger.Log.Warn("failed to record goal snapshot", zap.Int64("goal_id", g.ID), zap.Error(err))
	}
}

// @Summary Delete goal
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} map[string]interface{} "Goal deleted successfully"
// @Failure 404 {object} map[string]interface{} "Goal not found"
// @Router /goals/{id} [delete]
func (h *Handler) deleteGoal(c *gin.Context) {
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
	if err := h.store.DeleteGoal(ctx, id); err != nil {
		web.AbortWithStoreError(c, "deleting goal", err, "Goal not found")
		return
	}

	h.notifyInsight(goalDeleted, g)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Goal deleted successfully",
	})
}

// @Summary Get goal snapshots
// @Description Progress points in the order they were recorded
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} map[string]interface{} "Snapshots retrieved successfully"
// @Failure 404 {object} map[string]interface{} "Goal not found"
// @Router /goals/{id}/snapshots [get]
func (h *Handler) getSnapshots(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetGoal(ctx, id); err != nil {
		web.AbortWithStoreError(c, "fetching goal", err, "Goal not found")
		return
	}
	snapshots, err := h.store.ListSnapshots(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching snapshots", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Snapshots retrieved successfully",
		"goalId":    id,
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}
