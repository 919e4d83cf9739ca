package goals

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/database"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

// Category handler functions

// @Summary Create goal category
// @Description icon defaults to "target" and colorCode to #3B82F6
// @Tags goal-categories
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category data"
// @Success 201 {object} map[string]interface{} "Goal category created successfully"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 409 {object} map[string]interface{} "Category name already exists"
// @Router /goals/categories [post]
func (h *Handler) createCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == nil || web.ValidateName(*req.Name) != nil {
		web.Fail(c, http.StatusBadRequest, "Category name is required")
		return
	}

	category := Category{
		Name:      strings.TrimSpace(*req.Name),
		Icon:      defaultIcon,
		ColorCode: defaultColorCode,
		IsActive:  true,
	}
	if !applyCategory(c, &category, req) {
		return
	}

	if err := h.store.CreateCategory(c.Request.Context(), &category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			web.Fail(c, http.StatusConflict, "Category name already exists")
			return
		}
		web.AbortWithStoreError(c, "creating goal category", err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Goal category created successfully",
		"category": category,
	})
}

func applyCategory(c *gin.Context, category *Category, req CategoryRequest) bool {
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Icon != nil && *req.Icon != "" {
		category.Icon = *req.Icon
	}
	if req.ColorCode != nil && *req.ColorCode != "" {
		if err := web.ValidateHexColor(*req.ColorCode); err != nil {
			web.Fail(c, http.StatusBadRequest, "Invalid color code format")
			return false
		}
		category.ColorCode = *req.ColorCode
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	return true
}

// @Summary Get all goal categories
// @Description Ordered by sortOrder, then name
// @Tags goal-categories
// @Produce json
// @Success 200 {object} map[string]interface{} "Categories retrieved successfully"
// @Router /goals/categories [get]
func (h *Handler) getCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		web.AbortWithStoreError(c, "fetching goal categories", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Categories retrieved successfully",
		"categories": categories,
		"count":      len(categories),
	})
}

// @Summary Get goal category by ID
// @Tags goal-categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} Category
// @Failure 404 {object} map[string]interface{} "Category not found"
// @Router /goals/categories/{id} [get]
func (h *Handler) getCategory(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	category, err := h.store.GetCategory(c.Request.Context(), id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching goal category", err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Summary Update goal category
// @Tags goal-categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body CategoryRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "Category updated successfully"
// @Failure 404 {object} map[string]interface{} "Category not found"
// @Failure 409 {object} map[string]interface{} "Category name already exists"
// @Router /goals/categories/{id} [put]
func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	category, err := h.store.GetCategory(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching goal category", err, "Category not found")
		return
	}

	if req.Name != nil {
		if err := web.ValidateName(*req.Name); err != nil {
			web.Fail(c, http.StatusBadRequest, "Category name is required")
			return
		}
		category.Name = strings.TrimSpace(*req.Name)
	}
	if !applyCategory(c, &category, req) {
		return
	}

	if err := h.store.UpdateCategory(ctx, &category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			web.Fail(c, http.StatusConflict, "Category name already exists")
			return
		}
		web.AbortWithStoreError(c, "updating goal category", err, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Category updated successfully",
		"category": category,
	})
}

// @Summary Delete goal category
// @Tags goal-categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]interface{} "Category deleted successfully"
// @Failure 404 {object} map[string]interface{} "Category not found"
// @Failure 409 {object} map[string]interface{} "Category is in use by goals"
// @Router /goals/categories/{id} [delete]
func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrInUse) {
			web.Fail(c, http.StatusConflict, "Category is in use by goals")
			return
		}
		web.AbortWithStoreError(c, "deleting goal category", err, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted successfully",
	})
}
