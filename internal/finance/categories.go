package finance

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Category handler functions

// @Summary Create category
// @Description Create a new transaction category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category data (name required, colorCode defaults to #000000)"
// @Success 201 {object} map[string]interface{} "Category created successfully"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 409 {object} map[string]interface{} "Category name already exists"
// @Router /finance/categories [post]
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
		ColorCode: defaultColorCode,
		IsActive:  true,
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ColorCode != nil && *req.ColorCode != "" {
		if err := web.ValidateHexColor(*req.ColorCode); err != nil {
			web.Fail(c, http.StatusBadRequest, "Invalid color code format")
			return
		}
		category.ColorCode = *req.ColorCode
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.store.CreateCategory(c.Request.Context(), &category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			web.Fail(c, http.StatusConflict, "Category name already exists")
			return
		}
		web.AbortWithStoreError(c, "creating category", err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Category created successfully",
		"category": category,
	})
}

// @Summary Get all categories
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{} "Categories retrieved successfully"
// @Router /finance/categories [get]
func (h *Handler) getCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		web.AbortWithStoreError(c, "fetching categories", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Categories retrieved successfully",
		"categories": categories,
		"count":      len(categories),
	})
}

// @Summary Get category by ID
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} Category
// @Failure 404 {object} map[string]interface{} "Category not found"
// @Router /finance/categories/{id} [get]
func (h *Handler) getCategory(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	category, err := h.store.GetCategory(c.Request.Context(), id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching category", err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Summary Update category
// @Description Partial update of an existing category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body CategoryRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "Category updated successfully"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Category not found"
// @Failure 409 {object} map[string]interface{} "Category name already exists"
// @Router /finance/categories/{id} [put]
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
		web.AbortWithStoreError(c, "fetching category", err, "Category not found")
		return
	}

	if req.Name != nil {
		if err := web.ValidateName(*req.Name); err != nil {
			web.Fail(c, http.StatusBadRequest, "Category name is required")
			return
		}
		name := strings.TrimSpace(*req.Name)
		taken, err := h.store.CategoryNameTaken(ctx, name, id)
		if err != nil {
			web.AbortWithStoreError(c, "checking category name", err, "")
			return
		}
		if taken {
			web.Fail(c, http.StatusConflict, "Category name already exists")
			return
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ColorCode != nil {
		if err := web.ValidateHexColor(*req.ColorCode); err != nil || *req.ColorCode == "" {
			web.Fail(c, http.StatusBadRequest, "Invalid color code format")
			return
		}
		category.ColorCode = *req.ColorCode
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.store.UpdateCategory(ctx, &category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			web.Fail(c, http.StatusConflict, "Category name already exists")
			return
		}
		web.AbortWithStoreError(c, "updating category", err, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Category updated successfully",
		"category": category,
	})
}

// @Summary Delete category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]interface{} "Category deleted successfully"
// @Failure 404 {object} map[string]interface{} "Category not found"
// @Failure 409 {object} map[string]interface{} "Category is in use by transactions"
// @Router /finance/categories/{id} [delete]
func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrInUse) {
			web.Fail(c, http.StatusConflict, "Category is in use by transactions")
			return
		}
		web.AbortWithStoreError(c, "deleting category", err, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted successfully",
	})
}

// @Summary Initialize default categories
// @Description Seeds the twelve default categories unless defaults already exist
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{} "Default categories initialized successfully"
// @Router /finance/categories/initialize-defaults [post]
func (h *Handler) initializeDefaultCategories(c *gin.Context) {
	ctx := c.Request.Context()

	existing, err := h.store.CountDefaultCategories(ctx)
	if err != nil {
		web.AbortWithStoreError(c, "counting default categories", err, "")
		return
	}
	if existing > 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Default categories already exist",
		})
		return
	}

	created := 0
	for _, d := range defaultCategories {
		category := Category{
			Name:        d.Name,
			Description: "Default " + d.Name + " category",
			ColorCode:   d.Color,
			IsDefault:   true,
			IsActive:    true,
		}
		if err := h.store.CreateCategory(ctx, &category); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				logger.Log.Info("skipping default category, name already taken", zap.String("name", d.Name))
				continue
			}
			web.AbortWithStoreError(c, "creating default category", err, "")
			return
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Default categories initialized successfully",
		"count":   created,
	})
}
