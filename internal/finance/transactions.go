package finance

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/database"
	"fintrack/internal/dates"
	"fintrack/internal/events"
	"fintrack/internal/money"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

const amountPrecisionMessage = "Amount must have at most 13 integer digits and 2 decimal places"

// Transaction handler functions

// @Summary Create transaction
// @Description Create a new income or expense transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body TransactionRequest true "Transaction data"
// @Success 201 {object} map[string]interface{} "Transaction created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /finance/transactions [post]
func (h *Handler) createTransaction(c *gin.Context) {
	defer h.metrics.observe("create")()

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields in the documented order
	switch {
	case req.UserID == nil || *req.UserID <= 0:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
		return
	case req.Amount == nil || !req.Amount.IsPositive():
		web.Fail(c, http.StatusBadRequest, "Amount must be greater than zero")
		return
	case !money.FitsAmount(*req.Amount):
		web.Fail(c, http.StatusBadRequest, amountPrecisionMessage)
		return
	case req.Description == nil || strings.TrimSpace(*req.Description) == "":
		web.Fail(c, http.StatusBadRequest, "Description is required")
		return
	case req.CategoryID == nil:
		web.Fail(c, http.StatusBadRequest, "Category is required")
		return
	}

	category, err := h.store.GetCategory(c.Request.Context(), *req.CategoryID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			web.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		web.AbortWithStoreError(c, "loading category", err, "Category not found")
		return
	}

	txType := Expense
	if req.Type != nil && *req.Type != "" {
		parsed, ok := ParseTransactionType(*req.Type)
		if !ok {
			web.Fail(c, http.StatusBadRequest, "Invalid transaction type")
			return
		}
		txType = parsed
	}

	t := Transaction{
		UserID:          *req.UserID,
		Amount:          *req.Amount,
		Description:     strings.TrimSpace(*req.Description),
		CategoryID:      category.ID,
		Type:            txType,
		TransactionDate: dates.Today(),
		GoalID:          req.GoalID,
	}
	if req.TransactionDate != nil && !req.TransactionDate.IsZero() {
		t.TransactionDate = *req.TransactionDate
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}

	if err := h.store.CreateTransaction(c.Request.Context(), &t); err != nil {
		// The category can disappear between the lookup and the insert
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrInUse) {
			web.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		web.AbortWithStoreError(c, "creating transaction", err, "")
		return
	}
	t.Category = &category

	h.metrics.recordCreated(t)
	h.afterWrite(events.Created, t)

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Transaction created successfully",
		"transaction": t,
	})
}

// @Summary Get all transactions
// @Tags transactions
// @Produce json
// @Success 200 {object} map[string]interface{} "Transactions retrieved successfully"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /finance/transactions [get]
func (h *Handler) getTransactions(c *gin.Context) {
	transactions, err := h.store.ListTransactions(c.Request.Context())
	if err != nil {
		web.AbortWithStoreError(c, "fetching transactions", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Transactions retrieved successfully",
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// @Summary Get user transactions
// @Description Newest transaction date first
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "User transactions retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid userId"
// @Router /finance/transactions/user/{userId} [get]
func (h *Handler) getUserTransactions(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	transactions, err := h.store.ListTransactionsByUser(c.Request.Context(), userID)
	if err != nil {
		web.AbortWithStoreError(c, "fetching user transactions", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "User transactions retrieved successfully",
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// @Summary Get transaction by ID
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} Transaction
// @Failure 404 {object} map[string]interface{} "Transaction not found"
// @Router /finance/transactions/{id} [get]
func (h *Handler) getTransaction(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching transaction", err, "Transaction not found")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Update transaction
// @Description Partial update; omitted fields keep their value and an unknown categoryId is ignored
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param transaction body TransactionRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "Transaction updated successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "Transaction not found"
// @Router /finance/transactions/{id} [put]
func (h *Handler) updateTransaction(c *gin.Context) {
	defer h.metrics.observe("update")()

	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	t, err := h.store.GetTransaction(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching transaction", err, "Transaction not found")
		return
	}

	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			web.Fail(c, http.StatusBadRequest, "Amount must be greater than zero")
			return
		}
		if !money.FitsAmount(*req.Amount) {
			web.Fail(c, http.StatusBadRequest, amountPrecisionMessage)
			return
		}
		t.Amount = *req.Amount
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.CategoryID != nil {
		if category, err := h.store.GetCategory(ctx, *req.CategoryID); err == nil {
			t.CategoryID = category.ID
			t.Category = &category
		}
	}
	if req.Type != nil {
		parsed, ok := ParseTransactionType(*req.Type)
		if !ok {
			web.Fail(c, http.StatusBadRequest, "Invalid transaction type")
			return
		}
		t.Type = parsed
	}
	if req.TransactionDate != nil && !req.TransactionDate.IsZero() {
		t.TransactionDate = *req.TransactionDate
	}
	if req.GoalID != nil {
		t.GoalID = req.GoalID
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}

	if err := h.store.UpdateTransaction(ctx, &t); err != nil {
		web.AbortWithStoreError(c, "updating transaction", err, "Transaction not found")
		return
	}

	h.metrics.recordUpdated()
	h.afterWrite(events.Updated, t)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Transaction updated successfully",
		"transaction": t,
	})
}

// @Summary Delete transaction
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} map[string]interface{} "Transaction deleted successfully"
// @Failure 404 {object} map[string]interface{} "Transaction not found"
// @Router /finance/transactions/{id} [delete]
func (h *Handler) deleteTransaction(c *gin.Context) {
	defer h.metrics.observe("delete")()

	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	t, err := h.store.GetTransaction(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching transaction", err, "Transaction not found")
		return
	}
	if err := h.store.DeleteTransaction(ctx, id); err != nil {
		web.AbortWithStoreError(c, "deleting transaction", err, "Transaction not found")
		return
	}

	h.metrics.recordDeleted()
	h.afterWrite(events.Deleted, t)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Transaction deleted successfully",
	})
}

// @Summary Get transaction summary
// @Description Income, expense and balance for one user
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Transaction summary retrieved successfully"
// @Router /finance/transactions/user/{userId}/summary [get]
func (h *Handler) getUserSummary(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	income, err := h.store.SumByType(ctx, userID, Income)
	if err != nil {
		web.AbortWithStoreError(c, "summing income", err, "")
		return
	}
	expense, err := h.store.SumByType(ctx, userID, Expense)
	if err != nil {
		web.AbortWithStoreError(c, "summing expenses", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Transaction summary retrieved successfully",
		"totalIncome":  income,
		"totalExpense": expense,
		"balance":      income.Sub(expense),
	})
}
