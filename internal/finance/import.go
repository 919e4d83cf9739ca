package finance

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/dates"
	"fintrack/internal/logger"
	"fintrack/internal/money"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Statement column layout: Transaction Date,Posted Date,Card No.,Description,Category,Debit,Credit.
// Shorter rows are read as description,amount.
const (
	colDate        = 0
	colDescription = 3
	colCategory    = 4
	colDebit       = 5
	colCredit      = 6
	statementWidth = 7
)

var statementDateLayouts = []string{"01/02/2006", "2006-01-02", "1/2/2006"}

// statementCategoryAliases maps bank category labels onto default categories.
var statementCategoryAliases = map[string]string{
	"gas/automotive":      "Transportation",
	"insurance":           "Healthcare",
	"dining":              "Food & Dining",
	"groceries":           "Food & Dining",
	"other travel":        "Travel",
	"airfare":             "Travel",
	"lodging":             "Travel",
	"merchandise":         "Shopping",
	"entertainment":       "Entertainment",
	"health care":         "Healthcare",
	"phone/cable":         "Bills & Utilities",
	"utilities":           "Bills & Utilities",
	"fee/interest charge": "Bills & Utilities",
	"payment/credit":      "Other",
}

// categoryMapping resolves statement labels to stored categories by name.
type categoryMapping struct {
	byName map[string]Category
}

func (h *Handler) loadCategoryMapping(ctx context.Context) (*categoryMapping, error) {
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	m := &categoryMapping{byName: make(map[string]Category, len(categories))}
	for _, c := range categories {
		if c.IsActive {
			m.byName[strings.ToLower(c.Name)] = c
		}
	}
	return m, nil
}

// resolve tries the label itself, then its alias, then "Other".
func (m *categoryMapping) resolve(label string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if c, ok := m.byName[key]; ok {
		return c, true
	}
	if alias, ok := statementCategoryAliases[key]; ok {
		if c, ok := m.byName[strings.ToLower(alias)]; ok {
			return c, true
		}
	}
	c, ok := m.byName["other"]
	return c, ok
}

func isHeaderRow(record []string) bool {
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "transaction date" || first == "description"
}

func parseStatementDate(s string) dates.Date {
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return dates.Of(t)
		}
	}
	return dates.Today()
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() || !money.FitsAmount(d) {
		return decimal.Zero, false
	}
	return d, true
}

// statementRow turns one CSV record into a transaction without a category.
// Debits and positive short-format amounts are expenses; credits and negative
// amounts are income.
func statementRow(record []string) (Transaction, string, bool) {
	var t Transaction

	if len(record) >= statementWidth {
		t.Description = strings.TrimSpace(record[colDescription])
		t.TransactionDate = parseStatementDate(record[colDate])
		if amount, ok := parseAmount(record[colDebit]); ok {
			t.Amount, t.Type = amount.Abs(), Expense
		} else if amount, ok := parseAmount(record[colCredit]); ok {
			t.Amount, t.Type = amount.Abs(), Income
		} else {
			return t, "", false
		}
		return t, record[colCategory], t.Description != ""
	}

	if len(record) < 2 {
		return t, "", false
	}
	amount, ok := parseAmount(record[1])
	if !ok {
		return t, "", false
	}
	t.Description = strings.TrimSpace(record[0])
	t.TransactionDate = dates.Today()
	t.Amount, t.Type = amount.Abs(), Expense
	if amount.IsNegative() {
		t.Type = Income
	}
	return t, "", t.Description != ""
}

// @Summary Import a bank statement
// @Description Create transactions for a user from an uploaded CSV statement
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param userId path int true "User ID"
// @Param file formData file true "CSV statement"
// @Success 200 {object} map[string]interface{} "Statement imported"
// @Failure 400 {object} map[string]interface{} "No file or unreadable CSV"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /finance/transactions/user/{userId}/import [post]
func (h *Handler) importStatement(c *gin.Context) {
	defer h.metrics.observe("import")()

	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			web.Fail(c, http.StatusBadRequest, "Error reading CSV file")
			return
		}
		records = append(records, record)
	}

	ctx := c.Request.Context()
	mapping, err := h.loadCategoryMapping(ctx)
	if err != nil {
		web.AbortWithStoreError(c, "loading categories", err, "Category not found")
		return
	}

	start := 0
	if len(records) > 0 && isHeaderRow(records[0]) {
		start = 1
	}

	imported := []Transaction{}
	skipped := []int{}
	for i := start; i < len(records); i++ {
		line := i + 1
		t, label, ok := statementRow(records[i])
		if !ok {
			skipped = append(skipped, line)
			continue
		}
		category, ok := mapping.resolve(label)
		if !ok {
			skipped = append(skipped, line)
			continue
		}

		t.UserID = userID
		t.CategoryID = category.ID
		t.Notes = "Imported from " + header.Filename
		if err := h.store.CreateTransaction(ctx, &t); err != nil {
			logger.Log.Warn("failed to import statement row",
				zap.String("file", header.Filename), zap.Int("line", line), zap.Error(err))
			skipped = append(skipped, line)
			continue
		}
		t.Category = &category

		h.metrics.recordCreated(t)
		imported = append(imported, t)
	}
	h.afterImport(ctx, imported)

	logger.Log.Info("statement imported",
		zap.Int64("user_id", userID),
		zap.String("file", header.Filename),
		zap.Int("imported", len(imported)),
		zap.Int("skipped", len(skipped)))

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Statement imported successfully",
		"importedCount": len(imported),
		"skippedRows":   skipped,
		"transactions":  imported,
	})
}
