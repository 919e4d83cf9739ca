package finance

import (
	"strings"
	"time"

	"fintrack/internal/dates"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// ParseTransactionType accepts either case.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case Income, Expense:
		return t, true
	}
	return "", false
}

// Category represents a transaction category
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ColorCode   string    `json:"colorCode"`
	IsDefault   bool      `json:"isDefault"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Transaction represents a single income or expense entry
type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      int64           `json:"categoryId"`
	Category        *Category       `json:"category,omitempty"`
	Type            TransactionType `json:"type"`
	TransactionDate dates.Date      `json:"transactionDate"`
	GoalID          *int64          `json:"goalId"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TransactionRequest is the body of create and update calls. Nil fields are
// left unchanged on update.
type TransactionRequest struct {
	UserID          *int64           `json:"userId"`
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description"`
	CategoryID      *int64           `json:"categoryId"`
	Type            *string          `json:"type"`
	TransactionDate *dates.Date      `json:"transactionDate"`
	GoalID          *int64           `json:"goalId"`
	Notes           *string          `json:"notes"`
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ColorCode   *string `json:"colorCode"`
	IsActive    *bool   `json:"isActive"`
}

const defaultColorCode = "#000000"

type defaultCategory struct {
	Name  string
	Color string
}

var defaultCategories = []defaultCategory{
	{"Food & Dining", "#FF6B6B"},
	{"Transportation", "#4ECDC4"},
	{"Shopping", "#45B7D1"},
	{"Entertainment", "#96CEB4"},
	{"Bills & Utilities", "#FFEAA7"},
	{"Healthcare", "#DDA0DD"},
	{"Education", "#98D8C8"},
	{"Travel", "#F7DC6F"},
	{"Salary", "#82E0AA"},
	{"Business", "#85C1E9"},
	{"Investment", "#F8C471"},
	{"Other", "#D7DBDD"},
}
