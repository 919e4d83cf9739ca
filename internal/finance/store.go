package finance

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the persistence boundary of the finance service. Implementations
// return database.ErrNotFound, ErrDuplicate and ErrInUse for the matching
// conditions.
type Store interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoryNameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	CountDefaultCategories(ctx context.Context) (int, error)

	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID int64) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	SumByType(ctx context.Context, userID int64, txType TransactionType) (decimal.Decimal, error)
}
