package finance

import (
	"context"
	"embed"
	"fmt"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/dates"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsTable = "finance_schema_migrations"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const categoryColumns = `id, name, description, color_code, is_default, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }, c *Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.ColorCode, &c.IsDefault, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *Category) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transaction_categories (name, description, color_code, is_default, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.ColorCode, c.IsDefault, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	row := s.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM transaction_categories WHERE id = $1`, id)
	if err := scanCategory(row, &c); err != nil {
		return Category{}, fmt.Errorf("get category %d: %w", id, database.Translate(err))
	}
	return c, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+categoryColumns+` FROM transaction_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *Category) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE transaction_categories
		 SET name = $1, description = $2, color_code = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		c.Name, c.Description, c.ColorCode, c.IsActive, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transaction_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, database.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete category %d: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CategoryNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transaction_categories WHERE name = $1 AND id <> $2)`,
		name, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return taken, nil
}

func (s *PostgresStore) CountDefaultCategories(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_categories WHERE is_default`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count default categories: %w", err)
	}
	return n, nil
}

// Transactions are always read joined with their category. Amounts travel as
// text so no numeric codec is needed.
const transactionSelect = `
	SELECT t.id, t.user_id, t.amount::text, t.description, t.category_id, t.type, t.transaction_date,
	       t.goal_id, t.notes, t.created_at, t.updated_at,
	       c.id, c.name, c.description, c.color_code, c.is_default, c.is_active, c.created_at, c.updated_at
	FROM transactions t
	JOIN transaction_categories c ON c.id = t.category_id`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var (
		t      Transaction
		c      Category
		amount string
		day    time.Time
	)
	err := row.Scan(&t.ID, &t.UserID, &amount, &t.Description, &t.CategoryID, &t.Type, &day,
		&t.GoalID, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
		&c.ID, &c.Name, &c.Description, &c.ColorCode, &c.IsDefault, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Transaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.TransactionDate = dates.Of(day)
	t.Category = &c
	return t, nil
}

func (s *PostgresStore) collect(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *PostgresStore) CreateTransaction(ctx context.Context, t *Transaction) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, amount, description, category_id, type, transaction_date, goal_id, notes)
		 VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Amount.String(), t.Description, t.CategoryID, string(t.Type), t.TransactionDate.Time, t.GoalID, t.Notes,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx, transactionSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return Transaction{}, fmt.Errorf("get transaction %d: %w", id, database.Translate(err))
	}
	return t, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.collect(ctx, transactionSelect+` ORDER BY t.id`)
}

func (s *PostgresStore) ListTransactionsByUser(ctx context.Context, userID int64) ([]Transaction, error) {
	return s.collect(ctx, transactionSelect+` WHERE t.user_id = $1 ORDER BY t.transaction_date DESC, t.id DESC`, userID)
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, t *Transaction) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET amount = $1::numeric, description = $2, category_id = $3, type = $4, transaction_date = $5,
		     goal_id = $6, notes = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING updated_at`,
		t.Amount.String(), t.Description, t.CategoryID, string(t.Type), t.TransactionDate.Time, t.GoalID, t.Notes, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) SumByType(ctx context.Context, userID int64, txType TransactionType) (decimal.Decimal, error) {
	var total string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM transactions WHERE user_id = $1 AND type = $2`,
		userID, string(txType),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s for user %d: %w", txType, userID, err)
	}
	return decimal.NewFromString(total)
}
