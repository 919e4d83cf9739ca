package finance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/database"

	"github.com/shopspring/decimal"
)

// MemoryStore is a Store kept in process memory. It backs the service when no
// database is configured and the handler tests.
type MemoryStore struct {
	mu           sync.RWMutex
	categories   map[int64]Category
	transactions map[int64]Transaction
	nextCategory int64
	nextTx       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:   make(map[int64]Category),
		transactions: make(map[int64]Transaction),
	}
}

func (s *MemoryStore) nameTaken(name string, excludeID int64) bool {
	for _, c := range s.categories {
		if c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(c.Name, 0) {
		return fmt.Errorf("create category: %w", database.ErrDuplicate)
	}
	s.nextCategory++
	now := time.Now().UTC()
	c.ID, c.CreatedAt, c.UpdatedAt = s.nextCategory, now, now
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id int64) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return Category{}, fmt.Errorf("get category %d: %w", id, database.ErrNotFound)
	}
	return c, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok {
		return fmt.Errorf("update category %d: %w", c.ID, database.ErrNotFound)
	}
	if s.nameTaken(c.Name, c.ID) {
		return fmt.Errorf("update category %d: %w", c.ID, database.ErrDuplicate)
	}
	c.CreatedAt = existing.CreatedAt
	c.IsDefault = existing.IsDefault
	c.UpdatedAt = time.Now().UTC()
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("delete category %d: %w", id, database.ErrNotFound)
	}
	for _, t := range s.transactions {
		if t.CategoryID == id {
			return fmt.Errorf("delete category %d: %w", id, database.ErrInUse)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) CategoryNameTaken(_ context.Context, name string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameTaken(name, excludeID), nil
}

func (s *MemoryStore) CountDefaultCategories(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.categories {
		if c.IsDefault {
			n++
		}
	}
	return n, nil
}

// withCategory attaches the current category row, as the SQL join does.
func (s *MemoryStore) withCategory(t Transaction) Transaction {
	if c, ok := s.categories[t.CategoryID]; ok {
		t.Category = &c
	}
	return t
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[t.CategoryID]; !ok {
		return fmt.Errorf("create transaction: category %d: %w", t.CategoryID, database.ErrNotFound)
	}
	s.nextTx++
	now := time.Now().UTC()
	t.ID, t.CreatedAt, t.UpdatedAt = s.nextTx, now, now
	stored := *t
	stored.Category = nil
	s.transactions[t.ID] = stored
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id int64) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return Transaction{}, fmt.Errorf("get transaction %d: %w", id, database.ErrNotFound)
	}
	return s.withCategory(t), nil
}

func (s *MemoryStore) ListTransactions(_ context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		transactions = append(transactions, s.withCategory(t))
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	return transactions, nil
}

func (s *MemoryStore) ListTransactionsByUser(_ context.Context, userID int64) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := []Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			transactions = append(transactions, s.withCategory(t))
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		if !a.TransactionDate.Equal(b.TransactionDate.Time) {
			return a.TransactionDate.After(b.TransactionDate.Time)
		}
		return a.ID > b.ID
	})
	return transactions, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[t.ID]
	if !ok {
		return fmt.Errorf("update transaction %d: %w", t.ID, database.ErrNotFound)
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	stored := *t
	stored.Category = nil
	s.transactions[t.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("delete transaction %d: %w", id, database.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

func (s *MemoryStore) SumByType(_ context.Context, userID int64, txType TransactionType) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, t := range s.transactions {
		if t.UserID == userID && t.Type == txType {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}
