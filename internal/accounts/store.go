package accounts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/database"

	"gorm.io/gorm"
)

// Store is the persistence boundary of the account service.
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
}

// GormStore keeps users in Postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the users table and returns a store over db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Create(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", database.Translate(err))
	}
	return nil
}

func (s *GormStore) GetByID(ctx context.Context, id int64) (User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, database.Translate(err))
	}
	return user, nil
}

func (s *GormStore) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return User{}, fmt.Errorf("get user by email: %w", database.Translate(err))
	}
	return user, nil
}

func (s *GormStore) List(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) Update(ctx context.Context, user *User) error {
	// Select("*") writes zero values such as isActive=false
	result := s.db.WithContext(ctx).Model(user).Select("*").Omit("created_at").Updates(user)
	if result.Error != nil {
		return fmt.Errorf("update user %d: %w", user.ID, database.Translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", user.ID, database.ErrNotFound)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", id, database.ErrNotFound)
	}
	return nil
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]User)}
}

func (s *MemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", database.ErrDuplicate)
		}
	}
	s.nextID++
	now := time.Now().UTC()
	user.ID, user.CreatedAt, user.UpdatedAt = s.nextID, now, now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("get user %d: %w", id, database.ErrNotFound)
	}
	return u, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("get user by email: %w", database.ErrNotFound)
}

func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("update user %d: %w", user.ID, database.ErrNotFound)
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("delete user %d: %w", id, database.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

// isNotFound is shorthand used by handlers that branch on a missing user.
func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
