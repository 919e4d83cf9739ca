package goals

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/database"
)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu           sync.RWMutex
	categories   map[int64]Category
	goals        map[int64]Goal
	snapshots    []Snapshot
	nextCategory int64
	nextGoal     int64
	nextSnapshot int64

	// now is swappable so tests can order goals by creation time
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[int64]Category),
		goals:      make(map[int64]Goal),
		now:        func() time.Time { return time.Now().UTC() },
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
		return fmt.Errorf("create goal category: %w", database.ErrDuplicate)
	}
	s.nextCategory++
	now := s.now()
	c.ID, c.CreatedAt, c.UpdatedAt = s.nextCategory, now, now
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id int64) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return Category{}, fmt.Errorf("get goal category %d: %w", id, database.ErrNotFound)
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
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok {
		return fmt.Errorf("update goal category %d: %w", c.ID, database.ErrNotFound)
	}
	if s.nameTaken(c.Name, c.ID) {
		return fmt.Errorf("update goal category %d: %w", c.ID, database.ErrDuplicate)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("delete goal category %d: %w", id, database.ErrNotFound)
	}
	for _, g := range s.goals {
		if g.CategoryID == id {
			return fmt.Errorf("delete goal category %d: %w", id, database.ErrInUse)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) withCategory(g Goal) Goal {
	if c, ok := s.categories[g.CategoryID]; ok {
		g.Category = &c
	}
	return g
}

func (s *MemoryStore) CreateGoal(_ context.Context, g *Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[g.CategoryID]; !ok {
		return fmt.Errorf("create goal: category %d: %w", g.CategoryID, database.ErrNotFound)
	}
	s.nextGoal++
	now := s.now()
	g.ID, g.CreatedAt, g.UpdatedAt = s.nextGoal, now, now
	stored := *g
	stored.Category = nil
	s.goals[g.ID] = stored
	return nil
}

func (s *MemoryStore) GetGoal(_ context.Context, id int64) (Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok {
		return Goal{}, fmt.Errorf("get goal %d: %w", id, database.ErrNotFound)
	}
	return s.withCategory(g), nil
}

func (s *MemoryStore) ListGoals(_ context.Context) ([]Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goals := make([]Goal, 0, len(s.goals))
	for _, g := range s.goals {
		goals = append(goals, s.withCategory(g))
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (s *MemoryStore) ListGoalsByUser(_ context.Context, userID int64) ([]Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goals := []Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			goals = append(goals, s.withCategory(g))
		}
	}
	sort.Slice(goals, func(i, j int) bool {
		if !goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].CreatedAt.After(goals[j].CreatedAt)
		}
		return goals[i].ID > goals[j].ID
	})
	return goals, nil
}

func (s *MemoryStore) UpdateGoal(_ context.Context, g *Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.goals[g.ID]
	if !ok {
		return fmt.Errorf("update goal %d: %w", g.ID, database.ErrNotFound)
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = s.now()
	stored := *g
	stored.Category = nil
	s.goals[g.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("delete goal %d: %w", id, database.ErrNotFound)
	}
	delete(s.goals, id)

	// Snapshots cascade with their goal
	kept := s.snapshots[:0]
	for _, snap := range s.snapshots {
		if snap.GoalID != id {
			kept = append(kept, snap)
		}
	}
	s.snapshots = kept
	return nil
}

func (s *MemoryStore) CreateSnapshot(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[snap.GoalID]; !ok {
		return fmt.Errorf("create snapshot for goal %d: %w", snap.GoalID, database.ErrNotFound)
	}
	s.nextSnapshot++
	snap.ID, snap.CreatedAt = s.nextSnapshot, s.now()
	s.snapshots = append(s.snapshots, *snap)
	return nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, goalID int64) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := []Snapshot{}
	for _, snap := range s.snapshots {
		if snap.GoalID == goalID {
			snapshots = append(snapshots, snap)
		}
	}
	return snapshots, nil
}
