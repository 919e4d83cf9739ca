package insight

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
	mu              sync.RWMutex
	notifications   map[int64]Notification
	recommendations map[int64]Recommendation
	analytics       map[int64]Analytics
	nextID          map[string]int64

	// now stamps createdAt and updatedAt; tests replace it to age rows
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications:   make(map[int64]Notification),
		recommendations: make(map[int64]Recommendation),
		analytics:       make(map[int64]Analytics),
		nextID:          make(map[string]int64),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Notifications

func (s *MemoryStore) CreateNotification(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n.ID, n.CreatedAt, n.UpdatedAt = s.id("notifications"), now, now
	s.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) GetNotification(_ context.Context, id int64) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return Notification{}, fmt.Errorf("get notification %d: %w", id, database.ErrNotFound)
	}
	return n, nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, f NotificationFilter) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []Notification{}
	for _, n := range s.notifications {
		if f.matches(n) {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if f.Order == UrgentFirst && a.IsUrgent != b.IsUrgent {
			return a.IsUrgent
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return list, nil
}

func (s *MemoryStore) CountUnreadNotifications(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListNotificationsDue(_ context.Context, now time.Time) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []Notification{}
	for _, n := range s.notifications {
		if n.SentAt == nil && !n.ScheduledFor.After(now) {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ScheduledFor.Equal(list[j].ScheduledFor) {
			return list[i].ScheduledFor.Before(list[j].ScheduledFor)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemoryStore) UpdateNotification(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notifications[n.ID]
	if !ok {
		return fmt.Errorf("update notification %d: %w", n.ID, database.ErrNotFound)
	}
	n.CreatedAt, n.UpdatedAt = existing.CreatedAt, s.now()
	s.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) DeleteNotification(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok {
		return fmt.Errorf("delete notification %d: %w", id, database.ErrNotFound)
	}
	delete(s.notifications, id)
	return nil
}

// Recommendations

func (s *MemoryStore) CreateRecommendation(_ context.Context, r *Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r.ID, r.CreatedAt, r.UpdatedAt = s.id("recommendations"), now, now
	s.recommendations[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetRecommendation(_ context.Context, id int64) (Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recommendations[id]
	if !ok {
		return Recommendation{}, fmt.Errorf("get recommendation %d: %w", id, database.ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) ListRecommendations(_ context.Context, f RecommendationFilter) ([]Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []Recommendation{}
	for _, r := range s.recommendations {
		if f.matches(r) {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.PriorityLevel.rank() != b.PriorityLevel.rank() {
			return a.PriorityLevel.rank() > b.PriorityLevel.rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return list, nil
}

func (s *MemoryStore) CountOpenRecommendations(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, r := range s.recommendations {
		if r.UserID == userID && r.Open() {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) UpdateRecommendation(_ context.Context, r *Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.recommendations[r.ID]
	if !ok {
		return fmt.Errorf("update recommendation %d: %w", r.ID, database.ErrNotFound)
	}
	r.CreatedAt, r.UpdatedAt = existing.CreatedAt, s.now()
	s.recommendations[r.ID] = *r
	return nil
}

func (s *MemoryStore) DeleteRecommendation(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recommendations[id]; !ok {
		return fmt.Errorf("delete recommendation %d: %w", id, database.ErrNotFound)
	}
	delete(s.recommendations, id)
	return nil
}

func (s *MemoryStore) DismissExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, r := range s.recommendations {
		if r.IsDismissed || r.ExpiresAt == nil || r.ExpiresAt.After(now) {
			continue
		}
		r.IsDismissed = true
		r.UpdatedAt = s.now()
		s.recommendations[id] = r
		count++
	}
	return count, nil
}

// Spending analytics

func (s *MemoryStore) CreateAnalytics(_ context.Context, a *Analytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a.ID, a.CreatedAt, a.UpdatedAt = s.id("analytics"), now, now
	s.analytics[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAnalytics(_ context.Context, id int64) (Analytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analytics[id]
	if !ok {
		return Analytics{}, fmt.Errorf("get analytics %d: %w", id, database.ErrNotFound)
	}
	return a, nil
}

func (s *MemoryStore) ListAnalytics(_ context.Context, f AnalyticsFilter) ([]Analytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []Analytics{}
	for _, a := range s.analytics {
		if f.matches(a) {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch f.Order {
		case ByTotalDesc:
			if !a.TotalAmount.Equal(b.TotalAmount) {
				return a.TotalAmount.GreaterThan(b.TotalAmount)
			}
		case ByPeriodStartDesc:
			if !a.PeriodStart.Equal(b.PeriodStart.Time) {
				return a.PeriodStart.After(b.PeriodStart.Time)
			}
		case ByTrendPercentageDesc:
			if !a.TrendPercentage.Equal(b.TrendPercentage) {
				return a.TrendPercentage.GreaterThan(b.TrendPercentage)
			}
		}
		return a.ID < b.ID
	})
	return list, nil
}

func (s *MemoryStore) UpdateAnalytics(_ context.Context, a *Analytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.analytics[a.ID]
	if !ok {
		return fmt.Errorf("update analytics %d: %w", a.ID, database.ErrNotFound)
	}
	a.CreatedAt, a.UpdatedAt = existing.CreatedAt, s.now()
	s.analytics[a.ID] = *a
	return nil
}

func (s *MemoryStore) DeleteAnalytics(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.analytics[id]; !ok {
		return fmt.Errorf("delete analytics %d: %w", id, database.ErrNotFound)
	}
	delete(s.analytics, id)
	return nil
}
