package insight

import (
	"context"
	"time"

	"fintrack/internal/dates"
)

// NotificationOrder selects the sort of a notification list.
type NotificationOrder int

const (
	// UrgentFirst sorts by isUrgent desc, then createdAt desc.
	UrgentFirst NotificationOrder = iota
	// NewestFirst sorts by createdAt desc.
	NewestFirst
)

// NotificationFilter narrows a user's notifications. Zero fields do not filter.
type NotificationFilter struct {
	UserID     int64
	UnreadOnly bool
	UrgentOnly bool
	Type       NotificationType
	GoalID     *int64
	CategoryID *int64
	Since      *time.Time
	Order      NotificationOrder
}

func (f NotificationFilter) matches(n Notification) bool {
	switch {
	case n.UserID != f.UserID:
		return false
	case f.UnreadOnly && n.IsRead:
		return false
	case f.UrgentOnly && !n.IsUrgent:
		return false
	case f.Type != "" && n.NotificationType != f.Type:
		return false
	case f.GoalID != nil && (n.RelatedGoalID == nil || *n.RelatedGoalID != *f.GoalID):
		return false
	case f.CategoryID != nil && (n.RelatedCategoryID == nil || *n.RelatedCategoryID != *f.CategoryID):
		return false
	case f.Since != nil && n.CreatedAt.Before(*f.Since):
		return false
	}
	return true
}

// RecommendationFilter narrows a user's recommendations. Open keeps unread,
// undismissed rows; ActiveAt additionally drops rows expired at that instant.
type RecommendationFilter struct {
	UserID     int64
	Type       RecommendationType
	Priority   Priority
	CategoryID *int64
	GoalID     *int64
	Open       bool
	ActiveAt   *time.Time
}

func (f RecommendationFilter) matches(r Recommendation) bool {
	switch {
	case r.UserID != f.UserID:
		return false
	case f.Type != "" && r.RecommendationType != f.Type:
		return false
	case f.Priority != "" && r.PriorityLevel != f.Priority:
		return false
	case f.CategoryID != nil && (r.CategoryID == nil || *r.CategoryID != *f.CategoryID):
		return false
	case f.GoalID != nil && (r.GoalID == nil || *r.GoalID != *f.GoalID):
		return false
	case f.Open && !r.Open():
		return false
	case f.ActiveAt != nil && !r.Active(*f.ActiveAt):
		return false
	}
	return true
}

// AnalyticsOrder selects the sort of an analytics list.
type AnalyticsOrder int

const (
	ByID AnalyticsOrder = iota
	ByTotalDesc
	ByPeriodStartDesc
	ByTrendPercentageDesc
)

// AnalyticsFilter narrows a user's analytics rows. From and To bound
// periodStart inclusively.
type AnalyticsFilter struct {
	UserID     int64
	Period     Period
	CategoryID *int64
	From       *dates.Date
	To         *dates.Date
	TrendUp    bool
	Order      AnalyticsOrder
}

func (f AnalyticsFilter) matches(a Analytics) bool {
	switch {
	case a.UserID != f.UserID:
		return false
	case f.Period != "" && a.AnalysisPeriod != f.Period:
		return false
	case f.CategoryID != nil && a.CategoryID != *f.CategoryID:
		return false
	case f.From != nil && a.PeriodStart.Before(f.From.Time):
		return false
	case f.To != nil && a.PeriodStart.After(f.To.Time):
		return false
	case f.TrendUp && a.TrendDirection != TrendUp:
		return false
	}
	return true
}

// Store is the persistence boundary of the insight service.
type Store interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotification(ctx context.Context, id int64) (Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)
	CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	// ListNotificationsDue returns rows scheduled at or before now and not yet sent.
	ListNotificationsDue(ctx context.Context, now time.Time) ([]Notification, error)
	UpdateNotification(ctx context.Context, n *Notification) error
	DeleteNotification(ctx context.Context, id int64) error

	CreateRecommendation(ctx context.Context, r *Recommendation) error
	GetRecommendation(ctx context.Context, id int64) (Recommendation, error)
	// ListRecommendations sorts by priority desc, then createdAt desc.
	ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]Recommendation, error)
	CountOpenRecommendations(ctx context.Context, userID int64) (int64, error)
	UpdateRecommendation(ctx context.Context, r *Recommendation) error
	DeleteRecommendation(ctx context.Context, id int64) error
	// DismissExpired dismisses undismissed rows with expiresAt at or before now.
	DismissExpired(ctx context.Context, now time.Time) (int64, error)

	CreateAnalytics(ctx context.Context, a *Analytics) error
	GetAnalytics(ctx context.Context, id int64) (Analytics, error)
	ListAnalytics(ctx context.Context, filter AnalyticsFilter) ([]Analytics, error)
	UpdateAnalytics(ctx context.Context, a *Analytics) error
	DeleteAnalytics(ctx context.Context, id int64) error
}
