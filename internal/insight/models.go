package insight

import (
	"strings"
	"time"

	"fintrack/internal/dates"
	"fintrack/internal/money"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	GoalDeadline        NotificationType = "GOAL_DEADLINE"
	BudgetExceeded      NotificationType = "BUDGET_EXCEEDED"
	SpendingAlert       NotificationType = "SPENDING_ALERT"
	GoalMilestone       NotificationType = "GOAL_MILESTONE"
	RecommendationAlert NotificationType = "RECOMMENDATION_ALERT"
	SystemUpdate        NotificationType = "SYSTEM_UPDATE"
	AchievementUnlock   NotificationType = "ACHIEVEMENT_UNLOCK"
)

func ParseNotificationType(s string) (NotificationType, bool) {
	switch t := NotificationType(strings.ToUpper(strings.TrimSpace(s))); t {
	case GoalDeadline, BudgetExceeded, SpendingAlert, GoalMilestone,
		RecommendationAlert, SystemUpdate, AchievementUnlock:
		return t, true
	}
	return "", false
}

type RecommendationType string

const (
	BudgetOptimization   RecommendationType = "BUDGET_OPTIMIZATION"
	GoalAdjustment       RecommendationType = "GOAL_ADJUSTMENT"
	SpendingWarning      RecommendationType = "SPENDING_ALERT"
	SavingOpportunity    RecommendationType = "SAVING_OPPORTUNITY"
	CategoryRebalance    RecommendationType = "CATEGORY_REBALANCE"
	InvestmentSuggestion RecommendationType = "INVESTMENT_SUGGESTION"
)

func ParseRecommendationType(s string) (RecommendationType, bool) {
	switch t := RecommendationType(strings.ToUpper(strings.TrimSpace(s))); t {
	case BudgetOptimization, GoalAdjustment, SpendingWarning, SavingOpportunity,
		CategoryRebalance, InvestmentSuggestion:
		return t, true
	}
	return "", false
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, true
	}
	return "", false
}

// rank orders priorities from LOW (1) to CRITICAL (4).
func (p Priority) rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

type Period string

const (
	Weekly    Period = "WEEKLY"
	Monthly   Period = "MONTHLY"
	Quarterly Period = "QUARTERLY"
	Yearly    Period = "YEARLY"
)

func ParsePeriod(s string) (Period, bool) {
	switch p := Period(strings.ToUpper(strings.TrimSpace(s))); p {
	case Weekly, Monthly, Quarterly, Yearly:
		return p, true
	}
	return "", false
}

type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

func ParseTrend(s string) (Trend, bool) {
	switch t := Trend(strings.ToUpper(strings.TrimSpace(s))); t {
	case TrendUp, TrendDown, TrendStable:
		return t, true
	}
	return "", false
}

type Notification struct {
	ID                int64            `json:"id"`
	UserID            int64            `json:"userId"`
	NotificationType  NotificationType `json:"notificationType"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	RelatedGoalID     *int64           `json:"relatedGoalId"`
	RelatedCategoryID *int64           `json:"relatedCategoryId"`
	IsRead            bool             `json:"isRead"`
	IsUrgent          bool             `json:"isUrgent"`
	ActionURL         string           `json:"actionUrl"`
	ScheduledFor      time.Time        `json:"scheduledFor"`
	SentAt            *time.Time       `json:"sentAt"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type NotificationRequest struct {
	UserID            *int64     `json:"userId"`
	NotificationType  string     `json:"notificationType"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	RelatedGoalID     *int64     `json:"relatedGoalId"`
	RelatedCategoryID *int64     `json:"relatedCategoryId"`
	IsRead            bool       `json:"isRead"`
	IsUrgent          bool       `json:"isUrgent"`
	ActionURL         string     `json:"actionUrl"`
	ScheduledFor      *time.Time `json:"scheduledFor"`
}

type Recommendation struct {
	ID                 int64              `json:"id"`
	UserID             int64              `json:"userId"`
	RecommendationType RecommendationType `json:"recommendationType"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	PriorityLevel      Priority           `json:"priorityLevel"`
	CategoryID         *int64             `json:"categoryId"`
	GoalID             *int64             `json:"goalId"`
	IsRead             bool               `json:"isRead"`
	IsDismissed        bool               `json:"isDismissed"`
	ActionTaken        bool               `json:"actionTaken"`
	ExpiresAt          *time.Time         `json:"expiresAt"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Open reports whether the recommendation is neither read nor dismissed.
func (r Recommendation) Open() bool {
	return !r.IsRead && !r.IsDismissed
}

// Active reports whether the recommendation is open and not yet expired at now.
func (r Recommendation) Active(now time.Time) bool {
	return r.Open() && (r.ExpiresAt == nil || r.ExpiresAt.After(now))
}

type RecommendationRequest struct {
	UserID             *int64     `json:"userId"`
	RecommendationType string     `json:"recommendationType"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	PriorityLevel      string     `json:"priorityLevel"`
	CategoryID         *int64     `json:"categoryId"`
	GoalID             *int64     `json:"goalId"`
	ExpiresAt          *time.Time `json:"expiresAt"`
}

// Analytics is one SpendingAnalytics row: a user's spending in one category
// over one period.
type Analytics struct {
	ID                 int64           `json:"id"`
	UserID             int64           `json:"userId"`
	CategoryID         int64           `json:"categoryId"`
	AnalysisPeriod     Period          `json:"analysisPeriod"`
	PeriodStart        dates.Date      `json:"periodStart"`
	PeriodEnd          dates.Date      `json:"periodEnd"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TransactionCount   int64           `json:"transactionCount"`
	AverageTransaction decimal.Decimal `json:"averageTransaction"`
	PercentageOfTotal  decimal.Decimal `json:"percentageOfTotal"`
	TrendDirection     Trend           `json:"trendDirection"`
	TrendPercentage    decimal.Decimal `json:"trendPercentage"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// derive fills the computed fields before a save.
func (a *Analytics) derive() {
	if a.TransactionCount > 0 {
		a.AverageTransaction = money.Average(a.TotalAmount, a.TransactionCount)
	}
	if a.TrendDirection == "" {
		a.TrendDirection = TrendStable
	}
}

type AnalyticsRequest struct {
	UserID            *int64           `json:"userId"`
	CategoryID        *int64           `json:"categoryId"`
	AnalysisPeriod    string           `json:"analysisPeriod"`
	PeriodStart       *dates.Date      `json:"periodStart"`
	PeriodEnd         *dates.Date      `json:"periodEnd"`
	TotalAmount       decimal.Decimal  `json:"totalAmount"`
	TransactionCount  int64            `json:"transactionCount"`
	PercentageOfTotal *decimal.Decimal `json:"percentageOfTotal"`
	TrendDirection    string           `json:"trendDirection"`
	TrendPercentage   *decimal.Decimal `json:"trendPercentage"`
}
