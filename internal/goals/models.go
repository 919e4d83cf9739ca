package goals

import (
	"strings"
	"time"

	"fintrack/internal/dates"
	"fintrack/internal/money"

	"github.com/shopspring/decimal"
)

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

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusPaused    Status = "PAUSED"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusActive, StatusCompleted, StatusPaused, StatusCancelled:
		return st, true
	}
	return "", false
}

type SnapshotType string

const (
	SnapshotDaily     SnapshotType = "DAILY"
	SnapshotWeekly    SnapshotType = "WEEKLY"
	SnapshotMonthly   SnapshotType = "MONTHLY"
	SnapshotMilestone SnapshotType = "MILESTONE"
	SnapshotManual    SnapshotType = "MANUAL"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ColorCode   string    `json:"colorCode"`
	SortOrder   int       `json:"sortOrder"`
	IsDefault   bool      `json:"isDefault"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	defaultIcon      = "target"
	defaultColorCode = "#3B82F6"
)

type Goal struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"userId"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	TargetAmount         decimal.Decimal `json:"targetAmount"`
	CurrentAmount        decimal.Decimal `json:"currentAmount"`
	CategoryID           int64           `json:"categoryId"`
	Category             *Category       `json:"category,omitempty"`
	PriorityLevel        Priority        `json:"priorityLevel"`
	Status               Status          `json:"status"`
	CompletionPercentage decimal.Decimal `json:"completionPercentage"`
	TargetDate           dates.Date      `json:"targetDate"`
	StartDate            dates.Date      `json:"startDate"`
	IsShared             bool            `json:"isShared"`
	MotivationNote       string          `json:"motivationNote"`
	RewardDescription    string          `json:"rewardDescription"`
	ImageURL             string          `json:"imageUrl"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	CompletedAt          *time.Time      `json:"completedAt"`
}

// refreshProgress recomputes completionPercentage and keeps status in step
// with it. When the request named a status that status stands; otherwise a
// goal reaching 100% is marked completed and a completed goal that drops
// below 100% goes back to active. completedAt is only set while the goal is
// completed.
func (g *Goal) refreshProgress(now time.Time, statusSet bool) {
	g.CompletionPercentage = money.Completion(g.CurrentAmount, g.TargetAmount)
	if !statusSet {
		switch {
		case g.Completed():
			g.Status = StatusCompleted
		case g.Status == StatusCompleted:
			g.Status = StatusActive
		}
	}

	if g.Status != StatusCompleted {
		g.CompletedAt = nil
		return
	}
	if g.CompletedAt == nil {
		at := now.UTC()
		g.CompletedAt = &at
	}
}

// Completed reports whether the goal has reached its target.
func (g Goal) Completed() bool {
	return g.CompletionPercentage.GreaterThanOrEqual(money.MaxPercent)
}

type Snapshot struct {
	ID                 int64           `json:"id"`
	GoalID             int64           `json:"goalId"`
	Amount             decimal.Decimal `json:"amount"`
	ProgressPercentage decimal.Decimal `json:"progressPercentage"`
	AmountChange       decimal.Decimal `json:"amountChange"`
	SnapshotType       SnapshotType    `json:"snapshotType"`
	SnapshotDate       dates.Date      `json:"snapshotDate"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type GoalRequest struct {
	UserID            *int64           `json:"userId"`
	Title             *string          `json:"title"`
	Description       *string          `json:"description"`
	TargetAmount      *decimal.Decimal `json:"targetAmount"`
	CurrentAmount     *decimal.Decimal `json:"currentAmount"`
	CategoryID        *int64           `json:"categoryId"`
	PriorityLevel     *string          `json:"priorityLevel"`
	Status            *string          `json:"status"`
	TargetDate        *dates.Date      `json:"targetDate"`
	StartDate         *dates.Date      `json:"startDate"`
	IsShared          *bool            `json:"isShared"`
	MotivationNote    *string          `json:"motivationNote"`
	RewardDescription *string          `json:"rewardDescription"`
	ImageURL          *string          `json:"imageUrl"`
}

func (r GoalRequest) statusSet() bool {
	return r.Status != nil && *r.Status != ""
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	ColorCode   *string `json:"colorCode"`
	SortOrder   *int    `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}
