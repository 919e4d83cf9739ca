package insight

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/peer"

	"github.com/shopspring/decimal"
)

// remoteTransaction is a finance transaction as the insight service reads it.
type remoteTransaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      *int64          `json:"categoryId"`
	Type            string          `json:"type"`
	TransactionDate string          `json:"transactionDate"`
	GoalID          *int64          `json:"goalId"`
	Notes           string          `json:"notes"`
}

// remoteGoal is a goal as the insight service reads it.
type remoteGoal struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"userId"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	TargetAmount         decimal.Decimal `json:"targetAmount"`
	CurrentAmount        decimal.Decimal `json:"currentAmount"`
	CategoryID           *int64          `json:"categoryId"`
	PriorityLevel        string          `json:"priorityLevel"`
	Status               string          `json:"status"`
	CompletionPercentage decimal.Decimal `json:"completionPercentage"`
	TargetDate           *string         `json:"targetDate"`
	StartDate            *string         `json:"startDate"`
}

// transactionSummary is the finance per-user summary.
type transactionSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

var errPeerNotConfigured = errors.New("peer service not configured")

func (h *Handler) userTransactions(ctx context.Context, userID int64) ([]remoteTransaction, error) {
	if h.finance == nil {
		return nil, fmt.Errorf("finance: %w", errPeerNotConfigured)
	}
	var resp struct {
		Transactions []remoteTransaction `json:"transactions"`
	}
	if err := h.finance.Get(ctx, fmt.Sprintf("/finance/transactions/user/%d", userID), &resp); err != nil {
		return nil, err
	}
	if resp.Transactions == nil {
		resp.Transactions = []remoteTransaction{}
	}
	return resp.Transactions, nil
}

func (h *Handler) userSummary(ctx context.Context, userID int64) (transactionSummary, error) {
	var summary transactionSummary
	if h.finance == nil {
		return summary, fmt.Errorf("finance: %w", errPeerNotConfigured)
	}
	err := h.finance.Get(ctx, fmt.Sprintf("/finance/transactions/user/%d/summary", userID), &summary)
	return summary, err
}

func (h *Handler) userGoals(ctx context.Context, userID int64) ([]remoteGoal, error) {
	if h.goals == nil {
		return nil, fmt.Errorf("goals: %w", errPeerNotConfigured)
	}
	var resp struct {
		Goals []remoteGoal `json:"goals"`
	}
	if err := h.goals.Get(ctx, fmt.Sprintf("/goals/user/%d", userID), &resp); err != nil {
		return nil, err
	}
	if resp.Goals == nil {
		resp.Goals = []remoteGoal{}
	}
	return resp.Goals, nil
}

// categories reads a category list from either peer. Entries are kept opaque.
func categories(ctx context.Context, client *peer.Client, path string) ([]map[string]any, error) {
	if client == nil {
		return nil, errPeerNotConfigured
	}
	var resp struct {
		Categories []map[string]any `json:"categories"`
	}
	if err := client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		resp.Categories = []map[string]any{}
	}
	return resp.Categories, nil
}
