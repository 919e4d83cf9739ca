package insight

import (
	"fmt"
	"sort"

	"fintrack/internal/money"

	"github.com/shopspring/decimal"
)

const (
	txIncome  = "INCOME"
	txExpense = "EXPENSE"

	overallIncreasing = "INCREASING"
	overallFlat       = "STABLE_OR_DECREASING"
	overallNoData     = "NO_DATA"
)

// targetSavingsRate is the savings-rate floor below which a user is nudged.
var targetSavingsRate = decimal.RequireFromString("0.20")

// CombinedInsights rolls a user's transactions and goals into totals.
type CombinedInsights struct {
	TotalSpent          decimal.Decimal `json:"totalSpent"`
	TotalIncome         decimal.Decimal `json:"totalIncome"`
	NetSavings          decimal.Decimal `json:"netSavings"`
	TotalGoalTargets    decimal.Decimal `json:"totalGoalTargets"`
	TotalGoalProgress   decimal.Decimal `json:"totalGoalProgress"`
	OverallGoalProgress decimal.Decimal `json:"overallGoalProgress"`
}

// SpendingSummary is the analytics summary for one user and period.
type SpendingSummary struct {
	TotalSpending      decimal.Decimal `json:"totalSpending"`
	CategoryCount      int             `json:"categoryCount"`
	AveragePerCategory decimal.Decimal `json:"averagePerCategory"`
	TopCategory        *Analytics      `json:"topCategory"`
	Period             Period          `json:"period"`
	Analytics          []Analytics     `json:"analytics"`
}

// Advice is one rule-based recommendation computed on the fly. It is never
// stored.
type Advice struct {
	Type               string           `json:"type"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Priority           Priority         `json:"priority"`
	CategoryID         *int64           `json:"categoryId,omitempty"`
	CurrentSavingsRate *decimal.Decimal `json:"currentSavingsRate,omitempty"`
}

func sumByType(transactions []remoteTransaction, kind string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type == kind {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func combine(transactions []remoteTransaction, goals []remoteGoal) CombinedInsights {
	in := CombinedInsights{
		TotalSpent:        sumByType(transactions, txExpense),
		TotalIncome:       sumByType(transactions, txIncome),
		TotalGoalTargets:  decimal.Zero,
		TotalGoalProgress: decimal.Zero,
	}
	for _, g := range goals {
		in.TotalGoalTargets = in.TotalGoalTargets.Add(g.TargetAmount)
		in.TotalGoalProgress = in.TotalGoalProgress.Add(g.CurrentAmount)
	}
	in.NetSavings = in.TotalIncome.Sub(in.TotalSpent)
	in.OverallGoalProgress = money.Percent(in.TotalGoalProgress, in.TotalGoalTargets)
	return in
}

func goalsByStatus(goals []remoteGoal) map[string]int {
	counts := make(map[string]int)
	for _, g := range goals {
		counts[g.Status]++
	}
	return counts
}

func goalRelatedCount(transactions []remoteTransaction) int {
	n := 0
	for _, t := range transactions {
		if t.GoalID != nil {
			n++
		}
	}
	return n
}

// spendingByCategory totals EXPENSE amounts per category. Uncategorized rows
// are skipped.
func spendingByCategory(transactions []remoteTransaction) map[int64]decimal.Decimal {
	totals := make(map[int64]decimal.Decimal)
	for _, t := range transactions {
		if t.Type != txExpense || t.CategoryID == nil {
			continue
		}
		totals[*t.CategoryID] = totals[*t.CategoryID].Add(t.Amount)
	}
	return totals
}

func goalsByCategory(goals []remoteGoal) map[int64][]remoteGoal {
	grouped := make(map[int64][]remoteGoal)
	for _, g := range goals {
		if g.CategoryID != nil {
			grouped[*g.CategoryID] = append(grouped[*g.CategoryID], g)
		}
	}
	return grouped
}

// topSpendingCategory returns the category with the largest total, preferring
// the lowest id on ties.
func topSpendingCategory(totals map[int64]decimal.Decimal) (int64, bool) {
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var (
		best  int64
		found bool
	)
	for _, id := range ids {
		if !found || totals[id].GreaterThan(totals[best]) {
			best, found = id, true
		}
	}
	return best, found
}

func advise(transactions []remoteTransaction, goals []remoteGoal) []Advice {
	advice := []Advice{}

	if id, ok := topSpendingCategory(spendingByCategory(transactions)); ok {
		advice = append(advice, Advice{
			Type:        "BUDGET_ALERT",
			Title:       "Review High Spending Category",
			Description: fmt.Sprintf("Category %d has the highest spending. Consider setting a budget limit.", id),
			Priority:    PriorityHigh,
			CategoryID:  &id,
		})
	}

	active := 0
	for _, g := range goals {
		if g.Status == "ACTIVE" {
			active++
		}
	}
	if active == 0 {
		advice = append(advice, Advice{
			Type:        "GOAL_SUGGESTION",
			Title:       "Set Financial Goals",
			Description: "Setting financial goals can help you save more effectively. Consider creating your first goal.",
			Priority:    PriorityMedium,
		})
	}

	income, expense := sumByType(transactions, txIncome), sumByType(transactions, txExpense)
	if income.IsPositive() && expense.IsPositive() {
		rate := money.Ratio(income.Sub(expense), income)
		if rate.LessThan(targetSavingsRate) {
			pct := rate.Mul(money.Hundred)
			advice = append(advice, Advice{
				Type:  "SAVINGS_IMPROVEMENT",
				Title: "Increase Savings Rate",
				Description: fmt.Sprintf("Your current savings rate is %d%%. Consider aiming for 20%% or higher.",
					pct.IntPart()),
				Priority:           PriorityHigh,
				CurrentSavingsRate: &pct,
			})
		}
	}
	return advice
}

// summarize builds the spending summary over rows already filtered to one
// period. rows must be ordered by id so ties keep the earliest row.
func summarize(rows []Analytics, period Period) SpendingSummary {
	s := SpendingSummary{
		TotalSpending:      decimal.Zero,
		AveragePerCategory: decimal.Zero,
		Period:             period,
		Analytics:          rows,
	}
	if len(rows) == 0 {
		return s
	}

	for i := range rows {
		s.TotalSpending = s.TotalSpending.Add(rows[i].TotalAmount)
		if s.TopCategory == nil || rows[i].TotalAmount.GreaterThan(s.TopCategory.TotalAmount) {
			s.TopCategory = &rows[i]
		}
	}
	s.CategoryCount = len(rows)
	s.AveragePerCategory = money.Average(s.TotalSpending, int64(len(rows)))
	return s
}

// overallTrend classifies the recent rows: INCREASING when more than half
// (integer division) trend UP.
func overallTrend(recent []Analytics) string {
	if len(recent) == 0 {
		return overallNoData
	}
	up := 0
	for _, a := range recent {
		if a.TrendDirection == TrendUp {
			up++
		}
	}
	if up > len(recent)/2 {
		return overallIncreasing
	}
	return overallFlat
}
