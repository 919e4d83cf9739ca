package insight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(kind string, amount string, category int64) remoteTransaction {
	return remoteTransaction{Type: kind, Amount: decimal.RequireFromString(amount), CategoryID: &category}
}

func TestCombine(t *testing.T) {
	t.Run("should total both sides", func(t *testing.T) {
		in := combine(
			[]remoteTransaction{tx(txIncome, "1000", 1), tx(txExpense, "250.50", 2), tx(txExpense, "49.50", 3)},
			[]remoteGoal{
				{TargetAmount: decimal.NewFromInt(300), CurrentAmount: decimal.NewFromInt(100)},
				{TargetAmount: decimal.NewFromInt(600), CurrentAmount: decimal.NewFromInt(200)},
			},
		)
		assert.True(t, in.TotalIncome.Equal(decimal.NewFromInt(1000)))
		assert.True(t, in.TotalSpent.Equal(decimal.NewFromInt(300)))
		assert.True(t, in.NetSavings.Equal(decimal.NewFromInt(700)))
		assert.True(t, in.TotalGoalTargets.Equal(decimal.NewFromInt(900)))
		assert.Equal(t, "33.33", in.OverallGoalProgress.StringFixed(2))
	})

	t.Run("should answer zero progress without targets", func(t *testing.T) {
		in := combine(nil, nil)
		assert.True(t, in.OverallGoalProgress.IsZero())
		assert.True(t, in.NetSavings.IsZero())
	})
}

func TestAdvise(t *testing.T) {
	active := []remoteGoal{{Status: "ACTIVE"}}

	t.Run("should break spending ties on the lowest category", func(t *testing.T) {
		advice := advise([]remoteTransaction{
			tx(txExpense, "80", 7), tx(txExpense, "50", 3), tx(txExpense, "30", 3), tx(txIncome, "900", 1),
		}, active)
		require.NotEmpty(t, advice)
		assert.Equal(t, "BUDGET_ALERT", advice[0].Type)
		assert.Equal(t, int64(3), *advice[0].CategoryID)
		assert.Equal(t, "Category 3 has the highest spending. Consider setting a budget limit.", advice[0].Description)
		assert.Equal(t, PriorityHigh, advice[0].Priority)
	})

	t.Run("should suggest goals when none is active", func(t *testing.T) {
		advice := advise(nil, []remoteGoal{{Status: "COMPLETED"}})
		require.Len(t, advice, 1)
		assert.Equal(t, "GOAL_SUGGESTION", advice[0].Type)
		assert.Equal(t, "Set Financial Goals", advice[0].Title)
		assert.Equal(t, PriorityMedium, advice[0].Priority)
	})

	t.Run("should flag a savings rate under twenty percent", func(t *testing.T) {
		advice := advise([]remoteTransaction{tx(txIncome, "1000", 1), tx(txExpense, "850", 2)}, active)
		require.Len(t, advice, 2)
		savings := advice[1]
		assert.Equal(t, "SAVINGS_IMPROVEMENT", savings.Type)
		assert.Equal(t, "Increase Savings Rate", savings.Title)
		assert.Equal(t, "Your current savings rate is 15%. Consider aiming for 20% or higher.", savings.Description)
		assert.True(t, savings.CurrentSavingsRate.Equal(decimal.NewFromInt(15)))
	})

	t.Run("should not flag exactly twenty percent", func(t *testing.T) {
		advice := advise([]remoteTransaction{tx(txIncome, "1000", 1), tx(txExpense, "800", 2)}, active)
		for _, a := range advice {
			assert.NotEqual(t, "SAVINGS_IMPROVEMENT", a.Type)
		}
	})

	t.Run("should skip the savings rule without both sides", func(t *testing.T) {
		advice := advise([]remoteTransaction{tx(txIncome, "1000", 1)}, active)
		assert.Empty(t, advice)
	})
}

func TestOverallTrend(t *testing.T) {
	rows := func(kinds ...Trend) []Analytics {
		list := make([]Analytics, len(kinds))
		for i, k := range kinds {
			list[i].TrendDirection = k
		}
		return list
	}

	assert.Equal(t, overallNoData, overallTrend(nil))
	assert.Equal(t, overallFlat, overallTrend(rows(TrendUp, TrendDown)))
	assert.Equal(t, overallIncreasing, overallTrend(rows(TrendUp, TrendUp, TrendStable)))
	assert.Equal(t, overallIncreasing, overallTrend(rows(TrendUp)))
}

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("user_id = ?", int64(1))
	w.raw("NOT is_read")
	w.add("created_at >= ?", "x")
	assert.Equal(t, " WHERE user_id = $1 AND NOT is_read AND created_at >= $2", w.String())
	assert.Equal(t, []any{int64(1), "x"}, w.args)
}
