package insight

import (
	"context"
	"net/http"
	"testing"
	"time"

	"fintrack/internal/dates"
	"fintrack/internal/peer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var richPeers = peerFixture{
	transactions: `[
		{"id":1,"userId":1,"amount":1000,"type":"INCOME","categoryId":1,"goalId":5},
		{"id":2,"userId":1,"amount":600,"type":"EXPENSE","categoryId":2},
		{"id":3,"userId":1,"amount":300,"type":"EXPENSE","categoryId":3}
	]`,
	goals: `[
		{"id":5,"userId":1,"title":"Car","targetAmount":1000,"currentAmount":250,"categoryId":1,"status":"ACTIVE"},
		{"id":6,"userId":1,"title":"Trip","targetAmount":1000,"currentAmount":1000,"categoryId":1,"status":"COMPLETED"}
	]`,
	summary:    `{"success":true,"totalIncome":1000,"totalExpense":900,"balance":100}`,
	categories: `[{"id":1,"name":"Salary"},{"id":2,"name":"Rent"}]`,
}

// TestCompleteOverview tests GET /integrated/user/:userId/complete-overview
func TestCompleteOverview(t *testing.T) {
	setupWithPeers(t, richPeers)
	start, _ := dates.Today().MonthBounds()
	createTestResource(t, "/analytics", "analytics", analyticsBody(2, start, 600, 1))

	body := parseJSONResponse(t, makeRequest("GET", "/integrated/user/1/complete-overview", nil))
	require.Equal(t, true, body["success"], body)
	assert.Equal(t, float64(1), body["userId"])
	assert.Len(t, body["transactions"], 3)
	assert.Len(t, body["goals"], 2)
	assert.Equal(t, float64(100), body["transactionSummary"].(map[string]any)["balance"])
	assert.Equal(t, float64(600), body["analyticsSummary"].(map[string]any)["totalSpending"])

	combined := body["combinedInsights"].(map[string]any)
	assert.Equal(t, float64(900), combined["totalSpent"])
	assert.Equal(t, float64(1000), combined["totalIncome"])
	assert.Equal(t, float64(100), combined["netSavings"])
	assert.Equal(t, float64(2000), combined["totalGoalTargets"])
	assert.Equal(t, float64(1250), combined["totalGoalProgress"])
	assert.Equal(t, 62.5, combined["overallGoalProgress"])
}

// TestGoalProgressAnalysis tests GET /integrated/user/:userId/goal-progress-analysis
func TestGoalProgressAnalysis(t *testing.T) {
	setupWithPeers(t, richPeers)

	body := parseJSONResponse(t, makeRequest("GET", "/integrated/user/1/goal-progress-analysis", nil))
	require.Equal(t, true, body["success"], body)
	analysis := body["goalAnalysis"].(map[string]any)
	assert.Equal(t, float64(2), analysis["totalGoals"])
	assert.Equal(t, float64(1), analysis["goalRelatedTransactions"])
	assert.Equal(t, map[string]any{"ACTIVE": float64(1), "COMPLETED": float64(1)}, analysis["goalsByStatus"])
}

// TestSpendingVsGoals tests GET /integrated/user/:userId/spending-vs-goals
func TestSpendingVsGoals(t *testing.T) {
	setupWithPeers(t, richPeers)

	body := parseJSONResponse(t, makeRequest("GET", "/integrated/user/1/spending-vs-goals", nil))
	require.Equal(t, true, body["success"], body)
	analysis := body["spendingVsGoalsAnalysis"].(map[string]any)
	assert.Equal(t, map[string]any{"2": float64(600), "3": float64(300)}, analysis["spendingByCategory"])
	assert.Len(t, analysis["goalsByCategory"].(map[string]any)["1"], 2)
	assert.Len(t, analysis["categories"], 2)
}

// TestPersonalizedRecommendations tests GET /integrated/user/:userId/recommendations
func TestPersonalizedRecommendations(t *testing.T) {
	setupWithPeers(t, richPeers)

	body := parseJSONResponse(t, makeRequest("GET", "/integrated/user/1/recommendations", nil))
	require.Equal(t, true, body["success"], body)
	recs := body["recommendations"].([]any)
	require.Len(t, recs, 2)

	first := recs[0].(map[string]any)
	assert.Equal(t, "BUDGET_ALERT", first["type"])
	assert.Equal(t, float64(2), first["categoryId"])

	second := recs[1].(map[string]any)
	assert.Equal(t, "SAVINGS_IMPROVEMENT", second["type"])
	assert.Equal(t, float64(10), second["currentSavingsRate"])
	assert.Equal(t, "HIGH", second["priority"])
}

// TestIntegratedDegraded tests the envelope returned when a peer is down
func TestIntegratedDegraded(t *testing.T) {
	down := peer.NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	setupTestRouter(down, down)

	for _, path := range []string{
		"/integrated/user/1/complete-overview",
		"/integrated/user/1/goal-progress-analysis",
		"/integrated/user/1/spending-vs-goals",
		"/integrated/user/1/recommendations",
	} {
		resp := makeRequest("GET", path, nil)
		assert.Equal(t, http.StatusOK, resp.Code, path)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, false, body["success"], path)
		assert.Equal(t, "Service unavailable", body["message"], path)
		assert.NotEmpty(t, body["error"], path)
	}

	t.Run("should degrade without configured peers", func(t *testing.T) {
		setupTestRouter(nil, nil)
		body := parseJSONResponse(t, makeRequest("GET", "/integrated/user/1/recommendations", nil))
		assert.Equal(t, false, body["success"])
	})
}

// TestDiagnostics tests the /test routes
func TestDiagnostics(t *testing.T) {
	t.Run("should report connected peers", func(t *testing.T) {
		setupWithPeers(t, richPeers)
		body := parseJSONResponse(t, makeRequest("GET", "/test/communication-status", nil))
		assert.Equal(t, "RUNNING", body["insightService"])

		finance := body["userFinanceService"].(map[string]any)
		assert.Equal(t, "SUCCESS", finance["status"])
		assert.Equal(t, "Successfully connected to User Finance Service", finance["message"])
		assert.Equal(t, float64(2), finance["categoriesCount"])

		goals := body["goalService"].(map[string]any)
		assert.Equal(t, "SUCCESS", goals["status"])
		assert.Equal(t, float64(2), goals["goalCategoriesCount"])
	})

	t.Run("should report failed peers", func(t *testing.T) {
		down := peer.NewClient("http://127.0.0.1:1", 200*time.Millisecond)
		setupTestRouter(down, down)
		body := parseJSONResponse(t, makeRequest("GET", "/test/communication-status", nil))
		finance := body["userFinanceService"].(map[string]any)
		assert.Equal(t, "FAILED", finance["status"])
		assert.Contains(t, finance["message"], "Failed to connect to User Finance Service: ")
		assert.NotContains(t, finance, "categoriesCount")
	})

	t.Run("should sample user data", func(t *testing.T) {
		setupWithPeers(t, richPeers)
		body := parseJSONResponse(t, makeRequest("GET", "/test/user/1/test-integration", nil))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Integration test successful", body["message"])
		assert.Equal(t, float64(3), body["transactionsCount"])
		assert.Equal(t, float64(2), body["goalsCount"])
		assert.Equal(t, float64(1), body["sampleTransaction"].(map[string]any)["id"])
		assert.Equal(t, "Car", body["sampleGoal"].(map[string]any)["title"])
	})

	t.Run("should list configured urls", func(t *testing.T) {
		setupTestRouter(nil, nil)
		body := parseJSONResponse(t, makeRequest("GET", "/test/service-urls", nil))
		assert.Equal(t, "http://finance:8082", body["userFinanceServiceUrl"])
		assert.Equal(t, "http://accounts:8084", body["authServiceUrl"])
	})

	t.Run("should echo simulated events", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("POST", "/test/simulate-goal-event", map[string]any{"goalId": 5}))
		assert.Equal(t, "Goal event processed successfully", body["message"])
		assert.Equal(t, float64(5), body["eventData"].(map[string]any)["goalId"])
		assert.NotEmpty(t, body["processedAt"])

		body = parseJSONResponse(t, makeRequest("POST", "/test/simulate-transaction-event", map[string]any{"id": 1}))
		assert.Equal(t, "Transaction event processed successfully", body["message"])
	})
}

func TestSweeper(t *testing.T) {
	store := NewMemoryStore()
	past := time.Now().UTC().Add(-time.Minute)
	r := Recommendation{UserID: 1, RecommendationType: SpendingWarning, Title: "t", Description: "d",
		PriorityLevel: PriorityHigh, ExpiresAt: &past}
	require.NoError(t, store.CreateRecommendation(context.Background(), &r))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSweeper(store, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		got, err := store.GetRecommendation(context.Background(), r.ID)
		return err == nil && got.IsDismissed
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}

	t.Run("should return at once without an interval", func(t *testing.T) {
		NewSweeper(store, 0).Run(context.Background())
	})
}
