package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"fintrack/internal/database"
	"fintrack/internal/dates"
	"fintrack/internal/peer"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateGoal tests the POST /goals endpoint
func TestCreateGoal(t *testing.T) {
	setupTestRouter(nil, nil)
	travel := createTestCategory(t, "Travel")

	t.Run("should validate fields in order", func(t *testing.T) {
		cases := []struct {
			body    string
			message string
		}{
			{`{}`, "User ID is required"},
			{`{"userId":1}`, "Goal title is required"},
			{`{"userId":1,"title":" "}`, "Goal title is required"},
			{`{"userId":1,"title":"Trip"}`, "Target amount must be greater than zero"},
			{`{"userId":1,"title":"Trip","targetAmount":0}`, "Target amount must be greater than zero"},
			{`{"userId":1,"title":"Trip","targetAmount":100.001}`, "Target amount must have at most 13 integer digits and 2 decimal places"},
			{`{"userId":1,"title":"Trip","targetAmount":10000000000000}`, "Target amount must have at most 13 integer digits and 2 decimal places"},
			{`{"userId":1,"title":"Trip","targetAmount":100,"currentAmount":-1}`, "Current amount cannot be negative"},
			{`{"userId":1,"title":"Trip","targetAmount":100,"currentAmount":0.125}`, "Current amount must have at most 13 integer digits and 2 decimal places"},
			{`{"userId":1,"title":"Trip","targetAmount":100}`, "Category is required"},
			{`{"userId":1,"title":"Trip","targetAmount":100,"categoryId":404}`, "Category not found"},
			{fmt.Sprintf(`{"userId":1,"title":"Trip","targetAmount":100,"categoryId":%d,"priorityLevel":"URGENT"}`, travel.ID), "Invalid priority level"},
		}
		for _, tc := range cases {
			resp := makeRequest("POST", "/goals", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, tc.body)
			body := parseJSONResponse(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"], tc.body)
		}
	})

	t.Run("should apply defaults", func(t *testing.T) {
		resp := makeRequest("POST", "/goals", map[string]any{
			"userId": 1, "title": "Japan trip", "targetAmount": 3000, "categoryId": travel.ID,
		})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Goal created successfully", body["message"])

		goal := body["goal"].(map[string]any)
		assert.Equal(t, float64(0), goal["currentAmount"])
		assert.Equal(t, float64(0), goal["completionPercentage"])
		assert.Equal(t, "MEDIUM", goal["priorityLevel"])
		assert.Equal(t, "ACTIVE", goal["status"])
		assert.Equal(t, dates.Today().String(), goal["startDate"])
		assert.Equal(t, "Travel", goal["category"].(map[string]any)["name"])
		assert.Nil(t, goal["completedAt"])
	})

	t.Run("should compute progress at creation", func(t *testing.T) {
		goal := createTestGoal(t, map[string]any{
			"userId": 1, "title": "Bike", "targetAmount": 1000, "currentAmount": 250,
			"categoryId": travel.ID, "priorityLevel": "high", "targetDate": "2030-01-01",
		})
		assert.Equal(t, float64(25), goal["completionPercentage"])
		assert.Equal(t, "HIGH", goal["priorityLevel"])
		assert.Equal(t, "2030-01-01", goal["targetDate"])
	})
}

// vanishingCategoryStore fails inserts the way Postgres does when the category
// row is deleted between the handler's lookup and the insert.
type vanishingCategoryStore struct {
	*MemoryStore
}

func (vanishingCategoryStore) CreateGoal(context.Context, *Goal) error {
	return database.Translate(&pgconn.PgError{Code: "23503", ConstraintName: "goals_category_id_fkey"})
}

// TestCreateGoalCategoryDeleted tests a foreign key violation on insert
func TestCreateGoalCategoryDeleted(t *testing.T) {
	setupTestRouter(nil, nil)
	cat := createTestCategory(t, "Wedding")

	testRouter = gin.New()
	NewHandler(Deps{Store: vanishingCategoryStore{testStore}}).RegisterRoutes(testRouter)

	resp := makeRequest("POST", "/goals", map[string]any{
		"userId": 1, "title": "Venue", "targetAmount": 5000, "categoryId": cat.ID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Category not found", parseJSONResponse(t, resp)["message"])
}

// TestMemoryStoreCreateGoalUnknownCategory tests the memory store's answer to
// a goal whose category does not exist
func TestMemoryStoreCreateGoalUnknownCategory(t *testing.T) {
	store := NewMemoryStore()
	err := store.CreateGoal(context.Background(), &Goal{UserID: 1, Title: "X", CategoryID: 77})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

// TestGetGoals tests listing, lookup and per-user ordering
func TestGetGoals(t *testing.T) {
	setupTestRouter(nil, nil)
	cat := createTestCategory(t, "Savings")

	first := createTestGoal(t, map[string]any{"userId": 5, "title": "A", "targetAmount": 10, "categoryId": cat.ID})
	createTestGoal(t, map[string]any{"userId": 6, "title": "B", "targetAmount": 10, "categoryId": cat.ID})
	third := createTestGoal(t, map[string]any{"userId": 5, "title": "C", "targetAmount": 10, "categoryId": cat.ID})

	t.Run("should list every goal", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/goals", nil))
		assert.Equal(t, "Goals retrieved successfully", body["message"])
		assert.Equal(t, float64(3), body["count"])
	})

	t.Run("should order user goals newest first", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/goals/user/5", nil))
		assert.Equal(t, "User goals retrieved successfully", body["message"])
		goals := body["goals"].([]any)
		require.Len(t, goals, 2)
		assert.Equal(t, third["id"], goals[0].(map[string]any)["id"])
		assert.Equal(t, first["id"], goals[1].(map[string]any)["id"])
	})

	t.Run("should return the goal entity", func(t *testing.T) {
		resp := makeRequest("GET", fmt.Sprintf("/goals/%v", first["id"]), nil)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "A", parseJSONResponse(t, resp)["title"])
	})

	t.Run("should return 404 for a missing goal", func(t *testing.T) {
		resp := makeRequest("GET", "/goals/999", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Goal not found", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should reject a malformed id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, makeRequest("GET", "/goals/abc", nil).Code)
	})
}

// TestUpdateGoal tests progress, completion and snapshots on PUT /goals/:id
func TestUpdateGoal(t *testing.T) {
	setupTestRouter(nil, nil)
	cat := createTestCategory(t, "Emergency")
	goal := createTestGoal(t, map[string]any{"userId": 2, "title": "Fund", "targetAmount": 1000, "categoryId": cat.ID})
	url := fmt.Sprintf("/goals/%v", goal["id"])

	t.Run("should recompute progress on a partial update", func(t *testing.T) {
		resp := makeRequest("PUT", url, map[string]any{"currentAmount": 400})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Goal updated successfully", body["message"])
		updated := body["goal"].(map[string]any)
		assert.Equal(t, float64(40), updated["completionPercentage"])
		assert.Equal(t, "Fund", updated["title"])
		assert.Equal(t, "ACTIVE", updated["status"])
	})

	t.Run("should ignore an unknown category", func(t *testing.T) {
		resp := makeRequest("PUT", url, map[string]any{"categoryId": 999})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, float64(cat.ID), parseJSONResponse(t, resp)["goal"].(map[string]any)["categoryId"])
	})

	t.Run("should reject invalid amounts", func(t *testing.T) {
		resp := makeRequest("PUT", url, map[string]any{"targetAmount": 0})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		resp = makeRequest("PUT", url, map[string]any{"currentAmount": -1})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("should reject amounts with more than two decimal places", func(t *testing.T) {
		resp := makeRequest("PUT", url, `{"currentAmount":400.005}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Current amount must have at most 13 integer digits and 2 decimal places",
			parseJSONResponse(t, resp)["message"])

		resp = makeRequest("PUT", url, `{"targetAmount":99999999999999}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Target amount must have at most 13 integer digits and 2 decimal places",
			parseJSONResponse(t, resp)["message"])

		stored := parseJSONResponse(t, makeRequest("GET", url, nil))
		assert.Equal(t, float64(400), stored["currentAmount"])
		assert.Equal(t, float64(1000), stored["targetAmount"])
	})

	t.Run("should complete the goal once the target is reached", func(t *testing.T) {
		resp := makeRequest("PUT", url, map[string]any{"currentAmount": 1200})
		require.Equal(t, http.StatusOK, resp.Code)

		updated := parseJSONResponse(t, resp)["goal"].(map[string]any)
		assert.Equal(t, float64(100), updated["completionPercentage"])
		assert.Equal(t, "COMPLETED", updated["status"])
		assert.NotNil(t, updated["completedAt"])
	})

	t.Run("should keep the first completion time", func(t *testing.T) {
		before := parseJSONResponse(t, makeRequest("GET", url, nil))["completedAt"]
		resp := makeRequest("PUT", url, map[string]any{"currentAmount": 1500})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, before, parseJSONResponse(t, resp)["goal"].(map[string]any)["completedAt"])
	})

	t.Run("should record one snapshot per amount change", func(t *testing.T) {
		resp := makeRequest("GET", url+"/snapshots", nil)
		require.Equal(t, http.StatusOK, resp.Code)

		snapshots := parseJSONResponse(t, resp)["snapshots"].([]any)
		require.Len(t, snapshots, 3)

		first := snapshots[0].(map[string]any)
		assert.Equal(t, "MANUAL", first["snapshotType"])
		assert.Equal(t, float64(400), first["amountChange"])

		second := snapshots[1].(map[string]any)
		assert.Equal(t, "MILESTONE", second["snapshotType"])
		assert.Equal(t, float64(800), second["amountChange"])
		assert.Equal(t, float64(100), second["progressPercentage"])
	})

	t.Run("should return 404 for a missing goal", func(t *testing.T) {
		resp := makeRequest("PUT", "/goals/999", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Goal not found", parseJSONResponse(t, resp)["message"])
	})
}

// TestGoalStatusFollowsProgress tests how status and completedAt track the
// completion percentage
func TestGoalStatusFollowsProgress(t *testing.T) {
	setupTestRouter(nil, nil)
	cat := createTestCategory(t, "Laptop")
	goal := createTestGoal(t, map[string]any{"userId": 9, "title": "Laptop", "targetAmount": 1000, "currentAmount": 250, "categoryId": cat.ID})
	url := fmt.Sprintf("/goals/%v", goal["id"])

	update := func(t *testing.T, body map[string]any) map[string]any {
		t.Helper()
		resp := makeRequest("PUT", url, body)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		return parseJSONResponse(t, resp)["goal"].(map[string]any)
	}

	t.Run("should reopen a completed goal that drops below target", func(t *testing.T) {
		completed := update(t, map[string]any{"currentAmount": 1000})
		require.Equal(t, "COMPLETED", completed["status"])
		require.NotNil(t, completed["completedAt"])

		reopened := update(t, map[string]any{"currentAmount": 100})
		assert.Equal(t, float64(10), reopened["completionPercentage"])
		assert.Equal(t, "ACTIVE", reopened["status"])
		assert.Nil(t, reopened["completedAt"])

		stored := parseJSONResponse(t, makeRequest("GET", url, nil))
		assert.Equal(t, "ACTIVE", stored["status"])
		assert.Nil(t, stored["completedAt"])
	})

	t.Run("should keep an explicit status at target", func(t *testing.T) {
		updated := update(t, map[string]any{"status": "ACTIVE", "currentAmount": 1000})
		assert.Equal(t, float64(100), updated["completionPercentage"])
		assert.Equal(t, "ACTIVE", updated["status"])
		assert.Nil(t, updated["completedAt"])
	})

	t.Run("should leave a paused goal paused below target", func(t *testing.T) {
		update(t, map[string]any{"status": "PAUSED"})
		updated := update(t, map[string]any{"currentAmount": 500})
		assert.Equal(t, "PAUSED", updated["status"])
	})

	t.Run("should stamp completedAt for an explicit completion", func(t *testing.T) {
		updated := update(t, map[string]any{"status": "COMPLETED"})
		assert.Equal(t, float64(50), updated["completionPercentage"])
		assert.Equal(t, "COMPLETED", updated["status"])
		assert.NotNil(t, updated["completedAt"])
	})

	t.Run("should keep an explicit status at creation", func(t *testing.T) {
		created := createTestGoal(t, map[string]any{
			"userId": 9, "title": "Paid off", "targetAmount": 100, "currentAmount": 100,
			"categoryId": cat.ID, "status": "PAUSED",
		})
		assert.Equal(t, float64(100), created["completionPercentage"])
		assert.Equal(t, "PAUSED", created["status"])
		assert.Nil(t, created["completedAt"])
	})

	t.Run("should complete at creation without a status", func(t *testing.T) {
		created := createTestGoal(t, map[string]any{
			"userId": 9, "title": "Done", "targetAmount": 100, "currentAmount": 150, "categoryId": cat.ID,
		})
		assert.Equal(t, "COMPLETED", created["status"])
		assert.NotNil(t, created["completedAt"])
	})
}

// TestDeleteGoal tests the DELETE /goals/:id endpoint
func TestDeleteGoal(t *testing.T) {
	setupTestRouter(nil, nil)
	cat := createTestCategory(t, "Car")
	goal := createTestGoal(t, map[string]any{"userId": 3, "title": "Car", "targetAmount": 500, "categoryId": cat.ID})
	url := fmt.Sprintf("/goals/%v", goal["id"])

	resp := makeRequest("DELETE", url, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Goal deleted successfully", parseJSONResponse(t, resp)["message"])

	assert.Equal(t, http.StatusNotFound, makeRequest("GET", url, nil).Code)
	assert.Equal(t, http.StatusNotFound, makeRequest("DELETE", url, nil).Code)
}

// TestGoalNotifications tests the notifications sent to the insight service
func TestGoalNotifications(t *testing.T) {
	var (
		mu       sync.Mutex
		received []map[string]any
	)
	insight := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		received = append(received, body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer insight.Close()

	setupTestRouter(peer.NewClient(insight.URL, 0), nil)
	cat := createTestCategory(t, "House")

	goal := createTestGoal(t, map[string]any{"userId": 4, "title": "Deposit", "targetAmount": 200, "categoryId": cat.ID})
	url := fmt.Sprintf("/goals/%v", goal["id"])
	testDispatcher.Wait()
	require.Equal(t, http.StatusOK, makeRequest("PUT", url, map[string]any{"currentAmount": 50}).Code)
	testDispatcher.Wait()
	require.Equal(t, http.StatusOK, makeRequest("PUT", url, map[string]any{"currentAmount": 200}).Code)
	testDispatcher.Wait()
	require.Equal(t, http.StatusOK, makeRequest("DELETE", url, nil).Code)
	testDispatcher.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 4)

	expected := []struct {
		title, kind, message string
		urgent               bool
	}{
		{"New Goal Created", "SYSTEM_UPDATE", "Goal 'Deposit' has been created with target amount: $200.00", false},
		{"Goal Updated", "GOAL_MILESTONE", "Goal 'Deposit' has been updated. Current progress: $50.00 of $200.00", false},
		{"Goal Completed!", "ACHIEVEMENT_UNLOCK", "Congratulations! You've completed your goal 'Deposit' with a target of $200.00", true},
		{"Goal Deleted", "SYSTEM_UPDATE", "Goal 'Deposit' has been deleted", false},
	}
	for i, want := range expected {
		got := received[i]
		assert.Equal(t, want.title, got["title"])
		assert.Equal(t, want.kind, got["notificationType"])
		assert.Equal(t, want.message, got["message"])
		assert.Equal(t, want.urgent, got["isUrgent"])
		assert.Equal(t, float64(4), got["userId"])
		assert.Equal(t, goal["id"], got["relatedGoalId"])
	}
}

// TestNotificationFailureIsSwallowed tests that delete succeeds with insight down
func TestNotificationFailureIsSwallowed(t *testing.T) {
	insight := httptest.NewServer(http.NotFoundHandler())
	insight.Close()

	setupTestRouter(peer.NewClient(insight.URL, 0), nil)
	cat := createTestCategory(t, "Misc")
	goal := createTestGoal(t, map[string]any{"userId": 1, "title": "X", "targetAmount": 1, "categoryId": cat.ID})

	resp := makeRequest("DELETE", fmt.Sprintf("/goals/%v", goal["id"]), nil)
	testDispatcher.Wait()
	assert.Equal(t, http.StatusOK, resp.Code)
}

// TestContributions tests GET /goals/:id/contributions against a fake finance service
func TestContributions(t *testing.T) {
	finance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finance/transactions/user/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"transactions":[
			{"amount":100,"type":"INCOME","goalId":1},
			{"amount":25.5,"type":"INCOME","goalId":1},
			{"amount":70,"type":"EXPENSE","goalId":1},
			{"amount":40,"type":"INCOME","goalId":2},
			{"amount":10,"type":"INCOME"}
		]}`)
	}))
	defer finance.Close()

	setupTestRouter(nil, peer.NewClient(finance.URL, 0))
	cat := createTestCategory(t, "Education")
	createTestGoal(t, map[string]any{"userId": 7, "title": "Course", "targetAmount": 900, "categoryId": cat.ID})

	t.Run("should sum tagged income only", func(t *testing.T) {
		resp := makeRequest("GET", "/goals/1/contributions", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["goalId"])
		assert.Equal(t, 125.5, body["contributions"])
	})

	t.Run("should not touch the goal", func(t *testing.T) {
		goal := parseJSONResponse(t, makeRequest("GET", "/goals/1", nil))
		assert.Equal(t, float64(0), goal["currentAmount"])
	})

	t.Run("should report zero when finance is unreachable", func(t *testing.T) {
		setupTestRouter(nil, nil)
		cat := createTestCategory(t, "Education")
		createTestGoal(t, map[string]any{"userId": 7, "title": "Course", "targetAmount": 900, "categoryId": cat.ID})

		body := parseJSONResponse(t, makeRequest("GET", "/goals/1/contributions", nil))
		assert.Equal(t, float64(0), body["contributions"])
	})
}

// TestUserInsights tests the proxy to the insight goal analysis
func TestUserInsights(t *testing.T) {
	insight := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/integrated/user/3/goal-progress-analysis", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"userId":3,"totalGoals":2}`)
	}))

	setupTestRouter(peer.NewClient(insight.URL, 0), nil)

	t.Run("should pass the analysis through", func(t *testing.T) {
		resp := makeRequest("GET", "/goals/user/3/insights", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(2), body["totalGoals"])
	})

	insight.Close()

	t.Run("should answer 200 with Service unavailable when insight is down", func(t *testing.T) {
		resp := makeRequest("GET", "/goals/user/3/insights", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Service unavailable", body["message"])
		assert.NotEmpty(t, body["error"])
	})
}

func TestGoalHealth(t *testing.T) {
	setupTestRouter(nil, nil)
	resp := makeRequest("GET", "/goals/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Goal Service is running", resp.Body.String())
}
