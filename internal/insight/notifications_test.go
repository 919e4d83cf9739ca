package insight

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateNotification tests the POST /notifications endpoint
func TestCreateNotification(t *testing.T) {
	setupTestRouter(nil, nil)

	t.Run("should validate fields in order", func(t *testing.T) {
		cases := []struct {
			body    string
			message string
		}{
			{`{}`, "User ID is required"},
			{`{"userId":1}`, "Notification type is required"},
			{`{"userId":1,"notificationType":"SYSTEM_UPDATE"}`, "Title is required"},
			{`{"userId":1,"notificationType":"SYSTEM_UPDATE","title":"Hi"}`, "Message is required"},
			{`{"userId":1,"notificationType":"PARTY","title":"Hi","message":"m"}`, "Invalid notification type: PARTY"},
		}
		for _, tc := range cases {
			resp := makeRequest("POST", "/notifications", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, tc.body)
			assert.Equal(t, tc.message, parseJSONResponse(t, resp)["message"], tc.body)
		}
	})

	t.Run("should default scheduledFor to now", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)
		n := createTestResource(t, "/notifications", "notification", map[string]any{
			"userId": 1, "notificationType": "system_update", "title": "Hi", "message": "Welcome",
		})
		assert.Equal(t, "SYSTEM_UPDATE", n["notificationType"])
		assert.Equal(t, false, n["isRead"])
		assert.Nil(t, n["sentAt"])

		scheduled, err := time.Parse(time.RFC3339Nano, n["scheduledFor"].(string))
		require.NoError(t, err)
		assert.True(t, scheduled.After(before))
	})
}

// TestTypedNotifications tests the four shortcut create routes
func TestTypedNotifications(t *testing.T) {
	setupTestRouter(nil, nil)

	cases := []struct {
		path     string
		relation string
		kind     string
		urgent   bool
		message  string
	}{
		{"/notifications/goal-deadline", "goalId", "GOAL_DEADLINE", true, "Goal deadline notification created successfully"},
		{"/notifications/budget-exceeded", "categoryId", "BUDGET_EXCEEDED", true, "Budget exceeded notification created successfully"},
		{"/notifications/spending-alert", "categoryId", "SPENDING_ALERT", false, "Spending alert notification created successfully"},
		{"/notifications/goal-milestone", "goalId", "GOAL_MILESTONE", false, "Goal milestone notification created successfully"},
	}

	for _, tc := range cases {
		t.Run("should create "+tc.kind, func(t *testing.T) {
			resp := makeRequest("POST", tc.path, map[string]any{
				"userId": 2, tc.relation: 7, "title": "T", "message": "M",
			})
			require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

			body := parseJSONResponse(t, resp)
			assert.Equal(t, tc.message, body["message"])
			n := body["notification"].(map[string]any)
			assert.Equal(t, tc.kind, n["notificationType"])
			assert.Equal(t, tc.urgent, n["isUrgent"])
			if tc.relation == "goalId" {
				assert.Equal(t, float64(7), n["relatedGoalId"])
			} else {
				assert.Equal(t, float64(7), n["relatedCategoryId"])
			}
		})

		t.Run("should require the related id for "+tc.kind, func(t *testing.T) {
			resp := makeRequest("POST", tc.path, map[string]any{"userId": 2, "title": "T", "message": "M"})
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

// TestListNotifications tests the per-user read routes
func TestListNotifications(t *testing.T) {
	setupTestRouter(nil, nil)

	ageStore(10 * 24 * time.Hour)
	old := createTestResource(t, "/notifications/goal-deadline", "notification", map[string]any{
		"userId": 1, "goalId": 3, "title": "Old urgent", "message": "m",
	})
	ageStore(0)
	plain := createTestResource(t, "/notifications", "notification", map[string]any{
		"userId": 1, "notificationType": "SYSTEM_UPDATE", "title": "New plain", "message": "m",
	})
	createTestResource(t, "/notifications/spending-alert", "notification", map[string]any{
		"userId": 1, "categoryId": 4, "title": "New alert", "message": "m",
	})
	createTestResource(t, "/notifications", "notification", map[string]any{
		"userId": 2, "notificationType": "SYSTEM_UPDATE", "title": "Other user", "message": "m",
	})

	t.Run("should list urgent first then newest", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/notifications/user/1", nil))
		assert.Equal(t, float64(3), body["count"])
		list := body["notifications"].([]any)
		assert.Equal(t, "Old urgent", list[0].(map[string]any)["title"])
		assert.Equal(t, "New alert", list[1].(map[string]any)["title"])
		assert.Equal(t, "New plain", list[2].(map[string]any)["title"])
	})

	t.Run("should filter urgent and by relation", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/urgent", nil))
		assert.Len(t, body["urgentNotifications"], 1)

		body = parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/goal/3", nil))
		assert.Equal(t, float64(3), body["goalId"])
		assert.Len(t, body["notifications"], 1)

		body = parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/category/4", nil))
		assert.Equal(t, float64(4), body["categoryId"])
		assert.Len(t, body["notifications"], 1)
	})

	t.Run("should accept the type in any case", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/type/spending_alert", nil))
		assert.Equal(t, "SPENDING_ALERT", body["type"])
		assert.Len(t, body["notifications"], 1)

		resp := makeRequest("GET", "/notifications/user/1/type/bogus", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Invalid notification type: bogus", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should limit recent to the window", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/recent", nil))
		assert.Equal(t, float64(7), body["daysBack"])
		assert.Len(t, body["notifications"], 2)

		body = parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/recent?days=30", nil))
		assert.Len(t, body["notifications"], 3)
	})

	t.Run("should summarize", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/summary", nil))
		assert.Equal(t, float64(3), body["totalNotifications"])
		assert.Equal(t, float64(3), body["unreadCount"])
		assert.Equal(t, float64(1), body["urgentCount"])
		assert.Len(t, body["recentNotifications"], 2)
		assert.Len(t, body["unreadNotifications"], 3)
	})

	t.Run("should mark one and then all read", func(t *testing.T) {
		resp := makeRequest("PUT", fmt.Sprintf("/notifications/%v/read", plain["id"]), nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Notification marked as read", parseJSONResponse(t, resp)["message"])

		body := parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/unread-count", nil))
		assert.Equal(t, float64(2), body["unreadCount"])

		body = parseJSONResponse(t, makeRequest("PUT", "/notifications/user/1/read-all", nil))
		assert.Equal(t, "All notifications marked as read", body["message"])
		assert.Equal(t, float64(2), body["markedCount"])

		body = parseJSONResponse(t, makeRequest("GET", "/notifications/user/1/unread", nil))
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("should delete once", func(t *testing.T) {
		path := fmt.Sprintf("/notifications/%v", old["id"])
		resp := makeRequest("DELETE", path, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Notification deleted successfully", parseJSONResponse(t, resp)["message"])

		resp = makeRequest("DELETE", path, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Notification not found", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should 404 when marking a missing row", func(t *testing.T) {
		resp := makeRequest("PUT", "/notifications/999/read", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// TestScheduledNotifications tests delivery scheduling
func TestScheduledNotifications(t *testing.T) {
	setupTestRouter(nil, nil)

	due := createTestResource(t, "/notifications", "notification", map[string]any{
		"userId": 1, "notificationType": "SYSTEM_UPDATE", "title": "Due", "message": "m",
	})
	createTestResource(t, "/notifications", "notification", map[string]any{
		"userId": 2, "notificationType": "SYSTEM_UPDATE", "title": "Later", "message": "m",
		"scheduledFor": time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})

	t.Run("should list only due and unsent rows across users", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/notifications/scheduled-to-send", nil))
		list := body["notifications"].([]any)
		require.Len(t, list, 1)
		assert.Equal(t, "Due", list[0].(map[string]any)["title"])
	})

	t.Run("should stamp sentAt", func(t *testing.T) {
		resp := makeRequest("PUT", fmt.Sprintf("/notifications/%v/mark-sent", due["id"]), nil)
		require.Equal(t, http.StatusOK, resp.Code)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Notification marked as sent", body["message"])
		assert.NotNil(t, body["notification"].(map[string]any)["sentAt"])

		body = parseJSONResponse(t, makeRequest("GET", "/notifications/scheduled-to-send", nil))
		assert.Empty(t, body["notifications"])
	})

	t.Run("should 404 for a missing row", func(t *testing.T) {
		resp := makeRequest("PUT", "/notifications/999/mark-sent", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
