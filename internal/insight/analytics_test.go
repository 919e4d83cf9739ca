package insight

import (
	"fmt"
	"net/http"
	"testing"

	"fintrack/internal/dates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyticsBody(category int64, start dates.Date, total float64, count int) map[string]any {
	_, end := start.MonthBounds()
	return map[string]any{
		"userId": 1, "categoryId": category, "analysisPeriod": "MONTHLY",
		"periodStart": start.String(), "periodEnd": end.String(),
		"totalAmount": total, "transactionCount": count,
	}
}

// TestCreateAnalytics tests the POST /analytics endpoint
func TestCreateAnalytics(t *testing.T) {
	setupTestRouter(nil, nil)
	start, _ := dates.Today().MonthBounds()

	t.Run("should reject invalid rows", func(t *testing.T) {
		valid := analyticsBody(1, start, 100, 3)
		cases := []struct {
			change  map[string]any
			message string
		}{
			{map[string]any{"userId": nil}, "User ID is required"},
			{map[string]any{"categoryId": nil}, "Category ID is required"},
			{map[string]any{"transactionCount": 0}, "Transaction count must be greater than zero"},
			{map[string]any{"transactionCount": -2}, "Transaction count must be greater than zero"},
			{map[string]any{"totalAmount": 10.005}, "Total amount must have at most 13 integer digits and 2 decimal places"},
			{map[string]any{"analysisPeriod": "DAILY"}, "Invalid analysis period: DAILY"},
			{map[string]any{"periodEnd": start.AddDays(-1).String()}, "Period end cannot be before period start"},
		}
		for _, tc := range cases {
			body := map[string]any{}
			for k, v := range valid {
				body[k] = v
			}
			for k, v := range tc.change {
				body[k] = v
			}
			resp := makeRequest("POST", "/analytics", body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, tc.message)
			assert.Equal(t, tc.message, parseJSONResponse(t, resp)["message"])
		}
	})

	t.Run("should derive the average and default the trend", func(t *testing.T) {
		a := createTestResource(t, "/analytics", "analytics", analyticsBody(1, start, 100, 3))
		assert.Equal(t, 33.33, a["averageTransaction"])
		assert.Equal(t, "STABLE", a["trendDirection"])
		assert.Equal(t, float64(0), a["trendPercentage"])
		assert.Equal(t, start.String(), a["periodStart"])
	})

	t.Run("should replace and recompute on update", func(t *testing.T) {
		a := createTestResource(t, "/analytics", "analytics", analyticsBody(2, start, 50, 1))
		body := analyticsBody(2, start, 90, 4)
		body["trendDirection"] = "up"
		resp := makeRequest("PUT", fmt.Sprintf("/analytics/%v", a["id"]), body)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		updated := parseJSONResponse(t, resp)["analytics"].(map[string]any)
		assert.Equal(t, 22.5, updated["averageTransaction"])
		assert.Equal(t, "UP", updated["trendDirection"])

		resp = makeRequest("PUT", "/analytics/999", body)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Analytics not found", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should delete once", func(t *testing.T) {
		a := createTestResource(t, "/analytics", "analytics", analyticsBody(3, start, 10, 1))
		path := fmt.Sprintf("/analytics/%v", a["id"])
		resp := makeRequest("DELETE", path, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Analytics deleted successfully", parseJSONResponse(t, resp)["message"])
		assert.Equal(t, http.StatusNotFound, makeRequest("DELETE", path, nil).Code)
	})
}

// TestAnalyticsSummary tests GET /analytics/user/:userId/summary
func TestAnalyticsSummary(t *testing.T) {
	setupTestRouter(nil, nil)
	start, _ := dates.Today().MonthBounds()

	t.Run("should answer zeros when empty", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/summary", nil))
		assert.Equal(t, float64(0), body["totalSpending"])
		assert.Equal(t, float64(0), body["categoryCount"])
		assert.Equal(t, float64(0), body["averagePerCategory"])
		assert.Nil(t, body["topCategory"])
	})

	t.Run("should total and pick the first top category", func(t *testing.T) {
		createTestResource(t, "/analytics", "analytics", analyticsBody(4, start, 100, 1))
		createTestResource(t, "/analytics", "analytics", analyticsBody(2, start, 100, 2))
		createTestResource(t, "/analytics", "analytics", analyticsBody(3, start, 33.33, 1))

		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/summary?period=monthly", nil))
		assert.Equal(t, 233.33, body["totalSpending"])
		assert.Equal(t, float64(3), body["categoryCount"])
		assert.Equal(t, 77.78, body["averagePerCategory"])
		assert.Equal(t, "MONTHLY", body["period"])
		assert.Equal(t, float64(4), body["topCategory"].(map[string]any)["categoryId"])
	})

	t.Run("should reject an unknown period", func(t *testing.T) {
		resp := makeRequest("GET", "/analytics/user/1/summary?period=HOURLY", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("should sort top categories by total", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/top-categories", nil))
		list := body["topCategories"].([]any)
		require.Len(t, list, 3)
		assert.Equal(t, float64(33.33), list[2].(map[string]any)["totalAmount"])
	})
}

// TestAnalyticsTrends tests the trend and window routes
func TestAnalyticsTrends(t *testing.T) {
	setupTestRouter(nil, nil)
	thisMonth, _ := dates.Today().MonthBounds()
	longAgo := thisMonth.AddMonths(-12)

	t.Run("should report NO_DATA without recent rows", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/trends", nil))
		assert.Equal(t, "NO_DATA", body["overallTrend"])
		assert.Equal(t, float64(0), body["trendCount"])
	})

	up := func(start dates.Date, category int64, pct float64) {
		body := analyticsBody(category, start, 10, 1)
		body["trendDirection"] = "UP"
		body["trendPercentage"] = pct
		createTestResource(t, "/analytics", "analytics", body)
	}

	t.Run("should need more than half UP", func(t *testing.T) {
		up(thisMonth, 1, 5)
		createTestResource(t, "/analytics", "analytics", analyticsBody(2, thisMonth, 10, 1))

		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/trends", nil))
		assert.Equal(t, "STABLE_OR_DECREASING", body["overallTrend"])

		up(thisMonth, 3, 20)
		body = parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/trends", nil))
		assert.Equal(t, "INCREASING", body["overallTrend"])
		assert.Equal(t, float64(2), body["trendCount"])
	})

	t.Run("should order increasing trends by percentage", func(t *testing.T) {
		up(longAgo, 4, 50)
		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/increasing-trends", nil))
		list := body["increasingTrends"].([]any)
		require.Len(t, list, 3)
		assert.Equal(t, float64(3), body["count"])
		assert.Equal(t, float64(50), list[0].(map[string]any)["trendPercentage"])
		assert.Equal(t, float64(5), list[2].(map[string]any)["trendPercentage"])
	})

	t.Run("should honor the recent window", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/recent", nil))
		assert.Equal(t, float64(6), body["monthsBack"])
		assert.Len(t, body["analytics"], 3)

		body = parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/recent?months=24", nil))
		list := body["analytics"].([]any)
		assert.Len(t, list, 4)
		assert.Equal(t, longAgo.String(), list[3].(map[string]any)["periodStart"])
	})

	t.Run("should filter by category", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/analytics/user/1/category/4", nil))
		assert.Equal(t, float64(4), body["categoryId"])
		assert.Len(t, body["analytics"], 1)
	})

	t.Run("should filter an inclusive date range", func(t *testing.T) {
		url := fmt.Sprintf("/analytics/user/1/date-range?startDate=%s&endDate=%s", longAgo, longAgo)
		body := parseJSONResponse(t, makeRequest("GET", url, nil))
		assert.Len(t, body["analytics"], 1)
		assert.Equal(t, longAgo.String(), body["dateRange"].(map[string]any)["start"])

		resp := makeRequest("GET", "/analytics/user/1/date-range?startDate=yesterday&endDate=2030-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestInsightHealth(t *testing.T) {
	setupTestRouter(nil, nil)

	for path, text := range map[string]string{
		"/insights/health":        "Insight Service is running!",
		"/health":                 "Insight Service is running!",
		"/notifications/health":   "Insight Service - Notifications Controller is running!",
		"/recommendations/health": "Insight Service - Recommendations Controller is running!",
		"/analytics/health":       "Insight Service - Analytics Controller is running!",
		"/integrated/health":      "Integrated Insight Controller is running!",
		"/test/health":            "Test Communication Controller is running!",
	} {
		resp := makeRequest("GET", path, nil)
		assert.Equal(t, http.StatusOK, resp.Code, path)
		assert.Equal(t, text, resp.Body.String())
	}
}
