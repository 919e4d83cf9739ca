package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontend = "http://localhost:3000"

// echoUpstream answers every request with the method, path and query it saw.
func echoUpstream(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"upstream":  name,
			"method":    r.Method,
			"path":      r.URL.Path,
			"query":     r.URL.RawQuery,
			"requestId": r.Header.Get("X-Request-Id"),
			"forwarded": r.Header.Get("X-Forwarded-Host"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(accounts, finance, goals, insight string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8081},
		Services: config.ServicesConfig{
			AccountsURL: accounts,
			FinanceURL:  finance,
			GoalsURL:    goals,
			InsightURL:  insight,
		},
		Gateway: config.GatewayConfig{
			PublicURL:      "http://localhost:8081",
			AllowedOrigins: []string{frontend, "http://localhost:5173"},
		},
	}
}

func setupGateway(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig(
		echoUpstream(t, "accounts").URL,
		echoUpstream(t, "finance").URL,
		echoUpstream(t, "goals").URL,
		echoUpstream(t, "insight").URL,
	)
	g, err := New(cfg)
	require.NoError(t, err)
	return g.Handler()
}

func serve(h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// TestProxyRoutes tests prefix dispatch to every service
func TestProxyRoutes(t *testing.T) {
	h := setupGateway(t)

	cases := []struct {
		method   string
		path     string
		upstream string
		wantPath string
	}{
		{"POST", "/auth/login", "accounts", "/auth/login"},
		{"GET", "/finance/transactions/user/1", "finance", "/finance/transactions/user/1"},
		{"DELETE", "/goals/4", "goals", "/goals/4"},
		{"GET", "/insights/health", "insight", "/health"},
		{"GET", "/notifications/user/1", "insight", "/notifications/user/1"},
		{"PUT", "/recommendations/3/read", "insight", "/recommendations/3/read"},
		{"GET", "/analytics/user/1/summary", "insight", "/analytics/user/1/summary"},
		{"GET", "/integrated/user/1/complete-overview", "insight", "/integrated/user/1/complete-overview"},
		{"GET", "/test/communication-status", "insight", "/test/communication-status"},
		{"GET", "/finance", "finance", "/finance"},
	}

	for _, tc := range cases {
		t.Run("should forward "+tc.method+" "+tc.path, func(t *testing.T) {
			rec := serve(h, tc.method, tc.path, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tc.upstream, body["upstream"])
			assert.Equal(t, tc.method, body["method"])
			assert.Equal(t, tc.wantPath, body["path"])
			assert.NotEmpty(t, body["requestId"])
		})
	}

	t.Run("should keep the query string", func(t *testing.T) {
		body := decode(t, serve(h, "GET", "/analytics/user/1/recent?months=3", nil))
		assert.Equal(t, "months=3", body["query"])
	})

	t.Run("should not proxy unknown prefixes", func(t *testing.T) {
		rec := serve(h, "GET", "/admin/users", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestUnavailableUpstream tests the 502 envelope
func TestUnavailableUpstream(t *testing.T) {
	live := echoUpstream(t, "accounts").URL
	g, err := New(testConfig(live, "http://127.0.0.1:1", live, live))
	require.NoError(t, err)

	rec := serve(g.Handler(), "GET", "/finance/categories", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Service unavailable", body["message"])
	assert.Equal(t, "user-finance-service", body["service"])
}

// TestNewRejectsBadURLs tests upstream validation
func TestNewRejectsBadURLs(t *testing.T) {
	_, err := New(testConfig("localhost:8084", "http://f", "http://g", "http://i"))
	assert.Error(t, err)
}

// TestIntrospection tests the /gateway routes
func TestIntrospection(t *testing.T) {
	g, err := New(testConfig("http://accounts:8084", "http://finance:8082", "http://goals:8083", "https://insight.internal"))
	require.NoError(t, err)
	h := g.Handler()

	t.Run("should report health", func(t *testing.T) {
		body := decode(t, serve(h, "GET", "/gateway/health", nil))
		assert.Equal(t, "UP", body["status"])
		assert.Equal(t, "API Gateway", body["service"])
		assert.Equal(t, float64(8081), body["port"])
		assert.Equal(t, "API Gateway is running successfully!", body["message"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("should list registered services", func(t *testing.T) {
		body := decode(t, serve(h, "GET", "/gateway/services", nil))
		assert.Equal(t, float64(4), body["totalServices"])
		assert.Equal(t, []any{"authentication-service", "goal-service", "insight-service", "user-finance-service"},
			body["registeredServices"])

		details := body["serviceDetails"].(map[string]any)
		finance := details["user-finance-service"].(map[string]any)
		assert.Equal(t, float64(1), finance["instances"])
		assert.Equal(t, "finance", finance["host"])
		assert.Equal(t, float64(8082), finance["port"])
		assert.Equal(t, "http://finance:8082", finance["uri"])

		insight := details["insight-service"].(map[string]any)
		assert.Equal(t, float64(443), insight["port"])
	})

	t.Run("should list the route table", func(t *testing.T) {
		body := decode(t, serve(h, "GET", "/gateway/routes", nil))
		assert.Equal(t, "http://localhost:8081", body["gatewayUrl"])

		routes := body["availableRoutes"].(map[string]any)
		assert.Equal(t, "authentication-service", routes["/auth/**"])
		assert.Equal(t, "insight-service (testing)", routes["/test/**"])
		assert.Len(t, routes, len(routeTable))

		examples := body["examples"].(map[string]any)
		assert.Equal(t, "GET http://localhost:8081/insights/health", examples["Insights Health"])
	})

	t.Run("should serve the combined API document", func(t *testing.T) {
		rec := serve(h, "GET", "/swagger/doc.json", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		doc := decode(t, rec)
		assert.Equal(t, "API Gateway", doc["info"].(map[string]any)["title"])
		paths := doc["paths"].(map[string]any)
		assert.Contains(t, paths, "/finance/transactions")
		assert.Contains(t, paths, "/goals/{id}")
		assert.Contains(t, paths, "/auth/login")
		assert.Contains(t, paths, "/recommendations/user/{userId}")
		assert.Contains(t, paths, "/gateway/services")
	})
}

// TestCORS tests the edge CORS policy
func TestCORS(t *testing.T) {
	h := setupGateway(t)

	t.Run("should answer preflight for allowed origins", func(t *testing.T) {
		rec := serve(h, "OPTIONS", "/finance/transactions", http.Header{
			"Origin":                         {frontend},
			"Access-Control-Request-Method":  {"PATCH"},
			"Access-Control-Request-Headers": {"X-Custom-Header"},
		})
		assert.Less(t, rec.Code, 300)
		assert.Equal(t, frontend, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("should set one allow-origin on proxied responses", func(t *testing.T) {
		rec := serve(h, "GET", "/goals/user/1", http.Header{"Origin": {frontend}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{frontend}, rec.Header().Values("Access-Control-Allow-Origin"))
	})

	t.Run("should not allow unknown origins", func(t *testing.T) {
		rec := serve(h, "GET", "/goals/user/1", http.Header{"Origin": {"http://evil.example"}})
		assert.Empty(t, rec.Header().Values("Access-Control-Allow-Origin"))
	})
}
