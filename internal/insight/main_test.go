package insight

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/peer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	testStore  *MemoryStore
	testRouter *gin.Engine
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupTestRouter builds a fresh router over an empty memory store. Either
// peer may be nil.
func setupTestRouter(finance, goals *peer.Client) {
	testStore = NewMemoryStore()
	h := NewHandler(Deps{
		Store:   testStore,
		Finance: finance,
		Goals:   goals,
		Services: config.ServicesConfig{
			FinanceURL:  "http://finance:8082",
			GoalsURL:    "http://goals:8083",
			AccountsURL: "http://accounts:8084",
			InsightURL:  "http://insight:8085",
		},
	})
	testRouter = gin.New()
	h.RegisterRoutes(testRouter)
}

// makeRequest helper function for making HTTP requests
func makeRequest(method, url string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, _ := json.Marshal(b)
			reader = bytes.NewBuffer(payload)
		}
	}

	req := httptest.NewRequest(method, url, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)
	return recorder
}

// parseJSONResponse decodes the recorder body into a generic map
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body), recorder.Body.String())
	return body
}

// createTestResource posts body to url, expects 201 and returns the decoded
// entity found under key.
func createTestResource(t *testing.T, url, key string, body any) map[string]any {
	t.Helper()
	resp := makeRequest("POST", url, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return parseJSONResponse(t, resp)[key].(map[string]any)
}

// ageStore makes rows created from now on look d old.
func ageStore(d time.Duration) {
	testStore.now = func() time.Time { return time.Now().UTC().Add(-d) }
}

// peerFixture serves canned finance and goal responses.
type peerFixture struct {
	transactions string
	goals        string
	summary      string
	categories   string
}

func (f peerFixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/finance/transactions/user/1":
			_, _ = w.Write([]byte(`{"success":true,"transactions":` + f.transactions + `}`))
		case "/finance/transactions/user/1/summary":
			_, _ = w.Write([]byte(f.summary))
		case "/goals/user/1":
			_, _ = w.Write([]byte(`{"success":true,"goals":` + f.goals + `}`))
		case "/finance/categories", "/goals/categories":
			_, _ = w.Write([]byte(`{"success":true,"categories":` + f.categories + `}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupWithPeers points both peers at one fixture server.
func setupWithPeers(t *testing.T, f peerFixture) {
	t.Helper()
	srv := f.server(t)
	client := peer.NewClient(srv.URL, 2*time.Second)
	setupTestRouter(client, client)
}
