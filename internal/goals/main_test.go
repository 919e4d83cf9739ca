package goals

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fintrack/internal/notify"
	"fintrack/internal/peer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	testStore      *MemoryStore
	testRouter     *gin.Engine
	testDispatcher *notify.Dispatcher
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupTestRouter builds a fresh router over an empty memory store. Either
// peer may be nil.
func setupTestRouter(insight, finance *peer.Client) {
	testStore = NewMemoryStore()
	testDispatcher = notify.NewDispatcher(8, time.Second)

	h := NewHandler(Deps{
		Store:      testStore,
		Insight:    insight,
		Finance:    finance,
		Dispatcher: testDispatcher,
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

// createTestCategory creates a goal category directly in the store
func createTestCategory(t *testing.T, name string) Category {
	t.Helper()
	c := Category{Name: name, Icon: defaultIcon, ColorCode: defaultColorCode, IsActive: true}
	require.NoError(t, testStore.CreateCategory(context.Background(), &c))
	return c
}

// createTestGoal creates a goal through the API and returns its decoded body
func createTestGoal(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	resp := makeRequest("POST", "/goals", body)
	require.Equal(t, 201, resp.Code, resp.Body.String())
	return parseJSONResponse(t, resp)["goal"].(map[string]any)
}
