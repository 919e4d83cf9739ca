package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"fintrack/internal/events"
	"fintrack/internal/notify"
	"fintrack/internal/peer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	testStore      *MemoryStore
	testRouter     *gin.Engine
	testDispatcher *notify.Dispatcher
	testPublisher  *recordingPublisher
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// recordingPublisher keeps published events for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.TransactionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if e, ok := payload.(events.TransactionEvent); ok {
		p.events = append(p.events, e)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// setupTestRouter builds a fresh router over an empty memory store. insight
// may be nil to skip cross-service notification.
func setupTestRouter(insight *peer.Client) {
	testStore = NewMemoryStore()
	testDispatcher = notify.NewDispatcher(8, time.Second)
	testPublisher = &recordingPublisher{}

	h := NewHandler(Deps{
		Store:      testStore,
		Insight:    insight,
		Publisher:  testPublisher,
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

// makeMultipartRequest helper function for file uploads
func makeMultipartRequest(url, fieldName, fileName string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		panic(err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

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

// createTestCategory creates a category directly in the store and returns it
func createTestCategory(t *testing.T, name string) Category {
	t.Helper()
	c := Category{Name: name, ColorCode: defaultColorCode, IsActive: true}
	require.NoError(t, testStore.CreateCategory(context.Background(), &c))
	return c
}
