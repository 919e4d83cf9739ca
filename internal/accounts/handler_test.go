package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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

func setupTestRouter() {
	testStore = NewMemoryStore()
	testRouter = gin.New()
	NewHandler(testStore).RegisterRoutes(testRouter)
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

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body), recorder.Body.String())
	return body
}

func registerTestUser(t *testing.T, email string) map[string]any {
	t.Helper()
	resp := makeRequest("POST", "/auth/register", map[string]any{
		"email": email, "password": "secret1", "firstName": "Ada", "lastName": "Lovelace",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return parseJSONResponse(t, resp)["user"].(map[string]any)
}

// TestRegister tests the POST /auth/register endpoint
func TestRegister(t *testing.T) {
	setupTestRouter()

	t.Run("should validate fields in order", func(t *testing.T) {
		cases := []struct {
			body    map[string]any
			message string
		}{
			{map[string]any{}, "Email is required"},
			{map[string]any{"email": "   "}, "Email is required"},
			{map[string]any{"email": "not-an-email"}, "Invalid email format"},
			{map[string]any{"email": "a@b.io", "password": "12345"}, "Password must be at least 6 characters"},
			{map[string]any{"email": "a@b.io", "password": "123456"}, "First name is required"},
			{map[string]any{"email": "a@b.io", "password": "123456", "firstName": "A"}, "Last name is required"},
		}
		for _, tc := range cases {
			resp := makeRequest("POST", "/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, tc.message, parseJSONResponse(t, resp)["message"])
		}
	})

	t.Run("should normalize the email and hide the hash", func(t *testing.T) {
		resp := makeRequest("POST", "/auth/register", map[string]any{
			"email": "  Ada@Example.COM ", "password": "secret1", "firstName": "Ada", "lastName": "Lovelace", "phone": "555",
		})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "User registered successfully", body["message"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "ada@example.com", user["email"])
		assert.Equal(t, true, user["isActive"])
		assert.NotContains(t, user, "passwordHash")
		assert.NotContains(t, user, "password")
	})

	t.Run("should hash with cost 12", func(t *testing.T) {
		stored, err := testStore.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
		require.NoError(t, err)
		assert.Equal(t, HashCost, cost)
	})

	t.Run("should reject a duplicate email without creating a row", func(t *testing.T) {
		resp := makeRequest("POST", "/auth/register", map[string]any{
			"email": "ADA@example.com", "password": "another", "firstName": "A", "lastName": "L",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "Email already registered", parseJSONResponse(t, resp)["message"])

		users, _ := testStore.List(context.Background())
		assert.Len(t, users, 1)
	})
}

// TestLogin tests the POST /auth/login endpoint
func TestLogin(t *testing.T) {
	setupTestRouter()
	user := registerTestUser(t, "grace@example.com")

	t.Run("should accept valid credentials", func(t *testing.T) {
		resp := makeRequest("POST", "/auth/login", map[string]any{"email": "Grace@example.com", "password": "secret1"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "jwt-token-here", body["token"])
		assert.NotNil(t, body["user"].(map[string]any)["lastLogin"])
	})

	t.Run("should answer 401 for a wrong password or unknown email", func(t *testing.T) {
		for _, creds := range []map[string]any{
			{"email": "grace@example.com", "password": "wrong!"},
			{"email": "nobody@example.com", "password": "secret1"},
		} {
			resp := makeRequest("POST", "/auth/login", creds)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			body := parseJSONResponse(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Invalid email or password", body["message"])
		}
	})

	t.Run("should answer 401 for an inactive user", func(t *testing.T) {
		stored, err := testStore.GetByID(context.Background(), int64(user["id"].(float64)))
		require.NoError(t, err)
		stored.IsActive = false
		require.NoError(t, testStore.Update(context.Background(), &stored))

		resp := makeRequest("POST", "/auth/login", map[string]any{"email": "grace@example.com", "password": "secret1"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

// TestUserEndpoints tests get, update, delete and list under /auth
func TestUserEndpoints(t *testing.T) {
	setupTestRouter()
	registerTestUser(t, "one@example.com")
	registerTestUser(t, "two@example.com")

	t.Run("should list users", func(t *testing.T) {
		body := parseJSONResponse(t, makeRequest("GET", "/auth/users", nil))
		assert.Equal(t, "Users retrieved successfully", body["message"])
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("should get a user or 404", func(t *testing.T) {
		resp := makeRequest("GET", "/auth/user/1", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "one@example.com", parseJSONResponse(t, resp)["email"])

		resp = makeRequest("GET", "/auth/user/99", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "User not found", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should replace only non-empty fields", func(t *testing.T) {
		resp := makeRequest("PUT", "/auth/user/1", map[string]any{"firstName": "Augusta", "lastName": ""})
		require.Equal(t, http.StatusOK, resp.Code)
		user := parseJSONResponse(t, resp)["user"].(map[string]any)
		assert.Equal(t, "Augusta", user["firstName"])
		assert.Equal(t, "Lovelace", user["lastName"])
	})

	t.Run("should re-hash a new password", func(t *testing.T) {
		resp := makeRequest("PUT", "/auth/user/1", map[string]any{"password": "short"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)

		resp = makeRequest("PUT", "/auth/user/1", map[string]any{"password": "brand-new"})
		require.Equal(t, http.StatusOK, resp.Code)

		login := makeRequest("POST", "/auth/login", map[string]any{"email": "one@example.com", "password": "brand-new"})
		assert.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("should delete a user once", func(t *testing.T) {
		resp := makeRequest("DELETE", "/auth/user/2", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "User deleted successfully", parseJSONResponse(t, resp)["message"])

		resp = makeRequest("DELETE", "/auth/user/2", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "User not found", parseJSONResponse(t, resp)["message"])
	})
}

func TestAccountsHealth(t *testing.T) {
	setupTestRouter()
	resp := makeRequest("GET", "/auth/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Authentication Service is running!", resp.Body.String())
}
