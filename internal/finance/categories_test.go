package finance

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateCategory tests the POST /finance/categories endpoint
func TestCreateCategory(t *testing.T) {
	setupTestRouter(nil)

	t.Run("should create with the default color", func(t *testing.T) {
		resp := makeRequest("POST", "/finance/categories", map[string]any{"name": "Pets", "description": "Vet and food"})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Category created successfully", body["message"])
		category := body["category"].(map[string]any)
		assert.Equal(t, "Pets", category["name"])
		assert.Equal(t, "#000000", category["colorCode"])
		assert.Equal(t, true, category["isActive"])
		assert.Equal(t, false, category["isDefault"])
	})

	t.Run("should require a name", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"name":""}`, `{"name":"   "}`} {
			resp := makeRequest("POST", "/finance/categories", body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "Category name is required", parseJSONResponse(t, resp)["message"])
		}
	})

	t.Run("should reject duplicate names", func(t *testing.T) {
		resp := makeRequest("POST", "/finance/categories", map[string]any{"name": "Pets"})
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "Category name already exists", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should reject malformed colors", func(t *testing.T) {
		resp := makeRequest("POST", "/finance/categories", map[string]any{"name": "Kids", "colorCode": "red"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Invalid color code format", parseJSONResponse(t, resp)["message"])
	})
}

// TestGetCategories tests the category read endpoints
func TestGetCategories(t *testing.T) {
	setupTestRouter(nil)
	createTestCategory(t, "Zoo")
	createTestCategory(t, "Art")

	t.Run("should list categories by name", func(t *testing.T) {
		resp := makeRequest("GET", "/finance/categories", nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Categories retrieved successfully", body["message"])
		assert.Equal(t, float64(2), body["count"])
		first := body["categories"].([]any)[0].(map[string]any)
		assert.Equal(t, "Art", first["name"])
	})

	t.Run("should return 404 for a missing category", func(t *testing.T) {
		resp := makeRequest("GET", "/finance/categories/77", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Category not found", parseJSONResponse(t, resp)["message"])
	})
}

// TestUpdateCategory tests the PUT /finance/categories/:id endpoint
func TestUpdateCategory(t *testing.T) {
	setupTestRouter(nil)
	gym := createTestCategory(t, "Gym")
	createTestCategory(t, "Books")

	t.Run("should update given fields only", func(t *testing.T) {
		resp := makeRequest("PUT", "/finance/categories/1", map[string]any{"colorCode": "#112233"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		category := parseJSONResponse(t, resp)["category"].(map[string]any)
		assert.Equal(t, gym.Name, category["name"])
		assert.Equal(t, "#112233", category["colorCode"])
	})

	t.Run("should allow keeping its own name", func(t *testing.T) {
		resp := makeRequest("PUT", "/finance/categories/1", map[string]any{"name": "Gym"})
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("should reject renaming onto an existing name", func(t *testing.T) {
		resp := makeRequest("PUT", "/finance/categories/1", map[string]any{"name": "Books"})
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("should return 404 for a missing category", func(t *testing.T) {
		resp := makeRequest("PUT", "/finance/categories/50", map[string]any{"name": "X"})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// TestDeleteCategory tests the DELETE /finance/categories/:id endpoint
func TestDeleteCategory(t *testing.T) {
	setupTestRouter(nil)
	used := createTestCategory(t, "Used")
	createTestCategory(t, "Unused")

	resp := makeRequest("POST", "/finance/transactions", map[string]any{
		"userId": 1, "amount": 1, "description": "x", "categoryId": used.ID,
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	t.Run("should refuse to delete a category in use", func(t *testing.T) {
		resp := makeRequest("DELETE", "/finance/categories/1", nil)
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "Category is in use by transactions", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should delete an unused category", func(t *testing.T) {
		resp := makeRequest("DELETE", "/finance/categories/2", nil)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Category deleted successfully", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should return 404 for a missing category", func(t *testing.T) {
		resp := makeRequest("DELETE", "/finance/categories/2", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Category not found", parseJSONResponse(t, resp)["message"])
	})
}

// TestInitializeDefaultCategories tests the POST /finance/categories/initialize-defaults endpoint
func TestInitializeDefaultCategories(t *testing.T) {
	t.Run("should seed twelve defaults once", func(t *testing.T) {
		setupTestRouter(nil)

		resp := makeRequest("POST", "/finance/categories/initialize-defaults", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Default categories initialized successfully", body["message"])
		assert.Equal(t, float64(12), body["count"])

		resp = makeRequest("POST", "/finance/categories/initialize-defaults", nil)
		body = parseJSONResponse(t, resp)
		assert.Equal(t, "Default categories already exist", body["message"])
		assert.NotContains(t, body, "count")

		categories := parseJSONResponse(t, makeRequest("GET", "/finance/categories", nil))
		assert.Equal(t, float64(12), categories["count"])
		for _, raw := range categories["categories"].([]any) {
			c := raw.(map[string]any)
			assert.Equal(t, true, c["isDefault"])
			assert.Equal(t, "Default "+c["name"].(string)+" category", c["description"])
		}
	})

	t.Run("should skip defaults whose name is taken", func(t *testing.T) {
		setupTestRouter(nil)
		createTestCategory(t, "Travel")

		resp := makeRequest("POST", "/finance/categories/initialize-defaults", nil)
		body := parseJSONResponse(t, resp)
		assert.Equal(t, float64(11), body["count"])
	})
}
