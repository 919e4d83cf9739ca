package goals

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGoalCategories tests the /goals/categories endpoints
func TestGoalCategories(t *testing.T) {
	setupTestRouter(nil, nil)

	t.Run("should create with icon and color defaults", func(t *testing.T) {
		resp := makeRequest("POST", "/goals/categories", map[string]any{"name": "Vacation", "sortOrder": 2})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		body := parseJSONResponse(t, resp)
		assert.Equal(t, "Goal category created successfully", body["message"])
		category := body["category"].(map[string]any)
		assert.Equal(t, "target", category["icon"])
		assert.Equal(t, "#3B82F6", category["colorCode"])
		assert.Equal(t, true, category["isActive"])
	})

	t.Run("should require a name", func(t *testing.T) {
		resp := makeRequest("POST", "/goals/categories", map[string]any{"icon": "car"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Category name is required", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should reject a duplicate name", func(t *testing.T) {
		resp := makeRequest("POST", "/goals/categories", map[string]any{"name": "Vacation"})
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "Category name already exists", parseJSONResponse(t, resp)["message"])
	})

	t.Run("should reject a malformed color", func(t *testing.T) {
		resp := makeRequest("POST", "/goals/categories", map[string]any{"name": "Home", "colorCode": "blue"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("should order by sortOrder then name", func(t *testing.T) {
		makeRequest("POST", "/goals/categories", map[string]any{"name": "Retirement", "sortOrder": 1})
		makeRequest("POST", "/goals/categories", map[string]any{"name": "Bicycle", "sortOrder": 2})

		body := parseJSONResponse(t, makeRequest("GET", "/goals/categories", nil))
		assert.Equal(t, "Categories retrieved successfully", body["message"])
		categories := body["categories"].([]any)
		require.Len(t, categories, 3)

		var names []string
		for _, c := range categories {
			names = append(names, c.(map[string]any)["name"].(string))
		}
		assert.Equal(t, []string{"Retirement", "Bicycle", "Vacation"}, names)
	})

	t.Run("should update and detect name clashes", func(t *testing.T) {
		resp := makeRequest("PUT", "/goals/categories/1", map[string]any{"icon": "plane"})
		require.Equal(t, http.StatusOK, resp.Code)
		category := parseJSONResponse(t, resp)["category"].(map[string]any)
		assert.Equal(t, "plane", category["icon"])
		assert.Equal(t, "Vacation", category["name"])

		resp = makeRequest("PUT", "/goals/categories/1", map[string]any{"name": "Bicycle"})
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("should refuse to delete a category used by a goal", func(t *testing.T) {
		createTestGoal(t, map[string]any{"userId": 1, "title": "Rome", "targetAmount": 800, "categoryId": 1})
		resp := makeRequest("DELETE", "/goals/categories/1", nil)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("should delete an unused category", func(t *testing.T) {
		resp := makeRequest("DELETE", "/goals/categories/2", nil)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Category deleted successfully", parseJSONResponse(t, resp)["message"])

		resp = makeRequest("GET", "/goals/categories/2", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Category not found", parseJSONResponse(t, resp)["message"])
	})
}
