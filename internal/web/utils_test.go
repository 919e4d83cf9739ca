package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidateName(t *testing.T) {
	t.Run("valid name returns nil", func(t *testing.T) {
		assert.NoError(t, ValidateName("Groceries"))
	})

	t.Run("empty and whitespace names return error", func(t *testing.T) {
		for _, name := range []string{"", " ", "\t\n"} {
			err := ValidateName(name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "name cannot be empty")
		}
	})
}

func TestValidateHexColor(t *testing.T) {
	t.Run("empty color is allowed", func(t *testing.T) {
		assert.NoError(t, ValidateHexColor(""))
	})

	t.Run("upper and lower case hex colors are valid", func(t *testing.T) {
		assert.NoError(t, ValidateHexColor("#FF6B6B"))
		assert.NoError(t, ValidateHexColor("#3b82f6"))
	})

	t.Run("malformed colors return error", func(t *testing.T) {
		for _, color := range []string{"FF6B6B", "#FFF", "#GGGGGG", "#FF6B6B0"} {
			err := ValidateHexColor(color)
			require.Error(t, err, color)
			assert.Contains(t, err.Error(), "#RRGGBB")
		}
	})
}

func TestHandleStoreError(t *testing.T) {
	t.Run("missing rows map to 404 with the caller's message", func(t *testing.T) {
		status, message := HandleStoreError(fmt.Errorf("load: %w", database.ErrNotFound), "Goal not found")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Goal not found", message)
	})

	t.Run("duplicates map to 409", func(t *testing.T) {
		status, _ := HandleStoreError(database.ErrDuplicate, "")
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("references map to 409", func(t *testing.T) {
		status, _ := HandleStoreError(database.ErrInUse, "")
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("anything else is an internal error without details", func(t *testing.T) {
		status, message := HandleStoreError(errors.New("pq: connection refused"), "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal server error", message)
	})
}

func TestParseID(t *testing.T) {
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParseID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	t.Run("should accept positive integers", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":42}`, w.Body.String())
	})

	t.Run("should reject non-numeric and non-positive ids", func(t *testing.T) {
		for _, raw := range []string{"abc", "0", "-3"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+raw, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, raw)
			assert.JSONEq(t, `{"success":false,"message":"Invalid id"}`, w.Body.String())
		}
	})
}

func TestQueryInt(t *testing.T) {
	router := gin.New()
	router.GET("/recent", func(c *gin.Context) {
		days, ok := QueryInt(c, "days", 7)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days})
	})

	t.Run("should default when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recent", nil))
		assert.JSONEq(t, `{"days":7}`, w.Body.String())
	})

	t.Run("should read the parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recent?days=30", nil))
		assert.JSONEq(t, `{"days":30}`, w.Body.String())
	})

	t.Run("should reject garbage", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recent?days=soon", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
