package web

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"fintrack/internal/database"
	"fintrack/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validation functions

// ValidateName validates that a name is not empty or just whitespace
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// ValidateHexColor validates that a color is in hex format (#RRGGBB)
func ValidateHexColor(color string) error {
	if color == "" {
		return nil // Empty color is allowed
	}
	if !hexColorRegex.MatchString(color) {
		return fmt.Errorf("color must be in hex format (#RRGGBB)")
	}
	return nil
}

// Response helpers

// Fail writes the standard failure envelope.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// HandleStoreError converts store errors to appropriate HTTP responses. The
// caller supplies the message used for a missing row.
func HandleStoreError(err error, notFound string) (statusCode int, message string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict, "Resource already exists"
	case errors.Is(err, database.ErrInUse):
		return http.StatusConflict, "Resource is in use"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// AbortWithStoreError logs err and writes the mapped failure envelope.
func AbortWithStoreError(c *gin.Context, action string, err error, notFound string) {
	status, message := HandleStoreError(err, notFound)
	if status == http.StatusInternalServerError {
		logger.Log.Error("Error "+action, zap.Error(err))
	}
	Fail(c, status, message)
}

// Parameter helpers

// ParseID reads a positive integer path parameter. On failure it writes a 400
// and returns false.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// QueryInt reads an integer query parameter, falling back to def when absent.
func QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return n, true
}

// Health returns a handler answering with a fixed status line.
func Health(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, message)
	}
}
