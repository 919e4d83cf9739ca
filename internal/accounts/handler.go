// Package accounts registers users and checks their credentials.
package accounts

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// HashCost is the bcrypt work factor for stored passwords.
	HashCost = 12

	minPasswordLength = 6
	placeholderToken  = "jwt-token-here"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	store Store
	now   func() time.Time
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// RegisterRoutes mounts every account endpoint under /auth.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/auth")

	g.GET("/health", web.Health("Authentication Service is running!"))
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/users", h.getUsers)
	g.GET("/user/:id", h.getUser)
	g.PUT("/user/:id", h.updateUser)
	g.DELETE("/user/:id", h.deleteUser)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "User registered successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 409 {object} map[string]interface{} "Email already registered"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := normalizeEmail(req.Email)

	// Validate required fields in the documented order
	switch {
	case email == "":
		web.Fail(c, http.StatusBadRequest, "Email is required")
		return
	case !emailRegex.MatchString(email):
		web.Fail(c, http.StatusBadRequest, "Invalid email format")
		return
	case len(req.Password) < minPasswordLength:
		web.Fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	case strings.TrimSpace(req.FirstName) == "":
		web.Fail(c, http.StatusBadRequest, "First name is required")
		return
	case strings.TrimSpace(req.LastName) == "":
		web.Fail(c, http.StatusBadRequest, "Last name is required")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetByEmail(ctx, email); err == nil {
		web.Fail(c, http.StatusConflict, "Email already registered")
		return
	} else if !isNotFound(err) {
		web.AbortWithStoreError(c, "checking email", err, "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), HashCost)
	if err != nil {
		logger.Log.Error("failed to hash password", zap.Error(err))
		web.Fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}
	if err := h.store.Create(ctx, &user); err != nil {
		// A concurrent registration can still win the unique index
		if errors.Is(err, database.ErrDuplicate) {
			web.Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		web.AbortWithStoreError(c, "creating user", err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    user,
	})
}

// @Summary Login
// @Description Verifies credentials. The token is a fixed placeholder
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} map[string]interface{} "Login successful"
// @Failure 401 {object} map[string]interface{} "Invalid email or password"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil && !isNotFound(err) {
		web.AbortWithStoreError(c, "loading user", err, "")
		return
	}
	if err != nil || !user.IsActive ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		web.Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	now := h.now().UTC()
	user.LastLogin = &now
	if err := h.store.Update(ctx, &user); err != nil {
		web.AbortWithStoreError(c, "recording login", err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    user,
		"token":   placeholderToken,
	})
}

// @Summary Get user by ID
// @Tags auth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} User
// @Failure 404 {object} map[string]interface{} "User not found"
// @Router /auth/user/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	user, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching user", err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Update user
// @Description Non-empty names and phone replace the stored values; a password is re-hashed
// @Tags auth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body UpdateRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "User updated successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Router /auth/user/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetByID(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching user", err, "User not found")
		return
	}

	if v := strings.TrimSpace(req.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(req.Phone); v != "" {
		user.Phone = v
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			web.Fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), HashCost)
		if err != nil {
			logger.Log.Error("failed to hash password", zap.Error(err))
			web.Fail(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.store.Update(ctx, &user); err != nil {
		web.AbortWithStoreError(c, "updating user", err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"user":    user,
	})
}

// @Summary Delete user
// @Tags auth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{} "User deleted successfully"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Router /auth/user/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		web.AbortWithStoreError(c, "deleting user", err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

// @Summary Get all users
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Users retrieved successfully"
// @Router /auth/users [get]
func (h *Handler) getUsers(c *gin.Context) {
	users, err := h.store.List(c.Request.Context())
	if err != nil {
		web.AbortWithStoreError(c, "fetching users", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Users retrieved successfully",
		"users":   users,
		"count":   len(users),
	})
}
