package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

// Handler handles authentication requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,notblank,max=100"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the profile update request body.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitnil,notblank,max=100"`
	Bio    *string `json:"bio" binding:"omitnil,max=500"`
	Avatar *string `json:"avatar" binding:"omitnil,max=500"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint        `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	Verified  bool        `json:"verified"`
	OrgID     *uint       `json:"org_id"`
	DeptID    *uint       `json:"dept_id"`
	Bio       string      `json:"bio"`
	Avatar    string      `json:"avatar"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse converts a stored user into its public representation
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Verified:  u.Verified,
		OrgID:     u.OrgID,
		DeptID:    u.DeptID,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new global, unverified user account and receive a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	email := NormalizeEmail(req.Email)

	// Check if email already exists
	var count int64
	if err := h.db.Model(&models.User{}).Unscoped().Where("email = ?", email).Count(&count).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create user", err))
		return
	}
	if count > 0 {
		apperr.Respond(c, apperr.Conflict("Email already registered"))
		return
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to process password", err))
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleGlobal,
		Verified:     false,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			apperr.Respond(c, apperr.Conflict("Email already registered"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to create user", err))
		return
	}

	token, err := GenerateToken(&user)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to generate token", err))
		return
	}

	logger.Get().WithField("user_id", user.ID).Info("user registered")

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  NewUserResponse(&user),
	})
}

// Login handles user login
// @Summary Login
// @Description Authenticate with email and password to receive a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.Unauthenticated("Invalid email or password"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to log in", err))
		return
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		apperr.Respond(c, apperr.Unauthenticated("Invalid email or password"))
		return
	}

	now := time.Now()
	if err := h.db.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to log in", err))
		return
	}
	user.LastLogin = &now

	token, err := GenerateToken(&user)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  NewUserResponse(&user),
	})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}

// UpdateProfile updates the current user's name, bio and avatar
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /auth/me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.currentUser(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}

	if len(updates) > 0 {
		if err := h.db.Model(user).Updates(updates).Error; err != nil {
			apperr.Respond(c, apperr.Internal("Failed to update profile", err))
			return
		}
		if err := h.db.First(user, user.ID).Error; err != nil {
			apperr.Respond(c, apperr.Internal("Failed to load user", err))
			return
		}
	}

	c.JSON(http.StatusOK, NewUserResponse(user))
}

// ChangePassword replaces the current user's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Current password is incorrect"
// @Security BearerAuth
// @Router /auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.currentUser(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if !CheckPassword(req.CurrentPassword, user.PasswordHash) {
		apperr.Respond(c, apperr.Unauthenticated("Current password is incorrect"))
		return
	}

	hashedPassword, err := HashPassword(req.NewPassword)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to process password", err))
		return
	}

	if err := h.db.Model(user).Update("password_hash", hashedPassword).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to update password", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Logout handles user logout (client-side token invalidation)
// @Summary Logout
// @Description Logout the current user (client-side token invalidation)
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out successfully"
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) currentUser(c *gin.Context) (*models.User, error) {
	userID, ok := GetUserID(c)
	if !ok {
		return nil, apperr.Unauthenticated("Authentication required")
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return &user, nil
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)

	authed := rg.Group("", AuthMiddleware(h.db))
	authed.GET("/me", h.Me)
	authed.PUT("/me", h.UpdateProfile)
	authed.PUT("/password", h.ChangePassword)
}
