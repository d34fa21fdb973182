package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/blogs"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/stats"
	"github.com/mikepea/orgblog/pkg/orgblog/uploads"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db    *gorm.DB
	store uploads.Store
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB, store uploads.Store) *Handler {
	return &Handler{db: db, store: store}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	auth.UserResponse
	BlogCount int64 `json:"blog_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name *string      `json:"name" binding:"omitnil,notblank,max=100"`
	Role *models.Role `json:"role" binding:"omitnil,role"`
}

func (h *Handler) toResponse(user *models.User) UserResponse {
	var blogCount int64
	h.db.Model(&models.Blog{}).Where("author_id = ?", user.ID).Count(&blogCount)
	return UserResponse{UserResponse: auth.NewUserResponse(user), BlogCount: blogCount}
}

func (h *Handler) loadUser(c *gin.Context) (*models.User, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return &user, nil
}

// ListUsers returns all users (super admin only)
// @Summary List users
// @Tags admin
// @Produce json
// @Param q query string false "Search email or name"
// @Param role query string false "Filter by role"
// @Param org_id query int false "Filter by organization"
// @Success 200 {array} UserResponse
// @Failure 403 {object} map[string]string "Super admin only"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User

	query := h.db.Order("created_at DESC, id DESC")

	// Optional search by email or name
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", term, term)
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		if !models.Role(role).Valid() {
			apperr.Respond(c, apperr.Validation("Invalid role filter"))
			return
		}
		query = query.Where("role = ?", role)
	}
	if orgID := c.Query("org_id"); orgID != "" {
		id, err := strconv.ParseUint(orgID, 10, 32)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid org_id"))
			return
		}
		query = query.Where("org_id = ?", id)
	}

	if err := query.Find(&users).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch users", err))
		return
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = h.toResponse(&users[i])
	}

	c.JSON(http.StatusOK, responses)
}

// GetUser returns a single user by ID (super admin only)
// @Summary Get a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.loadUser(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(user))
}

// roleUpdates returns the column changes that move user to role while
// keeping the affiliation invariants.
func roleUpdates(user *models.User, role models.Role) (map[string]interface{}, error) {
	switch role {
	case models.RoleGlobal:
		return map[string]interface{}{
			"role":     models.RoleGlobal,
			"verified": false,
			"org_id":   nil,
			"dept_id":  nil,
		}, nil
	case models.RoleSuperAdmin:
		return map[string]interface{}{"role": role}, nil
	default:
		if !user.Verified || user.OrgID == nil || user.DeptID == nil {
			return nil, apperr.Conflict("User must be a verified member of an organization first")
		}
		return map[string]interface{}{"role": role}, nil
	}
}

// UpdateUser updates a user's name and role (super admin only)
// @Summary Update a user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	user, err := h.loadUser(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	// Prevent admin from demoting themselves
	currentUserID, _ := auth.GetUserID(c)
	if user.ID == currentUserID && req.Role != nil && *req.Role != user.Role {
		apperr.Respond(c, apperr.Validation("Cannot change your own role"))
		return
	}

	roleChanged := req.Role != nil && *req.Role != user.Role
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if roleChanged {
		changes, err := roleUpdates(user, *req.Role)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		for k, v := range changes {
			updates[k] = v
		}
	}

	if len(updates) > 0 {
		err := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(user).Updates(updates).Error; err != nil {
				return err
			}
			// The primary contact of an organization must still be its org admin
			if roleChanged && *req.Role != models.RoleOrgAdmin {
				return tx.Model(&models.Organization{}).Where("admin_id = ?", user.ID).Update("admin_id", nil).Error
			}
			return nil
		})
		if err != nil {
			apperr.Respond(c, apperr.Internal("Failed to update user", err))
			return
		}
		if roleChanged {
			logger.Get().WithField("user_id", user.ID).WithField("role", *req.Role).Info("user role changed")
		}
	}

	// Reload user
	if err := h.db.First(user, user.ID).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load user", err))
		return
	}
	c.JSON(http.StatusOK, h.toResponse(user))
}

// DeleteUser soft-deletes a user and removes their content (super admin only)
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User deleted"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	user, err := h.loadUser(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	// Prevent admin from deleting themselves
	currentUserID, _ := auth.GetUserID(c)
	if user.ID == currentUserID {
		apperr.Respond(c, apperr.Validation("Cannot delete yourself"))
		return
	}

	var covers []string
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var blogIDs []uint
		if err := tx.Model(&models.Blog{}).Where("author_id = ?", user.ID).Pluck("id", &blogIDs).Error; err != nil {
			return err
		}
		var err error
		if covers, err = blogs.Purge(tx, blogIDs); err != nil {
			return err
		}

		if err := releaseCounters(tx, &models.Comment{}, "comments_count", user.ID); err != nil {
			return err
		}
		if err := releaseCounters(tx, &models.Like{}, "likes_count", user.ID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Verification{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Organization{}).Where("admin_id = ?", user.ID).Update("admin_id", nil).Error; err != nil {
			return err
		}
		// Delete user
		return tx.Delete(user).Error
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete user", err))
		return
	}
	uploads.Release(h.db, h.store, append(covers, user.Avatar)...)

	logger.Get().WithField("user_id", user.ID).Info("user deleted")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// releaseCounters lowers column on every blog by the number of model rows
// userID holds on it, ahead of deleting those rows.
func releaseCounters(tx *gorm.DB, model interface{}, column string, userID uint) error {
	var rows []struct {
		BlogID uint
		N      int64
	}
	if err := tx.Model(model).Select("blog_id, COUNT(*) AS n").Where("user_id = ?", userID).Group("blog_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		expr := gorm.Expr("CASE WHEN "+column+" > ? THEN "+column+" - ? ELSE 0 END", r.N, r.N)
		if err := tx.Model(&models.Blog{}).Where("id = ?", r.BlogID).UpdateColumn(column, expr).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetStats returns system-wide statistics (super admin only)
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Success 200 {object} stats.Platform
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	platform, err := stats.ComputePlatform(c.Request.Context(), h.db)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, platform)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.AuthMiddleware(h.db), auth.RequireRole(models.RoleSuperAdmin))
	rg.GET("/stats", h.GetStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
}
