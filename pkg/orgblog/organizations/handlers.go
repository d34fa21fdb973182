package organizations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/departments"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"github.com/mikepea/orgblog/pkg/orgblog/stats"
	"github.com/mikepea/orgblog/pkg/orgblog/uploads"
	"gorm.io/gorm"
)

// Handler handles organization-related requests
type Handler struct {
	db    *gorm.DB
	store uploads.Store
}

// NewHandler creates a new organizations handler. store removes images left
// behind by updates and deletes and may be nil.
func NewHandler(db *gorm.DB, store uploads.Store) *Handler {
	return &Handler{db: db, store: store}
}

// CreateOrgRequest represents the request to create an organization
type CreateOrgRequest struct {
	Name            string `json:"name" binding:"required,notblank,max=200"`
	About           string `json:"about" binding:"max=2000"`
	Logo            string `json:"logo" binding:"max=500"`
	CoverImage      string `json:"cover_image" binding:"max=500"`
	Website         string `json:"website" binding:"omitempty,url,max=500"`
	Email           string `json:"email" binding:"omitempty,email"`
	Phone           string `json:"phone" binding:"max=50"`
	CommentsEnabled *bool  `json:"comments_enabled"`
}

// UpdateOrgRequest represents the request to update an organization.
// Omitted fields are left unchanged.
type UpdateOrgRequest struct {
	Name            *string `json:"name" binding:"omitnil,notblank,max=200"`
	About           *string `json:"about" binding:"omitnil,max=2000"`
	Logo            *string `json:"logo" binding:"omitnil,max=500"`
	CoverImage      *string `json:"cover_image" binding:"omitnil,max=500"`
	Website         *string `json:"website" binding:"omitnil,max=500"`
	Email           *string `json:"email" binding:"omitnil,max=200"`
	Phone           *string `json:"phone" binding:"omitnil,max=50"`
	CommentsEnabled *bool   `json:"comments_enabled"`
	Active          *bool   `json:"active"`
}

// AssignAdminRequest names the user to make the organization's admin
type AssignAdminRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// OrgResponse represents an organization in API responses
type OrgResponse struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	About           string          `json:"about"`
	Logo            string          `json:"logo"`
	CoverImage      string          `json:"cover_image"`
	Website         string          `json:"website"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	AdminID         *uint           `json:"admin_id"`
	CommentsEnabled bool            `json:"comments_enabled"`
	Active          bool            `json:"active"`
	Stats           models.OrgStats `json:"stats"`
	StatsUpdatedAt  *time.Time      `json:"stats_updated_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MemberResponse represents a verified member in API responses
type MemberResponse struct {
	ID     uint        `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	DeptID *uint       `json:"dept_id"`
}

func orgToResponse(o models.Organization) OrgResponse {
	return OrgResponse{
		ID:              o.ID,
		Name:            o.Name,
		About:           o.About,
		Logo:            o.Logo,
		CoverImage:      o.CoverImage,
		Website:         o.Website,
		Email:           o.Email,
		Phone:           o.Phone,
		AdminID:         o.AdminID,
		CommentsEnabled: o.CommentsEnabled,
		Active:          o.Active,
		Stats:           o.Stats,
		StatsUpdatedAt:  o.StatsUpdatedAt,
		CreatedAt:       o.CreatedAt,
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("Invalid organization ID")
	}
	return uint(id), nil
}

func (h *Handler) load(c *gin.Context) (*models.Organization, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}
	var org models.Organization
	if err := h.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Organization not found")
		}
		return nil, apperr.Internal("Failed to load organization", err)
	}
	return &org, nil
}

func (h *Handler) nameTaken(name string, excludeID uint) (bool, error) {
	var count int64
	query := h.db.Model(&models.Organization{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

var errNameTaken = apperr.Conflict("An organization with this name already exists")

// List returns organizations
// @Summary List organizations
// @Description List organizations, optionally filtered by name
// @Tags organizations
// @Produce json
// @Param q query string false "Name contains"
// @Success 200 {array} OrgResponse
// @Router /organizations [get]
func (h *Handler) List(c *gin.Context) {
	query := h.db.Model(&models.Organization{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var orgs []models.Organization
	if err := query.Order("name").Find(&orgs).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch organizations", err))
		return
	}

	responses := make([]OrgResponse, len(orgs))
	for i, o := range orgs {
		responses[i] = orgToResponse(o)
	}
	c.JSON(http.StatusOK, responses)
}

// Create creates a new organization
// @Summary Create an organization
// @Description Create a new organization (super admin only)
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body CreateOrgRequest true "Organization details"
// @Success 201 {object} OrgResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Super admin access required"
// @Failure 409 {object} map[string]string "Name already taken"
// @Security BearerAuth
// @Router /organizations [post]
func (h *Handler) Create(c *gin.Context) {
	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.IsSuperAdmin(p), "Super admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	if err := uploads.CheckOwned(h.db, p.ID, req.Logo, req.CoverImage); err != nil {
		apperr.Respond(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	taken, err := h.nameTaken(name, 0)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create organization", err))
		return
	}
	if taken {
		apperr.Respond(c, errNameTaken)
		return
	}

	org := models.Organization{
		Name:            name,
		About:           req.About,
		Logo:            req.Logo,
		CoverImage:      req.CoverImage,
		Website:         req.Website,
		Email:           req.Email,
		Phone:           req.Phone,
		CommentsEnabled: true,
		Active:          true,
	}
	if req.CommentsEnabled != nil {
		org.CommentsEnabled = *req.CommentsEnabled
	}
	if err := h.db.Create(&org).Error; err != nil {
		if database.IsUniqueViolation(err) {
			apperr.Respond(c, errNameTaken)
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to create organization", err))
		return
	}

	logger.Get().WithField("org_id", org.ID).Info("organization created")
	c.JSON(http.StatusCreated, orgToResponse(org))
}

// Get returns a specific organization
// @Summary Get an organization
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} OrgResponse
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	org, err := h.load(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, orgToResponse(*org))
}

// Update updates an organization
// @Summary Update an organization
// @Description Update an organization (its org admin or super admin)
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Param request body UpdateOrgRequest true "Fields to update"
// @Success 200 {object} OrgResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 409 {object} map[string]string "Name already taken"
// @Security BearerAuth
// @Router /organizations/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	org, err := h.load(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, org.ID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		taken, err := h.nameTaken(name, org.ID)
		if err != nil {
			apperr.Respond(c, apperr.Internal("Failed to update organization", err))
			return
		}
		if taken {
			apperr.Respond(c, errNameTaken)
			return
		}
		updates["name"] = name
	}
	for column, value := range map[string]*string{
		"about":   req.About,
		"website": req.Website,
		"email":   req.Email,
		"phone":   req.Phone,
	} {
		if value != nil {
			updates[column] = *value
		}
	}

	var replaced, added []string
	if req.Logo != nil && *req.Logo != org.Logo {
		replaced = append(replaced, org.Logo)
		added = append(added, *req.Logo)
		updates["logo"] = *req.Logo
	}
	if req.CoverImage != nil && *req.CoverImage != org.CoverImage {
		replaced = append(replaced, org.CoverImage)
		added = append(added, *req.CoverImage)
		updates["cover_image"] = *req.CoverImage
	}
	if err := uploads.CheckOwned(h.db, p.ID, added...); err != nil {
		apperr.Respond(c, err)
		return
	}
	if req.CommentsEnabled != nil {
		updates["comments_enabled"] = *req.CommentsEnabled
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := h.db.Model(org).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				apperr.Respond(c, errNameTaken)
				return
			}
			apperr.Respond(c, apperr.Internal("Failed to update organization", err))
			return
		}
		uploads.Release(h.db, h.store, replaced...)
	}

	var updated models.Organization
	if err := h.db.First(&updated, org.ID).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load organization", err))
		return
	}
	c.JSON(http.StatusOK, orgToResponse(updated))
}

// Delete deletes an organization with all of its departments
// @Summary Delete an organization
// @Description Delete an organization and cascade through its departments (super admin only)
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} map[string]string "Organization deleted"
// @Failure 403 {object} map[string]string "Super admin access required"
// @Failure 404 {object} map[string]string "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	org, err := h.load(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.IsSuperAdmin(p), "Super admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var images []string
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var deptIDs []uint
		if err := tx.Model(&models.Department{}).Where("org_id = ?", org.ID).Pluck("id", &deptIDs).Error; err != nil {
			return err
		}
		var err error
		if images, err = departments.Purge(tx, deptIDs); err != nil {
			return err
		}
		if err := tx.Where("org_id = ?", org.ID).Delete(&models.Verification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Organization{}, org.ID).Error
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete organization", err))
		return
	}
	uploads.Release(h.db, h.store, append(images, org.Logo, org.CoverImage)...)

	logger.Get().WithField("org_id", org.ID).WithField("user_id", p.ID).Info("organization deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// AssignAdmin makes a verified member of the organization its org admin
// @Summary Assign the organization admin
// @Description Promote a verified member of the organization to org_admin and record them as its primary admin (super admin only)
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Param request body AssignAdminRequest true "User to promote"
// @Success 200 {object} OrgResponse
// @Failure 403 {object} map[string]string "Super admin access required"
// @Failure 404 {object} map[string]string "Organization or user not found"
// @Failure 409 {object} map[string]string "User is not a member"
// @Security BearerAuth
// @Router /organizations/{id}/admin [put]
func (h *Handler) AssignAdmin(c *gin.Context) {
	org, err := h.load(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.IsSuperAdmin(p), "Super admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req AssignAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	var user models.User
	if err := h.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("User not found"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to load user", err))
		return
	}
	if !user.Verified || user.OrgID == nil || *user.OrgID != org.ID {
		apperr.Respond(c, apperr.Conflict("User is not a verified member of this organization"))
		return
	}
	if user.Role == models.RoleSuperAdmin {
		apperr.Respond(c, apperr.Conflict("User already has a higher role"))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleOrgAdmin).Error; err != nil {
			return err
		}
		return tx.Model(&models.Organization{}).Where("id = ?", org.ID).Update("admin_id", user.ID).Error
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to assign organization admin", err))
		return
	}
	org.AdminID = &user.ID

	logger.Get().WithField("org_id", org.ID).WithField("user_id", user.ID).Info("organization admin assigned")
	c.JSON(http.StatusOK, orgToResponse(*org))
}

// ListMembers returns the verified members of an organization
// @Summary List organization members
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {array} MemberResponse
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	org, err := h.load(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, org.ID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var users []models.User
	if err := h.db.Where("org_id = ? AND verified = ?", org.ID, true).Order("name, id").Find(&users).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch members", err))
		return
	}

	members := make([]MemberResponse, len(users))
	for i, u := range users {
		members[i] = MemberResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, DeptID: u.DeptID}
	}
	c.JSON(http.StatusOK, members)
}

// Stats recomputes and returns the organization's counters
// @Summary Organization stats
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} models.OrgStats
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id}/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	org, err := h.load(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, org.ID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	updated, err := stats.RecomputeOrganization(c.Request.Context(), h.db, org.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, updated.Stats)
}

// RegisterRoutes registers organization routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	required := auth.AuthMiddleware(h.db)

	rg.GET("", h.List)
	rg.POST("", required, h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", required, h.Update)
	rg.DELETE("/:id", required, h.Delete)
	rg.PUT("/:id/admin", required, h.AssignAdmin)
	rg.GET("/:id/members", required, h.ListMembers)
	rg.GET("/:id/stats", required, h.Stats)
}
