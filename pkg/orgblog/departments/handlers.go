package departments

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
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"github.com/mikepea/orgblog/pkg/orgblog/stats"
	"github.com/mikepea/orgblog/pkg/orgblog/uploads"
	"gorm.io/gorm"
)

// Handler handles department requests
type Handler struct {
	db    *gorm.DB
	store uploads.Store
}

// NewHandler creates a new departments handler. store removes images left
// behind by deleted departments and may be nil.
func NewHandler(db *gorm.DB, store uploads.Store) *Handler {
	return &Handler{db: db, store: store}
}

// CreateDeptRequest represents the request to create a department
type CreateDeptRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"max=1000"`
	Image       string `json:"image" binding:"max=500"`
}

// UpdateDeptRequest represents the request to update a department. Omitted
// fields are left unchanged.
type UpdateDeptRequest struct {
	Name        *string `json:"name" binding:"omitnil,notblank,max=100"`
	Description *string `json:"description" binding:"omitnil,max=1000"`
	Image       *string `json:"image" binding:"omitnil,max=500"`
	Active      *bool   `json:"active"`
}

// AdminRequest names the user to make a department admin
type AdminRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// DeptResponse represents a department in API responses
type DeptResponse struct {
	ID             uint             `json:"id"`
	OrgID          uint             `json:"org_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Image          string           `json:"image"`
	Active         bool             `json:"active"`
	AdminIDs       []uint           `json:"admin_ids"`
	Stats          models.DeptStats `json:"stats"`
	StatsUpdatedAt *time.Time       `json:"stats_updated_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// AdminResponse is a department admin
type AdminResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func deptToResponse(d models.Department, adminIDs []uint) DeptResponse {
	if adminIDs == nil {
		adminIDs = []uint{}
	}
	return DeptResponse{
		ID:             d.ID,
		OrgID:          d.OrgID,
		Name:           d.Name,
		Description:    d.Description,
		Image:          d.Image,
		Active:         d.Active,
		AdminIDs:       adminIDs,
		Stats:          d.Stats,
		StatsUpdatedAt: d.StatsUpdatedAt,
		CreatedAt:      d.CreatedAt,
	}
}

// AdminIDs returns the ids of the department admins of each department,
// derived from user roles.
func AdminIDs(db *gorm.DB, deptIDs ...uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(deptIDs))
	if len(deptIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ID     uint
		DeptID uint
	}
	err := db.Model(&models.User{}).
		Select("id, dept_id").
		Where("role = ? AND dept_id IN ?", models.RoleDeptAdmin, deptIDs).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.DeptID] = append(out[r.DeptID], r.ID)
	}
	return out, nil
}

func parseID(c *gin.Context, param, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, apperr.Validation("Invalid " + what + " ID")
	}
	return uint(id), nil
}

// Load fetches a department by id
func Load(db *gorm.DB, id uint) (*models.Department, error) {
	var dept models.Department
	if err := db.First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Department not found")
		}
		return nil, apperr.Internal("Failed to load department", err)
	}
	return &dept, nil
}

func (h *Handler) nameTaken(orgID uint, name string, excludeID uint) (bool, error) {
	var count int64
	query := h.db.Model(&models.Department{}).Where("org_id = ? AND LOWER(name) = LOWER(?)", orgID, name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (h *Handler) respond(c *gin.Context, status int, dept *models.Department) {
	admins, err := AdminIDs(h.db, dept.ID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load department admins", err))
		return
	}
	c.JSON(status, deptToResponse(*dept, admins[dept.ID]))
}

// List returns the departments of an organization
// @Summary List departments
// @Tags departments
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {array} DeptResponse
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id}/departments [get]
func (h *Handler) List(c *gin.Context) {
	orgID, err := parseID(c, "id", "organization")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := h.db.Select("id").First(&models.Organization{}, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("Organization not found"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to load organization", err))
		return
	}

	var depts []models.Department
	if err := h.db.Where("org_id = ?", orgID).Order("name").Find(&depts).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch departments", err))
		return
	}

	ids := make([]uint, len(depts))
	for i, d := range depts {
		ids[i] = d.ID
	}
	admins, err := AdminIDs(h.db, ids...)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load department admins", err))
		return
	}

	responses := make([]DeptResponse, len(depts))
	for i, d := range depts {
		responses[i] = deptToResponse(d, admins[d.ID])
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns a department
// @Summary Get a department
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} DeptResponse
// @Failure 404 {object} map[string]string "Department not found"
// @Router /departments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.respond(c, http.StatusOK, dept)
}

// Create creates a department in an organization
// @Summary Create a department
// @Description Create a department (org admin of the organization or super admin)
// @Tags departments
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Param request body CreateDeptRequest true "Department details"
// @Success 201 {object} DeptResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 409 {object} map[string]string "Department name taken"
// @Security BearerAuth
// @Router /organizations/{id}/departments [post]
func (h *Handler) Create(c *gin.Context) {
	orgID, err := parseID(c, "id", "organization")
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("Organization not found"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to load organization", err))
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, org.ID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req CreateDeptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	if err := uploads.CheckOwned(h.db, p.ID, req.Image); err != nil {
		apperr.Respond(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	taken, err := h.nameTaken(org.ID, name, 0)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create department", err))
		return
	}
	if taken {
		apperr.Respond(c, errNameTaken)
		return
	}

	dept := models.Department{
		OrgID:       org.ID,
		Name:        name,
		Description: req.Description,
		Image:       req.Image,
		Active:      true,
	}
	if err := h.db.Create(&dept).Error; err != nil {
		if database.IsUniqueViolation(err) {
			apperr.Respond(c, errNameTaken)
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to create department", err))
		return
	}

	logger.Get().WithField("dept_id", dept.ID).WithField("org_id", org.ID).Info("department created")
	c.JSON(http.StatusCreated, deptToResponse(dept, nil))
}

var errNameTaken = apperr.Conflict("A department with this name already exists in the organization")

// Update updates a department
// @Summary Update a department
// @Description Update a department (its dept admin, the org admin or super admin)
// @Tags departments
// @Accept json
// @Produce json
// @Param id path int true "Department ID"
// @Param request body UpdateDeptRequest true "Fields to update"
// @Success 200 {object} DeptResponse
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Department not found"
// @Failure 409 {object} map[string]string "Department name taken"
// @Security BearerAuth
// @Router /departments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageDepartment(p, dept), "Department admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req UpdateDeptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		taken, err := h.nameTaken(dept.OrgID, name, dept.ID)
		if err != nil {
			apperr.Respond(c, apperr.Internal("Failed to update department", err))
			return
		}
		if taken {
			apperr.Respond(c, errNameTaken)
			return
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	oldImage := ""
	if req.Image != nil && *req.Image != dept.Image {
		if err := uploads.CheckOwned(h.db, p.ID, *req.Image); err != nil {
			apperr.Respond(c, err)
			return
		}
		oldImage = dept.Image
		updates["image"] = *req.Image
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := h.db.Model(dept).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				apperr.Respond(c, errNameTaken)
				return
			}
			apperr.Respond(c, apperr.Internal("Failed to update department", err))
			return
		}
		uploads.Release(h.db, h.store, oldImage)
	}

	updated, err := Load(h.db, dept.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.respond(c, http.StatusOK, updated)
}

// Delete deletes a department with its blogs and detaches its members
// @Summary Delete a department
// @Description Delete a department, its blogs and pending requests. Members become unverified global users.
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} map[string]string "Department deleted"
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Department not found"
// @Security BearerAuth
// @Router /departments/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, dept.OrgID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var images []string
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		images, err = Purge(tx, []uint{dept.ID})
		return err
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete department", err))
		return
	}
	uploads.Release(h.db, h.store, images...)

	logger.Get().WithField("dept_id", dept.ID).WithField("user_id", p.ID).Info("department deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Department deleted"})
}

// ListAdmins returns the admins of a department
// @Summary List department admins
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {array} AdminResponse
// @Failure 404 {object} map[string]string "Department not found"
// @Router /departments/{id}/admins [get]
func (h *Handler) ListAdmins(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var users []models.User
	if err := h.db.Where("role = ? AND dept_id = ?", models.RoleDeptAdmin, dept.ID).Order("id").Find(&users).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch department admins", err))
		return
	}

	admins := make([]AdminResponse, len(users))
	for i, u := range users {
		admins[i] = AdminResponse{ID: u.ID, Email: u.Email, Name: u.Name}
	}
	c.JSON(http.StatusOK, admins)
}

// AssignAdmin makes a verified member of the department its admin
// @Summary Assign a department admin
// @Description Promote a verified member of the department to dept_admin (org admin of the organization or super admin)
// @Tags departments
// @Accept json
// @Produce json
// @Param id path int true "Department ID"
// @Param request body AdminRequest true "User to promote"
// @Success 200 {object} AdminResponse
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Department or user not found"
// @Failure 409 {object} map[string]string "User is not a member or has a higher role"
// @Security BearerAuth
// @Router /departments/{id}/admins [post]
func (h *Handler) AssignAdmin(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, dept.OrgID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req AdminRequest
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
	if !user.Verified || user.DeptID == nil || *user.DeptID != dept.ID {
		apperr.Respond(c, apperr.Conflict("User is not a verified member of this department"))
		return
	}
	if user.Role.Level() > models.RoleDeptAdmin.Level() {
		apperr.Respond(c, apperr.Conflict("User already has a higher role"))
		return
	}

	if user.Role != models.RoleDeptAdmin {
		if err := h.db.Model(&user).Update("role", models.RoleDeptAdmin).Error; err != nil {
			apperr.Respond(c, apperr.Internal("Failed to assign department admin", err))
			return
		}
		logger.Get().WithField("dept_id", dept.ID).WithField("user_id", user.ID).Info("department admin assigned")
	}

	c.JSON(http.StatusOK, AdminResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// RemoveAdmin demotes a department admin back to a verified member
// @Summary Remove a department admin
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]string "Admin removed"
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Not an admin of this department"
// @Security BearerAuth
// @Router /departments/{id}/admins/{userId} [delete]
func (h *Handler) RemoveAdmin(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	userID, err := parseID(c, "userId", "user")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageOrganization(p, dept.OrgID), "Organization admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	res := h.db.Model(&models.User{}).
		Where("id = ? AND role = ? AND dept_id = ?", userID, models.RoleDeptAdmin, dept.ID).
		Update("role", models.RoleVerified)
	if res.Error != nil {
		apperr.Respond(c, apperr.Internal("Failed to remove department admin", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.NotFound("User is not an admin of this department"))
		return
	}

	logger.Get().WithField("dept_id", dept.ID).WithField("user_id", userID).Info("department admin removed")
	c.JSON(http.StatusOK, gin.H{"message": "Admin removed"})
}

// Stats recomputes and returns the department's counters
// @Summary Department stats
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} models.DeptStats
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 404 {object} map[string]string "Department not found"
// @Security BearerAuth
// @Router /departments/{id}/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	id, err := parseID(c, "id", "department")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dept, err := Load(h.db, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanManageDepartment(p, dept), "Department admin access required"); err != nil {
		apperr.Respond(c, err)
		return
	}

	updated, err := stats.RecomputeDepartment(c.Request.Context(), h.db, dept.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, updated.Stats)
}

// RegisterRoutes registers department routes. Departments are created and
// listed under their organization.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	required := auth.AuthMiddleware(h.db)

	rg.GET("/organizations/:id/departments", h.List)
	rg.POST("/organizations/:id/departments", required, h.Create)

	rg.GET("/departments/:id", h.Get)
	rg.PUT("/departments/:id", required, h.Update)
	rg.DELETE("/departments/:id", required, h.Delete)
	rg.GET("/departments/:id/admins", h.ListAdmins)
	rg.POST("/departments/:id/admins", required, h.AssignAdmin)
	rg.DELETE("/departments/:id/admins/:userId", required, h.RemoveAdmin)
	rg.GET("/departments/:id/stats", required, h.Stats)
}
