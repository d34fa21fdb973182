package verification

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

// Handler handles verification requests
type Handler struct {
	db      *gorm.DB
	service *Service
}

// NewHandler creates a new verification handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, service: NewService(db)}
}

// CreateRequest represents the request body for asking to join an
// organization and department. Either the id or the name of each is needed;
// the department alone is enough when its name is unique.
type CreateRequest struct {
	OrgID            *uint  `json:"org_id"`
	OrganizationName string `json:"organization_name" binding:"max=200"`
	DeptID           *uint  `json:"dept_id"`
	DepartmentName   string `json:"department_name" binding:"max=200"`
	Message          string `json:"message" binding:"max=1000"`
}

// ReviewRequest represents the request body for reviewing a request
type ReviewRequest struct {
	Decision Decision `json:"decision" binding:"required,oneof=approve reject"`
	Note     string   `json:"note" binding:"max=1000"`
}

// NoteRequest carries an optional review note
type NoteRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

// Create submits a verification request for the current user
// @Summary Request verification
// @Description Ask to become a verified member of an organization and department
// @Tags verifications
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Target organization and department"
// @Success 201 {object} models.Verification
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Organization or department not found"
// @Failure 409 {object} map[string]string "Already verified or request pending"
// @Security BearerAuth
// @Router /verifications [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	v, err := h.service.RequestVerification(c.Request.Context(), auth.GetPrincipal(c), Request{
		OrgID:    req.OrgID,
		OrgName:  req.OrganizationName,
		DeptID:   req.DeptID,
		DeptName: req.DepartmentName,
		Message:  req.Message,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

// ListMine lists the current user's verification requests
// @Summary List own verification requests
// @Tags verifications
// @Produce json
// @Success 200 {array} models.Verification
// @Security BearerAuth
// @Router /verifications/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListOwn(c.Request.Context(), auth.GetPrincipal(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// List lists the requests the current admin may review
// @Summary List reviewable verification requests
// @Tags verifications
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} models.Verification
// @Failure 403 {object} map[string]string "Admin access required"
// @Security BearerAuth
// @Router /verifications [get]
func (h *Handler) List(c *gin.Context) {
	status := models.VerificationStatus(c.Query("status"))
	switch status {
	case "", models.VerificationPending, models.VerificationApproved, models.VerificationRejected:
	default:
		apperr.Respond(c, apperr.Validation("Invalid status filter"))
		return
	}

	list, err := h.service.ListReviewable(c.Request.Context(), auth.GetPrincipal(c), status)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Review approves or rejects a pending request
// @Summary Review a verification request
// @Tags verifications
// @Accept json
// @Produce json
// @Param id path int true "Verification ID"
// @Param request body ReviewRequest true "Decision and note"
// @Success 200 {object} models.Verification
// @Failure 403 {object} map[string]string "No jurisdiction"
// @Failure 404 {object} map[string]string "Verification request not found"
// @Failure 409 {object} map[string]string "Already reviewed"
// @Security BearerAuth
// @Router /verifications/{id}/review [post]
func (h *Handler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}
	h.review(c, req.Decision, req.Note)
}

// Approve approves a pending request
// @Summary Approve a verification request
// @Tags verifications
// @Accept json
// @Produce json
// @Param id path int true "Verification ID"
// @Param request body NoteRequest false "Review note"
// @Success 200 {object} models.Verification
// @Security BearerAuth
// @Router /verifications/{id}/approve [put]
func (h *Handler) Approve(c *gin.Context) {
	h.reviewWithNote(c, Approve)
}

// Reject rejects a pending request
// @Summary Reject a verification request
// @Tags verifications
// @Accept json
// @Produce json
// @Param id path int true "Verification ID"
// @Param request body NoteRequest false "Review note"
// @Success 200 {object} models.Verification
// @Security BearerAuth
// @Router /verifications/{id}/reject [put]
func (h *Handler) Reject(c *gin.Context) {
	h.reviewWithNote(c, Reject)
}

func (h *Handler) reviewWithNote(c *gin.Context, decision Decision) {
	// The note is optional, so an empty body is not an error
	var req NoteRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			apperr.Respond(c, apperr.Validation(err.Error()))
			return
		}
	}
	h.review(c, decision, req.Note)
}

func (h *Handler) review(c *gin.Context, decision Decision, note string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Respond(c, apperr.Validation("Invalid verification ID"))
		return
	}

	v, err := h.service.Review(c.Request.Context(), auth.GetPrincipal(c), uint(id), decision, note)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// RegisterRoutes registers verification routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.AuthMiddleware(h.db))
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/mine", h.ListMine)
	rg.POST("/:id/review", h.Review)
	rg.PUT("/:id/approve", h.Approve)
	rg.PUT("/:id/reject", h.Reject)
}
