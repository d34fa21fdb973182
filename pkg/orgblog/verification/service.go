// Package verification implements membership requests: a user asks to join
// an organization and department, and an admin with jurisdiction approves or
// rejects the request.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SupersededNote is the review note set on pending requests that are closed
// because another request for the same user was approved.
const SupersededNote = "superseded by approved request"

// Request identifies the target of a verification request. An id takes
// precedence over a name; names match case-insensitively.
type Request struct {
	OrgID    *uint
	OrgName  string
	DeptID   *uint
	DeptName string
	Message  string
}

// Decision is a reviewer's verdict.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// Service runs the verification workflow against the store.
type Service struct {
	db *gorm.DB
}

// NewService creates a verification service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RequestVerification records a pending request for p to join the referenced
// organization and department.
func (s *Service) RequestVerification(ctx context.Context, p *policy.Principal, req Request) (*models.Verification, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	db := s.db.WithContext(ctx)

	org, err := resolveOrg(db, req)
	if err != nil {
		return nil, err
	}
	dept, err := resolveDept(db, req, org)
	if err != nil {
		return nil, err
	}
	if org == nil && dept != nil {
		org, err = findOrgByID(db, dept.OrgID)
		if err != nil {
			return nil, err
		}
	}
	if org == nil || dept == nil {
		return nil, apperr.Validation("Organization and department are required")
	}
	if dept.OrgID != org.ID {
		return nil, apperr.Conflict("Department does not belong to the organization")
	}

	var user models.User
	if err := db.First(&user, p.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	if user.Verified {
		return nil, apperr.Conflict("User is already verified")
	}

	var pending int64
	err = db.Model(&models.Verification{}).
		Where("user_id = ? AND org_id = ? AND dept_id = ? AND status = ?", user.ID, org.ID, dept.ID, models.VerificationPending).
		Count(&pending).Error
	if err != nil {
		return nil, apperr.Internal("Failed to create verification request", err)
	}
	if pending > 0 {
		return nil, errDuplicatePending
	}

	v := models.Verification{
		UserID:      user.ID,
		OrgID:       org.ID,
		DeptID:      dept.ID,
		Message:     strings.TrimSpace(req.Message),
		Status:      models.VerificationPending,
		RequestedAt: time.Now(),
	}
	if err := db.Create(&v).Error; err != nil {
		// A concurrent identical request won the partial unique index
		if database.IsUniqueViolation(err) {
			return nil, errDuplicatePending
		}
		return nil, apperr.Internal("Failed to create verification request", err)
	}

	logger.Get().WithFields(logrus.Fields{
		"verification_id": v.ID,
		"user_id":         user.ID,
		"org_id":          org.ID,
		"dept_id":         dept.ID,
	}).Info("verification requested")

	return &v, nil
}

var errDuplicatePending = apperr.Conflict("A pending verification request already exists")

func resolveOrg(db *gorm.DB, req Request) (*models.Organization, error) {
	if req.OrgID != nil {
		return findOrgByID(db, *req.OrgID)
	}
	name := strings.TrimSpace(req.OrgName)
	if name == "" {
		return nil, nil
	}
	var org models.Organization
	if err := db.Where("LOWER(name) = LOWER(?)", name).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Organization not found")
		}
		return nil, apperr.Internal("Failed to resolve organization", err)
	}
	return &org, nil
}

func findOrgByID(db *gorm.DB, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Organization not found")
		}
		return nil, apperr.Internal("Failed to resolve organization", err)
	}
	return &org, nil
}

// resolveDept finds the department by id, or by name within org when org is
// known. Without an org the name must be unique across organizations.
func resolveDept(db *gorm.DB, req Request, org *models.Organization) (*models.Department, error) {
	if req.DeptID != nil {
		var dept models.Department
		if err := db.First(&dept, *req.DeptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Department not found")
			}
			return nil, apperr.Internal("Failed to resolve department", err)
		}
		return &dept, nil
	}

	name := strings.TrimSpace(req.DeptName)
	if name == "" {
		return nil, nil
	}

	query := db.Where("LOWER(name) = LOWER(?)", name)
	if org != nil {
		query = query.Where("org_id = ?", org.ID)
	}
	var depts []models.Department
	if err := query.Limit(2).Find(&depts).Error; err != nil {
		return nil, apperr.Internal("Failed to resolve department", err)
	}
	switch len(depts) {
	case 0:
		return nil, apperr.NotFound("Department not found")
	case 1:
		return &depts[0], nil
	default:
		return nil, apperr.Validation("Department name is ambiguous, specify the organization")
	}
}

// Review applies decision to a pending request. Approval promotes the subject
// user into the requested organization and department and closes the user's
// other pending requests, all in one transaction.
func (s *Service) Review(ctx context.Context, p *policy.Principal, id uint, decision Decision, note string) (*models.Verification, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	if decision != Approve && decision != Reject {
		return nil, apperr.Validation("Decision must be approve or reject")
	}
	db := s.db.WithContext(ctx)

	var v models.Verification
	if err := db.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Verification request not found")
		}
		return nil, apperr.Internal("Failed to load verification request", err)
	}
	if !policy.CanReviewVerification(p, &v) {
		return nil, apperr.Forbidden("You cannot review this verification request")
	}
	if v.Status != models.VerificationPending {
		return nil, errAlreadyReviewed
	}

	status := models.VerificationRejected
	if decision == Approve {
		status = models.VerificationApproved
	}
	now := time.Now()
	reviewer := p.ID

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Verification{}).
			Where("id = ? AND status = ?", v.ID, models.VerificationPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": reviewer,
				"review_note": strings.TrimSpace(note),
				"reviewed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("update verification: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errAlreadyReviewed
		}

		if decision == Reject {
			return nil
		}
		return promote(tx, &v, reviewer, now)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal("Failed to review verification request", err)
	}

	if err := db.First(&v, v.ID).Error; err != nil {
		return nil, apperr.Internal("Failed to load verification request", err)
	}

	logger.Get().WithFields(logrus.Fields{
		"verification_id": v.ID,
		"reviewer_id":     reviewer,
		"status":          v.Status,
	}).Info("verification reviewed")

	return &v, nil
}

var errAlreadyReviewed = apperr.Conflict("Verification request has already been reviewed")

// promote makes the request's user a verified member of its org and dept.
func promote(tx *gorm.DB, v *models.Verification, reviewer uint, now time.Time) error {
	var user models.User
	if err := tx.First(&user, v.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found")
		}
		return fmt.Errorf("load user: %w", err)
	}
	if user.Verified {
		return apperr.Conflict("User is already verified")
	}

	var dept models.Department
	if err := tx.Where("id = ? AND org_id = ?", v.DeptID, v.OrgID).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Department not found")
		}
		return fmt.Errorf("load department: %w", err)
	}

	err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"verified": true,
		"org_id":   v.OrgID,
		"dept_id":  v.DeptID,
		"role":     gorm.Expr("CASE WHEN role = ? THEN ? ELSE role END", models.RoleGlobal, models.RoleVerified),
	}).Error
	if err != nil {
		return fmt.Errorf("promote user: %w", err)
	}

	err = tx.Model(&models.Verification{}).
		Where("user_id = ? AND status = ? AND id <> ?", user.ID, models.VerificationPending, v.ID).
		Updates(map[string]interface{}{
			"status":      models.VerificationRejected,
			"reviewed_by": reviewer,
			"review_note": SupersededNote,
			"reviewed_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("supersede pending requests: %w", err)
	}
	return nil
}

// ListOwn returns p's requests, newest first.
func (s *Service) ListOwn(ctx context.Context, p *policy.Principal) ([]models.Verification, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	var out []models.Verification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", p.ID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("Failed to list verification requests", err)
	}
	return out, nil
}

// ListReviewable returns the requests p has jurisdiction over, optionally
// filtered by status, oldest first.
func (s *Service) ListReviewable(ctx context.Context, p *policy.Principal, status models.VerificationStatus) ([]models.Verification, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}

	query := s.db.WithContext(ctx).Model(&models.Verification{}).Preload("User")
	switch {
	case policy.IsSuperAdmin(p):
	case p.Role == models.RoleOrgAdmin && p.OrgID != nil:
		query = query.Where("org_id = ?", *p.OrgID)
	case p.Role == models.RoleDeptAdmin && p.DeptID != nil:
		query = query.Where("dept_id = ?", *p.DeptID)
	default:
		return nil, apperr.Forbidden("Admin access required")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var out []models.Verification
	if err := query.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, apperr.Internal("Failed to list verification requests", err)
	}
	return out, nil
}
