// Package stats recomputes the cached counters on organizations and
// departments. Recomputation is pull-based: callers run it when the stats
// are requested, so snapshots may lag behind writes in between.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

// Platform holds system-wide counts.
type Platform struct {
	Users                int64 `json:"users"`
	VerifiedUsers        int64 `json:"verified_users"`
	Organizations        int64 `json:"organizations"`
	Departments          int64 `json:"departments"`
	Blogs                int64 `json:"blogs"`
	PublishedBlogs       int64 `json:"published_blogs"`
	Comments             int64 `json:"comments"`
	Likes                int64 `json:"likes"`
	PendingVerifications int64 `json:"pending_verifications"`
}

// RecomputeOrganization counts the organization's departments, blogs and
// verified members and stores the snapshot.
func RecomputeOrganization(ctx context.Context, db *gorm.DB, orgID uint) (*models.Organization, error) {
	db = db.WithContext(ctx)

	var org models.Organization
	if err := db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Organization not found")
		}
		return nil, apperr.Internal("Failed to load organization", err)
	}

	var s models.OrgStats
	if err := db.Model(&models.Department{}).Where("org_id = ?", orgID).Count(&s.DepartmentsCount).Error; err != nil {
		return nil, apperr.Internal("Failed to compute organization stats", err)
	}
	if err := db.Model(&models.Blog{}).Where("org_id = ?", orgID).Count(&s.BlogsCount).Error; err != nil {
		return nil, apperr.Internal("Failed to compute organization stats", err)
	}
	if err := db.Model(&models.User{}).Where("org_id = ? AND verified = ?", orgID, true).Count(&s.MembersCount).Error; err != nil {
		return nil, apperr.Internal("Failed to compute organization stats", err)
	}

	now := time.Now()
	err := db.Model(&org).Updates(map[string]interface{}{
		"stats_departments_count": s.DepartmentsCount,
		"stats_blogs_count":       s.BlogsCount,
		"stats_members_count":     s.MembersCount,
		"stats_updated_at":        now,
	}).Error
	if err != nil {
		return nil, apperr.Internal("Failed to store organization stats", err)
	}

	org.Stats = s
	org.StatsUpdatedAt = &now
	return &org, nil
}

// RecomputeDepartment counts the department's blogs and verified members
// and stores the snapshot.
func RecomputeDepartment(ctx context.Context, db *gorm.DB, deptID uint) (*models.Department, error) {
	db = db.WithContext(ctx)

	var dept models.Department
	if err := db.First(&dept, deptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Department not found")
		}
		return nil, apperr.Internal("Failed to load department", err)
	}

	var s models.DeptStats
	if err := db.Model(&models.Blog{}).Where("dept_id = ?", deptID).Count(&s.BlogsCount).Error; err != nil {
		return nil, apperr.Internal("Failed to compute department stats", err)
	}
	if err := db.Model(&models.User{}).Where("dept_id = ? AND verified = ?", deptID, true).Count(&s.MembersCount).Error; err != nil {
		return nil, apperr.Internal("Failed to compute department stats", err)
	}

	now := time.Now()
	err := db.Model(&dept).Updates(map[string]interface{}{
		"stats_blogs_count":   s.BlogsCount,
		"stats_members_count": s.MembersCount,
		"stats_updated_at":    now,
	}).Error
	if err != nil {
		return nil, apperr.Internal("Failed to store department stats", err)
	}

	dept.Stats = s
	dept.StatsUpdatedAt = &now
	return &dept, nil
}

// ComputePlatform counts rows across the whole system.
func ComputePlatform(ctx context.Context, db *gorm.DB) (*Platform, error) {
	db = db.WithContext(ctx)
	var p Platform

	counts := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"users", db.Model(&models.User{}), &p.Users},
		{"verified users", db.Model(&models.User{}).Where("verified = ?", true), &p.VerifiedUsers},
		{"organizations", db.Model(&models.Organization{}), &p.Organizations},
		{"departments", db.Model(&models.Department{}), &p.Departments},
		{"blogs", db.Model(&models.Blog{}), &p.Blogs},
		{"published blogs", db.Model(&models.Blog{}).Where("published = ?", true), &p.PublishedBlogs},
		{"comments", db.Model(&models.Comment{}), &p.Comments},
		{"likes", db.Model(&models.Like{}), &p.Likes},
		{"pending verifications", db.Model(&models.Verification{}).Where("status = ?", models.VerificationPending), &p.PendingVerifications},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperr.Internal("Failed to compute platform stats", fmt.Errorf("count %s: %w", c.name, err))
		}
	}
	return &p, nil
}
