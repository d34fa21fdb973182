package models

import "time"

// OrgStats is a cached snapshot of an organization's counts.
// It is recomputed on demand and may lag behind the underlying rows.
type OrgStats struct {
	DepartmentsCount int64 `gorm:"not null;default:0" json:"departments_count"`
	BlogsCount       int64 `gorm:"not null;default:0" json:"blogs_count"`
	MembersCount     int64 `gorm:"not null;default:0" json:"members_count"`
}

// Organization is the top-level tenant. It owns departments, and through
// them, members and their blogs.
type Organization struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Name            string     `gorm:"uniqueIndex;not null" json:"name"`
	About           string     `json:"about"`
	Logo            string     `json:"logo"`
	CoverImage      string     `json:"cover_image"`
	Website         string     `json:"website"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	AdminID         *uint      `gorm:"index" json:"admin_id"` // primary contact admin
	CommentsEnabled bool       `gorm:"not null" json:"comments_enabled"`
	Active          bool       `gorm:"not null" json:"active"`
	Stats           OrgStats   `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	StatsUpdatedAt  *time.Time `json:"stats_updated_at,omitempty"`
}

// DeptStats is a cached snapshot of a department's counts.
type DeptStats struct {
	BlogsCount   int64 `gorm:"not null;default:0" json:"blogs_count"`
	MembersCount int64 `gorm:"not null;default:0" json:"members_count"`
}

// Department is a subdivision of exactly one organization.
// Its admins are derived from users with role dept_admin and a matching DeptID.
type Department struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	OrgID          uint       `gorm:"not null;uniqueIndex:idx_dept_org_name" json:"org_id"`
	Name           string     `gorm:"not null;uniqueIndex:idx_dept_org_name" json:"name"`
	Description    string     `json:"description"`
	Image          string     `json:"image"`
	Active         bool       `gorm:"not null" json:"active"`
	Stats          DeptStats  `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	StatsUpdatedAt *time.Time `json:"stats_updated_at,omitempty"`
}
