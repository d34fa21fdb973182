package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a user's platform-wide role. Roles form a total order, see Level.
type Role string

const (
	RoleGlobal     Role = "global"
	RoleVerified   Role = "verified"
	RoleDeptAdmin  Role = "dept_admin"
	RoleOrgAdmin   Role = "org_admin"
	RoleSuperAdmin Role = "super_admin"
)

// RoleHierarchy maps each role to its rank. Higher ranks include the
// privileges of lower ones for "at least" checks.
var RoleHierarchy = map[Role]int{
	RoleGlobal:     0,
	RoleVerified:   1,
	RoleDeptAdmin:  2,
	RoleOrgAdmin:   3,
	RoleSuperAdmin: 4,
}

// Roles lists every role from lowest to highest.
var Roles = []Role{RoleGlobal, RoleVerified, RoleDeptAdmin, RoleOrgAdmin, RoleSuperAdmin}

// Level returns the rank of the role, or -1 for an unknown role.
func (r Role) Level() int {
	if lvl, ok := RoleHierarchy[r]; ok {
		return lvl
	}
	return -1
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Level() >= 0
}

// User represents a user in the system.
// A verified user belongs to exactly one organization and one department.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // stored lowercase
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;index" json:"role"`
	Verified     bool           `gorm:"not null" json:"verified"`
	OrgID        *uint          `gorm:"index" json:"org_id"`
	DeptID       *uint          `gorm:"index" json:"dept_id"`
	Bio          string         `gorm:"size:500" json:"bio"`
	Avatar       string         `json:"avatar"`
	LastLogin    *time.Time     `json:"last_login"`
}

// Detach clears the user's affiliation. Admin roles collapse back to global;
// a super admin keeps its role.
func (u *User) Detach() {
	u.Verified = false
	u.OrgID = nil
	u.DeptID = nil
	if u.Role != RoleSuperAdmin {
		u.Role = RoleGlobal
	}
}

// DetachUpdates is the column set Detach produces, for bulk updates.
func DetachUpdates() map[string]interface{} {
	return map[string]interface{}{
		"verified": false,
		"org_id":   nil,
		"dept_id":  nil,
		"role":     gorm.Expr("CASE WHEN role = ? THEN role ELSE ? END", RoleSuperAdmin, RoleGlobal),
	}
}
