// Package policy decides who may act on which resource.
//
// Every check is a pure function of a principal and the resources involved.
// A nil principal is an anonymous caller and never passes a check; Decide
// turns that case into Unauthenticated rather than Forbidden.
//
// Two kinds of primitive exist. Hierarchy checks (RoleAtLeast) let a higher
// role pass checks written for a lower one. Jurisdiction checks
// (IsOrgAdminOf, IsDeptAdminOf) require an exact role and an exact tenant,
// so an admin of one organization never passes a check scoped to another.
package policy

import "github.com/mikepea/orgblog/pkg/orgblog/models"

// Principal is the authenticated actor of a request, resolved from the live
// user record.
type Principal struct {
	ID       uint
	Email    string
	Role     models.Role
	Verified bool
	OrgID    *uint
	DeptID   *uint
}

// FromUser builds a principal from a stored user.
func FromUser(u *models.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Verified: u.Verified,
		OrgID:    u.OrgID,
		DeptID:   u.DeptID,
	}
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Allowed reports whether the decision lets the action proceed.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Decide combines principal presence with the result of a check.
func Decide(p *Principal, allowed bool) Decision {
	if p == nil {
		return Unauthenticated
	}
	if !allowed {
		return Forbidden
	}
	return Allow
}

// RoleAtLeast reports whether p's role ranks at or above min.
func RoleAtLeast(p *Principal, min models.Role) bool {
	if p == nil || !p.Role.Valid() || !min.Valid() {
		return false
	}
	return p.Role.Level() >= min.Level()
}

// RoleIn reports whether p's role is exactly one of roles, ignoring rank.
func RoleIn(p *Principal, roles ...models.Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether p is a platform super admin.
func IsSuperAdmin(p *Principal) bool {
	return RoleIn(p, models.RoleSuperAdmin)
}

// IsVerifiedMember reports whether p is verified into an organization and
// department.
func IsVerifiedMember(p *Principal) bool {
	return p != nil && p.Verified && p.OrgID != nil && p.DeptID != nil
}

// IsOrgAdminOf reports whether p is an org_admin of exactly orgID.
func IsOrgAdminOf(p *Principal, orgID uint) bool {
	return p != nil && p.Role == models.RoleOrgAdmin && p.OrgID != nil && *p.OrgID == orgID
}

// IsDeptAdminOf reports whether p is a dept_admin of exactly deptID.
func IsDeptAdminOf(p *Principal, deptID uint) bool {
	return p != nil && p.Role == models.RoleDeptAdmin && p.DeptID != nil && *p.DeptID == deptID
}

// CanPost reports whether p may author blogs and comments.
func CanPost(p *Principal) bool {
	return RoleAtLeast(p, models.RoleVerified) && IsVerifiedMember(p)
}

// CanModerateBlog reports whether p has admin jurisdiction over the blog's
// department or organization.
func CanModerateBlog(p *Principal, blog *models.Blog) bool {
	if p == nil || blog == nil {
		return false
	}
	return IsDeptAdminOf(p, blog.DeptID) || IsOrgAdminOf(p, blog.OrgID) || IsSuperAdmin(p)
}

// CanEditBlog reports whether p may update or delete the blog: its author or
// an admin with jurisdiction.
func CanEditBlog(p *Principal, blog *models.Blog) bool {
	if p == nil || blog == nil {
		return false
	}
	return p.ID == blog.AuthorID || CanModerateBlog(p, blog)
}

// CanDeleteComment reports whether p may delete the comment on blog: its
// author or an admin with jurisdiction over the blog.
func CanDeleteComment(p *Principal, comment *models.Comment, blog *models.Blog) bool {
	if p == nil || comment == nil || blog == nil {
		return false
	}
	return p.ID == comment.UserID || CanModerateBlog(p, blog)
}

// CanEditComment reports whether p may change the comment's text. Only the
// author may.
func CanEditComment(p *Principal, comment *models.Comment) bool {
	return p != nil && comment != nil && p.ID == comment.UserID
}

// CanManageOrganization reports whether p may update or administer orgID.
func CanManageOrganization(p *Principal, orgID uint) bool {
	return IsOrgAdminOf(p, orgID) || IsSuperAdmin(p)
}

// CanManageDepartment reports whether p may update the department.
func CanManageDepartment(p *Principal, dept *models.Department) bool {
	if p == nil || dept == nil {
		return false
	}
	return IsDeptAdminOf(p, dept.ID) || CanManageOrganization(p, dept.OrgID)
}

// CanReviewVerification reports whether p has jurisdiction over the
// requested organization or department.
func CanReviewVerification(p *Principal, v *models.Verification) bool {
	if p == nil || v == nil {
		return false
	}
	return IsOrgAdminOf(p, v.OrgID) || IsDeptAdminOf(p, v.DeptID) || IsSuperAdmin(p)
}

// CanViewBlog reports whether p may read the blog. Published blogs are
// public; drafts are visible to those who can edit them.
func CanViewBlog(p *Principal, blog *models.Blog) bool {
	if blog == nil {
		return false
	}
	return blog.Published || CanEditBlog(p, blog)
}
