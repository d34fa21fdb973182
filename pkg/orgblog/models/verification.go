package models

import "time"

// VerificationStatus is the state of a membership request.
// pending moves to approved or rejected; both are terminal.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Verification is a user's request to join an organization and department.
// The partial unique index allows only one pending request per
// (user, org, dept) triple.
type Verification struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	UserID      uint               `gorm:"not null;index;uniqueIndex:idx_pending_verification,where:status = 'pending'" json:"user_id"`
	OrgID       uint               `gorm:"not null;index;uniqueIndex:idx_pending_verification,where:status = 'pending'" json:"org_id"`
	DeptID      uint               `gorm:"not null;index;uniqueIndex:idx_pending_verification,where:status = 'pending'" json:"dept_id"`
	Message     string             `gorm:"size:1000" json:"message"`
	Status      VerificationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReviewedBy  *uint              `json:"reviewed_by"`
	ReviewNote  string             `gorm:"size:1000" json:"review_note"`
	ReviewedAt  *time.Time         `json:"reviewed_at"`
	RequestedAt time.Time          `gorm:"not null" json:"requested_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
