package models

import "time"

// Upload records who stored a file. Only the owner may attach the URL to a
// blog, organization or department.
type Upload struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `gorm:"size:500;not null;uniqueIndex" json:"url"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
}
