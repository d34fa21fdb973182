package models

import "time"

// Blog is a post authored by a verified member. DeptID and OrgID are copied
// from the author's affiliation at creation time and never re-derived.
type Blog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Excerpt       string    `gorm:"size:300" json:"excerpt"`
	CoverImage    string    `json:"cover_image"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	DeptID        uint      `gorm:"not null;index" json:"dept_id"`
	OrgID         uint      `gorm:"not null;index" json:"org_id"`
	LikesCount    int64     `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64     `gorm:"not null;default:0" json:"comments_count"`
	ViewsCount    int64     `gorm:"not null;default:0" json:"views_count"`
	Published     bool      `gorm:"not null;index" json:"published"`
	Slug          *string   `gorm:"uniqueIndex" json:"slug,omitempty"`
	Featured      bool      `gorm:"not null" json:"featured"`
	Pinned        bool      `gorm:"not null" json:"pinned"`

	// Relationships
	Author User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags   []Tag `gorm:"many2many:blog_tags;" json:"tags,omitempty"`
}

// Tag is a lowercase label that can be applied to blogs.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`

	// Relationships
	Blogs []Blog `gorm:"many2many:blog_tags;" json:"blogs,omitempty"`
}

// TagNames returns the names of the blog's loaded tags.
func (b *Blog) TagNames() []string {
	names := make([]string, len(b.Tags))
	for i, t := range b.Tags {
		names[i] = t.Name
	}
	return names
}

// Comment belongs to exactly one blog and one user.
type Comment struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Text      string     `gorm:"size:500;not null" json:"text"`
	BlogID    uint       `gorm:"not null;index" json:"blog_id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Edited    bool       `gorm:"not null" json:"edited"`
	EditedAt  *time.Time `json:"edited_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Like marks that a user liked a blog. At most one row exists per pair.
type Like struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_like_blog_user" json:"blog_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_blog_user;index" json:"user_id"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
