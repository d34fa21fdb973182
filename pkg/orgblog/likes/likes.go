// Package likes keeps the set of (blog, user) like pairs and the cached
// likes counter on each blog.
package likes

import (
	"context"
	"fmt"

	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status is the like state of a blog for one user.
type Status struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// Toggle flips whether userID likes blogID in one transaction and returns the
// new state. The pair is removed if present; otherwise it is inserted, and a
// concurrent insert of the same pair is absorbed by the unique index. The
// counter moves only when a row was actually removed or inserted.
func Toggle(ctx context.Context, db *gorm.DB, blogID, userID uint) (Status, error) {
	var st Status
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return fmt.Errorf("remove like: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&models.Blog{}).Where("id = ? AND likes_count > 0", blogID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error; err != nil {
				return fmt.Errorf("decrement likes: %w", err)
			}
			st.Liked = false
		} else {
			like := models.Like{BlogID: blogID, UserID: userID}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("User").Create(&like)
			if res.Error != nil {
				return fmt.Errorf("insert like: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				if err := tx.Model(&models.Blog{}).Where("id = ?", blogID).
					UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
					return fmt.Errorf("increment likes: %w", err)
				}
			}
			st.Liked = true
		}

		return tx.Model(&models.Blog{}).Where("id = ?", blogID).Pluck("likes_count", &st.LikesCount).Error
	})
	return st, err
}

// Get reports whether userID likes blogID. A zero userID is an anonymous
// caller, who never likes anything.
func Get(ctx context.Context, db *gorm.DB, blogID, userID uint) (Status, error) {
	var st Status
	db = db.WithContext(ctx)
	if err := db.Model(&models.Blog{}).Where("id = ?", blogID).Pluck("likes_count", &st.LikesCount).Error; err != nil {
		return st, fmt.Errorf("load likes count: %w", err)
	}
	if userID == 0 {
		return st, nil
	}
	var count int64
	if err := db.Model(&models.Like{}).Where("blog_id = ? AND user_id = ?", blogID, userID).Count(&count).Error; err != nil {
		return st, fmt.Errorf("check like: %w", err)
	}
	st.Liked = count > 0
	return st, nil
}

// Likers returns the likes of blogID with their users, newest first.
func Likers(ctx context.Context, db *gorm.DB, blogID uint, limit, offset int) ([]models.Like, error) {
	var list []models.Like
	err := db.WithContext(ctx).Preload("User").
		Where("blog_id = ?", blogID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list likers: %w", err)
	}
	return list, nil
}
