package blogs

import (
	"fmt"

	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

// Purge deletes the blogs with the given ids together with their comments,
// likes and tag links, and returns their cover images. Callers pass the
// images to uploads.Release once the transaction commits.
func Purge(tx *gorm.DB, ids []uint) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var covers []string
	if err := tx.Model(&models.Blog{}).Where("id IN ? AND cover_image <> ''", ids).Pluck("cover_image", &covers).Error; err != nil {
		return nil, fmt.Errorf("collect cover images: %w", err)
	}

	if err := tx.Where("blog_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return nil, fmt.Errorf("delete comments: %w", err)
	}
	if err := tx.Where("blog_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
		return nil, fmt.Errorf("delete likes: %w", err)
	}
	if err := tx.Exec("DELETE FROM blog_tags WHERE blog_id IN ?", ids).Error; err != nil {
		return nil, fmt.Errorf("delete tag links: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.Blog{}).Error; err != nil {
		return nil, fmt.Errorf("delete blogs: %w", err)
	}
	return covers, nil
}
