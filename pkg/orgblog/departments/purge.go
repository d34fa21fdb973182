package departments

import (
	"fmt"

	"github.com/mikepea/orgblog/pkg/orgblog/blogs"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

// Purge deletes the departments with the given ids along with their blogs
// and verification requests. Their members are detached and become
// unverified global users; a super admin keeps its role. An organization
// whose primary admin was detached loses its AdminID.
//
// It returns the image URLs of the deleted blogs and departments. Callers
// pass them to uploads.Release once tx commits.
func Purge(tx *gorm.DB, deptIDs []uint) ([]string, error) {
	if len(deptIDs) == 0 {
		return nil, nil
	}

	var blogIDs []uint
	if err := tx.Model(&models.Blog{}).Where("dept_id IN ?", deptIDs).Pluck("id", &blogIDs).Error; err != nil {
		return nil, fmt.Errorf("collect blogs: %w", err)
	}
	images, err := blogs.Purge(tx, blogIDs)
	if err != nil {
		return nil, err
	}

	if err := tx.Where("dept_id IN ?", deptIDs).Delete(&models.Verification{}).Error; err != nil {
		return nil, fmt.Errorf("delete verifications: %w", err)
	}

	members := tx.Unscoped().Model(&models.User{}).Select("id").Where("dept_id IN ?", deptIDs)
	if err := tx.Model(&models.Organization{}).Where("admin_id IN (?)", members).
		Update("admin_id", nil).Error; err != nil {
		return nil, fmt.Errorf("clear organization admin: %w", err)
	}
	if err := tx.Unscoped().Model(&models.User{}).Where("dept_id IN ?", deptIDs).
		Updates(models.DetachUpdates()).Error; err != nil {
		return nil, fmt.Errorf("detach members: %w", err)
	}

	var deptImages []string
	if err := tx.Model(&models.Department{}).Where("id IN ? AND image <> ''", deptIDs).Pluck("image", &deptImages).Error; err != nil {
		return nil, fmt.Errorf("collect department images: %w", err)
	}
	if err := tx.Where("id IN ?", deptIDs).Delete(&models.Department{}).Error; err != nil {
		return nil, fmt.Errorf("delete departments: %w", err)
	}

	return append(images, deptImages...), nil
}
