package uploads

import (
	"fmt"

	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

// imageColumns lists every column that may hold a stored-file URL.
var imageColumns = []struct {
	model  interface{}
	column string
}{
	{&models.Blog{}, "cover_image"},
	{&models.Organization{}, "logo"},
	{&models.Organization{}, "cover_image"},
	{&models.Department{}, "image"},
	{&models.User{}, "avatar"},
}

// Record stores ownerID as the uploader of url.
func Record(db *gorm.DB, ownerID uint, url string) error {
	if err := db.Create(&models.Upload{URL: url, OwnerID: ownerID}).Error; err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// CheckOwned returns a Forbidden error unless every stored-file URL in urls
// was uploaded by ownerID. Empty and external URLs are accepted.
func CheckOwned(db *gorm.DB, ownerID uint, urls ...string) error {
	for _, u := range urls {
		if _, _, ok := ParseURL(u); !ok {
			continue
		}
		var count int64
		if err := db.Model(&models.Upload{}).Where("url = ? AND owner_id = ?", u, ownerID).Count(&count).Error; err != nil {
			return apperr.Internal("Failed to check image ownership", err)
		}
		if count == 0 {
			return apperr.Forbidden("You can only use images you uploaded")
		}
	}
	return nil
}

// Referenced reports whether any blog, organization, department or live
// user still points at url.
func Referenced(db *gorm.DB, url string) (bool, error) {
	for _, ref := range imageColumns {
		var count int64
		if err := db.Model(ref.model).Where(ref.column+" = ?", url).Count(&count).Error; err != nil {
			return false, fmt.Errorf("count %s references: %w", ref.column, err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Release removes the files behind urls that nothing references any more,
// together with their upload records. It runs after the rows that dropped
// the references have been written, when a failure can no longer be
// reported to the caller, so failures are logged.
func Release(db *gorm.DB, store Store, urls ...string) {
	if store == nil {
		return
	}
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		if _, _, ok := ParseURL(u); !ok {
			continue
		}

		log := logger.Get().WithField("url", u)
		inUse, err := Referenced(db, u)
		if err != nil {
			log.WithError(err).Warn("failed to check upload references")
			continue
		}
		if inUse {
			continue
		}
		if err := store.Delete(u); err != nil {
			log.WithError(err).Warn("failed to remove upload")
			continue
		}
		if err := db.Where("url = ?", u).Delete(&models.Upload{}).Error; err != nil {
			log.WithError(err).Warn("failed to remove upload record")
		}
	}
}
