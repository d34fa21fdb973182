package tags

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxTagLength is the longest tag name accepted.
const MaxTagLength = 50

// Normalize lowercases and trims names, drops empties and duplicates, and
// returns them sorted.
func Normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the tags named by names, creating the missing ones.
// names must already be normalized.
func Resolve(tx *gorm.DB, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	rows := make([]models.Tag, len(names))
	for i, n := range names {
		rows[i] = models.Tag{Name: n}
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("create tags: %w", err)
	}

	var found []models.Tag
	if err := tx.Where("name IN ?", names).Order("name").Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return found, nil
}
