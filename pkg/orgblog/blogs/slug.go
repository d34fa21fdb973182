package blogs

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"gorm.io/gorm"
)

const maxSlugBase = 80

// slugify turns a title into lowercase words joined by hyphens.
func slugify(title string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "post"
	}
	return s
}

// generateRandomString creates a random string of given length
func generateRandomString(length int, charset string) string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[r.Intn(len(charset))]
	}
	return string(b)
}

// slugTaken reports whether another blog already uses slug.
func slugTaken(db *gorm.DB, slug string, excludeID uint) (bool, error) {
	var count int64
	query := db.Model(&models.Blog{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// generateSlug derives a unique slug from the title with a random suffix
func generateSlug(db *gorm.DB, title string) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	base := slugify(title)

	for attempts := 0; attempts < 10; attempts++ {
		slug := base + "-" + generateRandomString(6, charset)
		taken, err := slugTaken(db, slug, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}

	// Fallback to a longer suffix if short ones keep colliding
	return base + "-" + generateRandomString(12, charset), nil
}

// deriveExcerpt returns the first 300 characters of content, cut at a rune
// boundary.
func deriveExcerpt(content string) string {
	const limit = 300
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
