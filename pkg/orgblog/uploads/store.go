// Package uploads stores user-supplied images and serves them back under
// stable relative URLs.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/uploads/"

// DefaultMaxBytes is the largest accepted file.
const DefaultMaxBytes int64 = 5 << 20

// Category groups files by what they illustrate.
type Category string

const (
	CategoryBlogs         Category = "blogs"
	CategoryAvatars       Category = "avatars"
	CategoryOrganizations Category = "organizations"
	CategoryDepartments   Category = "departments"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBlogs, CategoryAvatars, CategoryOrganizations, CategoryDepartments:
		return true
	}
	return false
}

// allowedTypes maps accepted MIME types to the extension files are stored with.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store saves and removes uploaded images.
type Store interface {
	// Save stores the content read from r and returns its URL.
	Save(category Category, r io.Reader) (string, error)
	// Delete removes the file behind url. Unknown or external URLs are
	// ignored.
	Delete(url string) error
}

// LocalStore keeps files on the local filesystem under Root/<category>/.
type LocalStore struct {
	Root     string
	MaxBytes int64
}

// NewLocalStore creates a store rooted at dir. A non-positive maxBytes uses
// DefaultMaxBytes.
func NewLocalStore(dir string, maxBytes int64) *LocalStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &LocalStore{Root: dir, MaxBytes: maxBytes}
}

// Save implements Store.
func (s *LocalStore) Save(category Category, r io.Reader) (string, error) {
	if !category.Valid() {
		return "", apperr.Validation("Invalid upload category")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", s.tooLarge()
		}
		return "", apperr.Validation("Failed to read upload")
	}
	if int64(len(data)) > s.MaxBytes {
		return "", s.tooLarge()
	}
	if len(data) == 0 {
		return "", apperr.Validation("File is empty")
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedTypes[mtype.String()]
	if !ok {
		return "", apperr.Validation("Only JPEG, PNG, GIF and WebP images are allowed")
	}

	dir := filepath.Join(s.Root, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Internal("Failed to store file", fmt.Errorf("create upload dir: %w", err))
	}

	name := uuid.NewString() + ext
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", apperr.Internal("Failed to store file", err)
	}

	return URLPrefix + string(category) + "/" + name, nil
}

func (s *LocalStore) tooLarge() error {
	return apperr.Validation(fmt.Sprintf("File exceeds the maximum size of %dMB", s.MaxBytes>>20))
}

// writeFile creates path exclusively so a name collision never overwrites
// an existing file.
func writeFile(p string, data []byte) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("write %s: %w", p, err)
	}
	return f.Close()
}

// Delete implements Store.
func (s *LocalStore) Delete(url string) error {
	category, name, ok := ParseURL(url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, string(category), name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", url, err)
	}
	return nil
}

// ParseURL splits a URL produced by Save into its category and file name.
func ParseURL(url string) (Category, string, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(url, URLPrefix)
	dir, name := path.Split(rest)
	category := Category(strings.TrimSuffix(dir, "/"))
	if !category.Valid() || name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", "", false
	}
	return category, name, true
}
