package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a PNG signature followed by an IHDR chunk header, enough for
// content sniffing.
func pngBytes() []byte {
	data := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	return append(data, bytes.Repeat([]byte{0}, 64)...)
}

func TestSaveStoresUnderCategory(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, 0)

	url, err := store.Save(CategoryBlogs, bytes.NewReader(pngBytes()))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/blogs/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	category, name, ok := ParseURL(url)
	require.True(t, ok)
	assert.Equal(t, CategoryBlogs, category)
	_, err = os.Stat(filepath.Join(root, "blogs", name))
	assert.NoError(t, err)
}

func TestSaveGeneratesDistinctNames(t *testing.T) {
	store := NewLocalStore(t.TempDir(), 0)

	a, err := store.Save(CategoryAvatars, bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	b, err := store.Save(CategoryAvatars, bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveRejections(t *testing.T) {
	store := NewLocalStore(t.TempDir(), 32)

	_, err := store.Save("videos", bytes.NewReader(pngBytes()))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "category: %v", err)

	_, err = store.Save(CategoryBlogs, strings.NewReader("just some text"))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "type: %v", err)

	_, err = store.Save(CategoryBlogs, bytes.NewReader(pngBytes()))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "size: %v", err)

	_, err = store.Save(CategoryBlogs, bytes.NewReader(nil))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "empty: %v", err)
}

func TestDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, 0)

	url, err := store.Save(CategoryDepartments, bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	require.NoError(t, store.Delete(url))

	_, name, _ := ParseURL(url)
	_, err = os.Stat(filepath.Join(root, "departments", name))
	assert.True(t, os.IsNotExist(err))

	// Deleting again, or deleting something we never stored, is a no-op
	assert.NoError(t, store.Delete(url))
	assert.NoError(t, store.Delete("https://cdn.example.com/a.png"))
	assert.NoError(t, store.Delete(""))
}

func TestParseURLRejectsTraversal(t *testing.T) {
	bad := []string{
		"/uploads/blogs/../../etc/passwd",
		"/uploads/../blogs/x.png",
		"/uploads/secrets/x.png",
		"/uploads/blogs/",
		"/uploads/blogs/.hidden",
		"/static/blogs/x.png",
	}
	for _, u := range bad {
		_, _, ok := ParseURL(u)
		assert.False(t, ok, u)
	}
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "image.png")
	require.NoError(t, err)
	part.Write(data)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := testutil.NewRouter()
	handler := NewHandler(db, NewLocalStore(t.TempDir(), 0), 0)
	handler.RegisterRoutes(router.Group("/uploads"))

	org := testutil.CreateOrg(t, db, "Stanford University")
	dept := testutil.CreateDept(t, db, org, "Computer Science")
	global := testutil.CreateUser(t, db, "g@x.com", models.RoleGlobal)
	member := testutil.CreateMember(t, db, "m@x.com", models.RoleVerified, dept)

	upload := func(category, token string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, "image", pngBytes())
		req, _ := http.NewRequest("POST", "/uploads/"+category, body)
		req.Header.Set("Content-Type", contentType)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	resp := upload("avatars", testutil.Token(t, global))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var out UploadResponse
	testutil.Decode(t, resp, &out)
	assert.True(t, strings.HasPrefix(out.URL, "/uploads/avatars/"))

	var record models.Upload
	require.NoError(t, db.Where("url = ?", out.URL).First(&record).Error)
	assert.Equal(t, global.ID, record.OwnerID)

	assert.Equal(t, http.StatusForbidden, upload("blogs", testutil.Token(t, global)).Code)
	assert.Equal(t, http.StatusCreated, upload("blogs", testutil.Token(t, member)).Code)
	assert.Equal(t, http.StatusForbidden, upload("organizations", testutil.Token(t, member)).Code)
	assert.Equal(t, http.StatusBadRequest, upload("videos", testutil.Token(t, member)).Code)
	assert.Equal(t, http.StatusUnauthorized, upload("avatars", "").Code)
}

func TestUploadHandlerRequiresFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := testutil.NewRouter()
	NewHandler(db, NewLocalStore(t.TempDir(), 0), 0).RegisterRoutes(router.Group("/uploads"))
	user := testutil.CreateUser(t, db, "g@x.com", models.RoleGlobal)

	body, contentType := multipartBody(t, "wrong-field", pngBytes())
	req, _ := http.NewRequest("POST", "/uploads/avatars", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com", models.RoleGlobal)
	other := testutil.CreateUser(t, db, "other@x.com", models.RoleGlobal)
	url := "/uploads/blogs/a.png"
	require.NoError(t, Record(db, owner.ID, url))

	assert.NoError(t, CheckOwned(db, owner.ID, url, "", "https://example.com/x.png"))

	err := CheckOwned(db, other.ID, url)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)

	err = CheckOwned(db, owner.ID, "/uploads/blogs/never-uploaded.png")
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)
}

func TestReleaseKeepsReferencedFiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	root := t.TempDir()
	store := NewLocalStore(root, 0)
	owner := testutil.CreateUser(t, db, "owner@x.com", models.RoleGlobal)

	avatar, err := store.Save(CategoryAvatars, bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	orphan, err := store.Save(CategoryBlogs, bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	require.NoError(t, Record(db, owner.ID, avatar))
	require.NoError(t, Record(db, owner.ID, orphan))
	require.NoError(t, db.Model(&owner).Update("avatar", avatar).Error)

	Release(db, store, avatar, orphan, orphan, "", "https://example.com/x.png")

	exists := func(url string) bool {
		category, name, ok := ParseURL(url)
		require.True(t, ok)
		_, err := os.Stat(filepath.Join(root, string(category), name))
		return err == nil
	}
	assert.True(t, exists(avatar), "referenced avatar must stay")
	assert.False(t, exists(orphan), "unreferenced file must go")

	var records int64
	db.Model(&models.Upload{}).Count(&records)
	assert.Equal(t, int64(1), records)

	// Once the user is gone the avatar is free to go too
	require.NoError(t, db.Delete(&owner).Error)
	Release(db, store, avatar)
	assert.False(t, exists(avatar))
}
