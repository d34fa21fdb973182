package tags

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/testutil"
	"gorm.io/gorm"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" Go ", "research", "GO", "", "  ", "ai"})
	want := []string{"ai", "go", "research"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}

	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestResolveCreatesMissingTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.Create(&models.Tag{Name: "go"})

	found, err := Resolve(db, []string{"go", "rust"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(found) != 2 || found[0].Name != "go" || found[1].Name != "rust" {
		t.Errorf("Expected go and rust, got %+v", found)
	}

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 stored tags, got %d", count)
	}
}

func createBlog(t *testing.T, db *gorm.DB, author models.User, published bool, names ...string) {
	t.Helper()
	resolved, err := Resolve(db, Normalize(names))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	blog := models.Blog{
		Title:     "Tagged post",
		Content:   "body",
		AuthorID:  author.ID,
		OrgID:     *author.OrgID,
		DeptID:    *author.DeptID,
		Published: published,
		Tags:      resolved,
	}
	if err := db.Omit("Author").Create(&blog).Error; err != nil {
		t.Fatalf("Failed to create blog: %v", err)
	}
}

func TestListCountsPublishedBlogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := testutil.NewRouter()
	NewHandler(db).RegisterRoutes(router.Group(""))

	stanford := testutil.CreateOrg(t, db, "Stanford University")
	mit := testutil.CreateOrg(t, db, "MIT")
	a := testutil.CreateMember(t, db, "a@stanford.edu", models.RoleVerified, testutil.CreateDept(t, db, stanford, "CS"))
	b := testutil.CreateMember(t, db, "b@mit.edu", models.RoleVerified, testutil.CreateDept(t, db, mit, "CS"))

	createBlog(t, db, a, true, "go", "ai")
	createBlog(t, db, a, true, "go")
	createBlog(t, db, b, true, "ai")
	createBlog(t, db, b, true, "ai")
	createBlog(t, db, a, false, "draft-only")

	resp := testutil.DoJSON(router, "GET", "/tags", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var tags []TagResponse
	testutil.Decode(t, resp, &tags)
	if len(tags) != 2 {
		t.Fatalf("Expected 2 tags, got %+v", tags)
	}
	if tags[0].Name != "ai" || tags[0].BlogCount != 3 || tags[1].Name != "go" || tags[1].BlogCount != 2 {
		t.Errorf("Unexpected ordering or counts: %+v", tags)
	}

	resp = testutil.DoJSON(router, "GET", fmt.Sprintf("/tags?org_id=%d", stanford.ID), nil, "")
	testutil.Decode(t, resp, &tags)
	if len(tags) != 2 || tags[0].Name != "go" || tags[0].BlogCount != 2 {
		t.Errorf("Expected org filter to favor go, got %+v", tags)
	}

	resp = testutil.DoJSON(router, "GET", "/tags?limit=1", nil, "")
	testutil.Decode(t, resp, &tags)
	if len(tags) != 1 {
		t.Errorf("Expected 1 tag, got %d", len(tags))
	}

	resp = testutil.DoJSON(router, "GET", "/tags?org_id=x", nil, "")
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestListEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := testutil.NewRouter()
	NewHandler(db).RegisterRoutes(router.Group(""))

	resp := testutil.DoJSON(router, "GET", "/tags", nil, "")
	if body := resp.Body.String(); body != "[]" {
		t.Errorf("Expected empty array, got %s", body)
	}
}
