package admin

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/stats"
	"github.com/mikepea/orgblog/pkg/orgblog/testutil"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T) (*gorm.DB, *gin.Engine, models.User) {
	db := testutil.SetupTestDB(t)
	r := testutil.NewRouter()
	NewHandler(db, nil).RegisterRoutes(r.Group("/admin"))
	super := testutil.CreateUser(t, db, "root@x.com", models.RoleSuperAdmin)
	return db, r, super
}

func TestAdminRoutesRequireSuperAdmin(t *testing.T) {
	db, r, _ := setupTestRouter(t)
	org := testutil.CreateOrg(t, db, "Stanford University")
	orgAdmin := testutil.CreateMember(t, db, "admin@stanford.edu", models.RoleOrgAdmin, testutil.CreateDept(t, db, org, "CS"))

	resp := testutil.DoJSON(r, "GET", "/admin/users", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
	resp = testutil.DoJSON(r, "GET", "/admin/users", nil, testutil.Token(t, orgAdmin))
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestListUsers(t *testing.T) {
	db, r, super := setupTestRouter(t)
	org := testutil.CreateOrg(t, db, "Stanford University")
	testutil.CreateMember(t, db, "alice@stanford.edu", models.RoleVerified, testutil.CreateDept(t, db, org, "CS"))
	testutil.CreateUser(t, db, "bob@x.com", models.RoleGlobal)
	token := testutil.Token(t, super)

	resp := testutil.DoJSON(r, "GET", "/admin/users", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var users []UserResponse
	testutil.Decode(t, resp, &users)
	if len(users) != 3 {
		t.Errorf("Expected 3 users, got %d", len(users))
	}

	resp = testutil.DoJSON(r, "GET", "/admin/users?q=ALICE", nil, token)
	testutil.Decode(t, resp, &users)
	if len(users) != 1 || users[0].Email != "alice@stanford.edu" {
		t.Errorf("Expected search to find alice, got %+v", users)
	}

	resp = testutil.DoJSON(r, "GET", "/admin/users?role=global", nil, token)
	testutil.Decode(t, resp, &users)
	if len(users) != 1 || users[0].Email != "bob@x.com" {
		t.Errorf("Expected role filter to find bob, got %+v", users)
	}

	resp = testutil.DoJSON(r, "GET", "/admin/users?role=owner", nil, token)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestGetUser(t *testing.T) {
	db, r, super := setupTestRouter(t)
	bob := testutil.CreateUser(t, db, "bob@x.com", models.RoleGlobal)

	resp := testutil.DoJSON(r, "GET", fmt.Sprintf("/admin/users/%d", bob.ID), nil, testutil.Token(t, super))
	var got UserResponse
	testutil.Decode(t, resp, &got)
	if got.ID != bob.ID || got.Role != models.RoleGlobal {
		t.Errorf("Unexpected user: %+v", got)
	}

	resp = testutil.DoJSON(r, "GET", "/admin/users/999", nil, testutil.Token(t, super))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestSetRoleKeepsInvariants(t *testing.T) {
	db, r, super := setupTestRouter(t)
	org := testutil.CreateOrg(t, db, "Stanford University")
	member := testutil.CreateMember(t, db, "m@stanford.edu", models.RoleOrgAdmin, testutil.CreateDept(t, db, org, "CS"))
	db.Model(&models.Organization{}).Where("id = ?", org.ID).Update("admin_id", member.ID)
	bob := testutil.CreateUser(t, db, "bob@x.com", models.RoleGlobal)
	token := testutil.Token(t, super)

	deptAdmin := models.RoleDeptAdmin
	resp := testutil.DoJSON(r, "PUT", fmt.Sprintf("/admin/users/%d", bob.ID), UpdateUserRequest{Role: &deptAdmin}, token)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected unverified promotion to conflict, got %d", resp.Code)
	}

	resp = testutil.DoJSON(r, "PUT", fmt.Sprintf("/admin/users/%d", member.ID), UpdateUserRequest{Role: &deptAdmin}, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var stored models.Organization
	db.First(&stored, org.ID)
	if stored.AdminID != nil {
		t.Error("Expected organization admin to be cleared after demotion")
	}

	global := models.RoleGlobal
	resp = testutil.DoJSON(r, "PUT", fmt.Sprintf("/admin/users/%d", member.ID), UpdateUserRequest{Role: &global}, token)
	var got UserResponse
	testutil.Decode(t, resp, &got)
	if got.Role != models.RoleGlobal || got.Verified || got.OrgID != nil || got.DeptID != nil {
		t.Errorf("Expected detached global user, got %+v", got)
	}

	superRole := models.RoleSuperAdmin
	resp = testutil.DoJSON(r, "PUT", fmt.Sprintf("/admin/users/%d", bob.ID), UpdateUserRequest{Role: &superRole}, token)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected promotion to super admin, got %d", resp.Code)
	}

	bogus := models.Role("owner")
	resp = testutil.DoJSON(r, "PUT", fmt.Sprintf("/admin/users/%d", bob.ID), UpdateUserRequest{Role: &bogus}, token)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown role, got %d", resp.Code)
	}

	resp = testutil.DoJSON(r, "PUT", fmt.Sprintf("/admin/users/%d", super.ID), UpdateUserRequest{Role: &global}, token)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected self demotion to be rejected, got %d", resp.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	db, r, super := setupTestRouter(t)
	org := testutil.CreateOrg(t, db, "Stanford University")
	dept := testutil.CreateDept(t, db, org, "CS")
	author := testutil.CreateMember(t, db, "a@stanford.edu", models.RoleVerified, dept)
	fan := testutil.CreateMember(t, db, "f@stanford.edu", models.RoleVerified, dept)

	own := models.Blog{Title: "Mine", Content: "body", AuthorID: fan.ID, OrgID: org.ID, DeptID: dept.ID}
	db.Omit("Author", "Tags").Create(&own)
	other := models.Blog{Title: "Theirs", Content: "body", AuthorID: author.ID, OrgID: org.ID, DeptID: dept.ID, LikesCount: 1, CommentsCount: 2}
	db.Omit("Author", "Tags").Create(&other)
	db.Create(&models.Like{BlogID: other.ID, UserID: fan.ID})
	db.Create(&models.Comment{BlogID: other.ID, UserID: fan.ID, Text: "one"})
	db.Create(&models.Comment{BlogID: other.ID, UserID: fan.ID, Text: "two"})

	resp := testutil.DoJSON(r, "DELETE", fmt.Sprintf("/admin/users/%d", super.ID), nil, testutil.Token(t, super))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected self delete to be rejected, got %d", resp.Code)
	}

	resp = testutil.DoJSON(r, "DELETE", fmt.Sprintf("/admin/users/%d", fan.ID), nil, testutil.Token(t, super))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var remaining models.Blog
	db.First(&remaining, other.ID)
	if remaining.LikesCount != 0 || remaining.CommentsCount != 0 {
		t.Errorf("Expected counters released, got likes=%d comments=%d", remaining.LikesCount, remaining.CommentsCount)
	}
	var blogs int64
	db.Model(&models.Blog{}).Count(&blogs)
	if blogs != 1 {
		t.Errorf("Expected deleted user's blog to be removed, got %d blogs", blogs)
	}
	var count int64
	db.Model(&models.User{}).Where("id = ?", fan.ID).Count(&count)
	if count != 0 {
		t.Error("Expected user to be deleted")
	}
}

func TestGetStats(t *testing.T) {
	db, r, super := setupTestRouter(t)
	org := testutil.CreateOrg(t, db, "Stanford University")
	testutil.CreateMember(t, db, "m@stanford.edu", models.RoleVerified, testutil.CreateDept(t, db, org, "CS"))

	resp := testutil.DoJSON(r, "GET", "/admin/stats", nil, testutil.Token(t, super))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var p stats.Platform
	testutil.Decode(t, resp, &p)
	if p.Users != 2 || p.VerifiedUsers != 1 || p.Organizations != 1 || p.Departments != 1 {
		t.Errorf("Unexpected stats: %+v", p)
	}
}
