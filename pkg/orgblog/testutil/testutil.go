// Package testutil holds fixtures shared by the handler test suites.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/validation"
	"gorm.io/gorm"
)

// SetupTestDB opens a migrated in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewRouter returns a test-mode engine with the custom validators installed.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.MustRegister()
	return gin.New()
}

// CreateOrg inserts an active organization with comments enabled.
func CreateOrg(t *testing.T, db *gorm.DB, name string) models.Organization {
	t.Helper()
	org := models.Organization{Name: name, CommentsEnabled: true, Active: true}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("Failed to create organization: %v", err)
	}
	return org
}

// CreateDept inserts an active department in org.
func CreateDept(t *testing.T, db *gorm.DB, org models.Organization, name string) models.Department {
	t.Helper()
	dept := models.Department{Name: name, OrgID: org.ID, Active: true}
	if err := db.Create(&dept).Error; err != nil {
		t.Fatalf("Failed to create department: %v", err)
	}
	return dept
}

// CreateUser inserts an unaffiliated user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{Email: email, Name: email, PasswordHash: hash, Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateMember inserts a verified user affiliated with dept.
func CreateMember(t *testing.T, db *gorm.DB, email string, role models.Role, dept models.Department) models.User {
	t.Helper()
	user := CreateUser(t, db, email, role)
	orgID, deptID := dept.OrgID, dept.ID
	user.Verified = true
	user.OrgID = &orgID
	user.DeptID = &deptID
	if err := db.Save(&user).Error; err != nil {
		t.Fatalf("Failed to affiliate user: %v", err)
	}
	return user
}

// CreateUpload records owner as the uploader of url.
func CreateUpload(t *testing.T, db *gorm.DB, owner models.User, url string) {
	t.Helper()
	if err := db.Create(&models.Upload{URL: url, OwnerID: owner.ID}).Error; err != nil {
		t.Fatalf("Failed to record upload: %v", err)
	}
}

// Token issues a bearer token for user.
func Token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(&user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// DoJSON performs a request with an optional JSON body and bearer token.
func DoJSON(router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// Decode unmarshals the response body into v.
func Decode(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", resp.Body.String(), err)
	}
}

// ErrorMessage returns the "error" field of a JSON error body.
func ErrorMessage(resp *httptest.ResponseRecorder) string {
	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	msg, _ := body["error"].(string)
	return msg
}
