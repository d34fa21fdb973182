package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/validation"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.MustRegister()
	r := gin.New()
	handler := NewHandler(db)
	auth := r.Group("/auth")
	handler.RegisterRoutes(auth)
	return r
}

func doJSON(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
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

func register(t *testing.T, router *gin.Engine, email string) AuthResponse {
	resp := doJSON(router, "POST", "/auth/register", RegisterRequest{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("Register failed: %d %s", resp.Code, resp.Body.String())
	}
	var out AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &out)
	return out
}

func errorMessage(resp *httptest.ResponseRecorder) string {
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	return body["error"]
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == password {
		t.Error("Hash should not equal plain password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword should return true for correct password")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword should return false for incorrect password")
	}
}

func TestJWTToken(t *testing.T) {
	orgID, deptID := uint(3), uint(7)
	user := &models.User{ID: 1, Email: "test@example.com", Role: models.RoleVerified, Verified: true, OrgID: &orgID, DeptID: &deptID}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("Expected UserID 1, got %d", claims.UserID)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", claims.Email)
	}
	if claims.Role != models.RoleVerified || !claims.Verified {
		t.Errorf("Expected verified role claims, got %s/%v", claims.Role, claims.Verified)
	}
	if claims.OrgID == nil || *claims.OrgID != 3 || claims.DeptID == nil || *claims.DeptID != 7 {
		t.Errorf("Expected affiliation claims 3/7, got %v/%v", claims.OrgID, claims.DeptID)
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != 7*24*time.Hour {
		t.Errorf("Expected 7 day lifetime, got %v", lifetime)
	}
}

func TestInvalidToken(t *testing.T) {
	if _, err := ValidateToken("invalid-token"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	secret, _ := settings()
	claims := &Claims{
		UserID: 1,
		Role:   models.RoleGlobal,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Issuer:    issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))

	if _, err := ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	response := register(t, router, "Test@Example.com")

	if response.Token == "" {
		t.Error("Expected token in response")
	}
	if response.User.Email != "test@example.com" {
		t.Errorf("Expected lowercased email, got %s", response.User.Email)
	}
	if response.User.Role != models.RoleGlobal || response.User.Verified {
		t.Errorf("Expected new user to be global and unverified, got %s/%v", response.User.Role, response.User.Verified)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	register(t, router, "test@example.com")

	// Email comparison is case-insensitive
	resp := doJSON(router, "POST", "/auth/register", RegisterRequest{
		Email:    "TEST@example.com",
		Password: "password123",
		Name:     "Other User",
	}, "")

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	cases := []RegisterRequest{
		{Email: "not-an-email", Password: "password123", Name: "A"},
		{Email: "a@x.com", Password: "short", Name: "A"},
		{Email: "a@x.com", Password: "password123", Name: "   "},
	}
	for _, body := range cases {
		resp := doJSON(router, "POST", "/auth/register", body, "")
		if resp.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %+v, got %d", body, resp.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	register(t, router, "test@example.com")

	resp := doJSON(router, "POST", "/auth/login", LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}, "")

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.Token == "" {
		t.Error("Expected token in response")
	}

	var user models.User
	db.Where("email = ?", "test@example.com").First(&user)
	if user.LastLogin == nil {
		t.Error("Expected last_login to be set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	register(t, router, "test@example.com")

	resp := doJSON(router, "POST", "/auth/login", LoginRequest{
		Email:    "test@example.com",
		Password: "wrongpassword",
	}, "")

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestMe(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	authResponse := register(t, router, "test@example.com")

	resp := doJSON(router, "GET", "/auth/me", nil, authResponse.Token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var userResponse UserResponse
	json.Unmarshal(resp.Body.Bytes(), &userResponse)

	if userResponse.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", userResponse.Email)
	}
}

func TestMeWithoutAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "GET", "/auth/me", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
	if msg := errorMessage(resp); msg != "Authorization header required" {
		t.Errorf("Expected missing header message, got %q", msg)
	}

	resp = doJSON(router, "GET", "/auth/me", nil, "garbage")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
	if msg := errorMessage(resp); msg != "Invalid token" {
		t.Errorf("Expected invalid token message, got %q", msg)
	}
}

func TestStaleRoleTokenRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	authResponse := register(t, router, "test@example.com")

	// Promote the user after the token was issued
	db.Model(&models.User{}).Where("id = ?", authResponse.User.ID).Update("role", models.RoleSuperAdmin)

	resp := doJSON(router, "GET", "/auth/me", nil, authResponse.Token)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for stale role, got %d", resp.Code)
	}
	if msg := errorMessage(resp); msg != "Role changed, please log in again" {
		t.Errorf("Unexpected message %q", msg)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	authResponse := register(t, router, "test@example.com")

	bio := "Writes about compilers"
	resp := doJSON(router, "PUT", "/auth/me", UpdateProfileRequest{Bio: &bio}, authResponse.Token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var userResponse UserResponse
	json.Unmarshal(resp.Body.Bytes(), &userResponse)
	if userResponse.Bio != bio {
		t.Errorf("Expected bio %q, got %q", bio, userResponse.Bio)
	}
	if userResponse.Name != "Test User" {
		t.Errorf("Expected name to be unchanged, got %q", userResponse.Name)
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	authResponse := register(t, router, "test@example.com")

	resp := doJSON(router, "PUT", "/auth/password", ChangePasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "newpassword123",
	}, authResponse.Token)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for wrong current password, got %d", resp.Code)
	}

	resp = doJSON(router, "PUT", "/auth/password", ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword123",
	}, authResponse.Token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "POST", "/auth/login", LoginRequest{Email: "test@example.com", Password: "newpassword123"}, "")
	if resp.Code != http.StatusOK {
		t.Errorf("Expected login with new password to succeed, got %d", resp.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	authResponse := register(t, router, "test@example.com")

	router.GET("/whoami", OptionalAuth(db), func(c *gin.Context) {
		if p := GetPrincipal(c); p != nil {
			c.JSON(http.StatusOK, gin.H{"id": p.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": 0})
	})

	resp := doJSON(router, "GET", "/whoami", nil, "")
	if resp.Code != http.StatusOK || resp.Body.String() != `{"id":0}` {
		t.Errorf("Expected anonymous request to pass, got %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "GET", "/whoami", nil, authResponse.Token)
	var body map[string]uint
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["id"] != authResponse.User.ID {
		t.Errorf("Expected principal %d, got %v", authResponse.User.ID, body["id"])
	}

	resp = doJSON(router, "GET", "/whoami", nil, "garbage")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected bad credential to be rejected, got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	authResponse := register(t, router, "test@example.com")

	router.GET("/admin-only", AuthMiddleware(db), RequireRole(models.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	resp := doJSON(router, "GET", "/admin-only", nil, authResponse.Token)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}
