package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	defaultSecret   = "orgblog-dev-secret-change-in-production"
	defaultTokenTTL = 7 * 24 * time.Hour
	issuer          = "orgblog"
)

var (
	settingsMu sync.RWMutex
	jwtSecret  = []byte(defaultSecret)
	tokenTTL   = defaultTokenTTL
)

// Claims represents the JWT claims. Role and affiliation are a hint only;
// the middleware re-checks them against the stored user.
type Claims struct {
	UserID   uint        `json:"user_id"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Verified bool        `json:"verified"`
	OrgID    *uint       `json:"org_id,omitempty"`
	DeptID   *uint       `json:"dept_id,omitempty"`
	jwt.RegisteredClaims
}

// Configure sets the signing secret and token lifetime. Empty or
// non-positive values keep the current setting.
func Configure(secret string, ttl time.Duration) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

func settings() ([]byte, time.Duration) {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return jwtSecret, tokenTTL
}

// GenerateToken creates a new JWT token for a user
func GenerateToken(user *models.User) (string, error) {
	secret, ttl := settings()
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		Verified: user.Verified,
		OrgID:    user.OrgID,
		DeptID:   user.DeptID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	secret, _ := settings()
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
