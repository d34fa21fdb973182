package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"gorm.io/gorm"
)

const (
	// ContextKeyPrincipal is the key for the resolved principal in gin context
	ContextKeyPrincipal = "principal"
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
)

var errNoCredential = apperr.Unauthenticated("Authorization header required")

// resolvePrincipal turns the Authorization header into a principal backed by
// the live user record.
func resolvePrincipal(c *gin.Context, db *gorm.DB) (*policy.Principal, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errNoCredential
	}

	// Expect "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, apperr.Unauthenticated("Invalid authorization header format")
	}

	claims, err := ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperr.Unauthenticated("Token has expired")
		}
		return nil, apperr.Unauthenticated("Invalid token")
	}

	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("Invalid token")
		}
		return nil, apperr.Internal("Failed to resolve user", err)
	}

	if user.Role != claims.Role {
		return nil, apperr.Unauthenticated("Role changed, please log in again")
	}

	return policy.FromUser(&user), nil
}

func setPrincipal(c *gin.Context, p *policy.Principal) {
	c.Set(ContextKeyPrincipal, p)
	c.Set(ContextKeyUserID, p.ID)
}

// AuthMiddleware requires a valid token and sets the principal in context
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolvePrincipal(c, db)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth sets the principal when a credential is present. Requests
// without an Authorization header continue anonymously; a bad credential is
// still rejected.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolvePrincipal(c, db)
		if err == errNoCredential {
			c.Next()
			return
		}
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// RequireRole checks that the principal ranks at least min
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if err := Check(p, policy.RoleAtLeast(p, min), "Insufficient permissions"); err != nil {
			apperr.Abort(c, err)
			return
		}
		c.Next()
	}
}

// RequireVerified checks that the principal is a verified member
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if err := Check(p, policy.IsVerifiedMember(p), "Verified membership required"); err != nil {
			apperr.Abort(c, err)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal from the gin context, or nil for an
// anonymous request.
func GetPrincipal(c *gin.Context) *policy.Principal {
	v, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, _ := v.(*policy.Principal)
	return p
}

// GetUserID returns the user ID from the gin context
func GetUserID(c *gin.Context) (uint, bool) {
	p := GetPrincipal(c)
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

// Check maps a policy decision onto an error. forbidden is the message used
// when a principal is present but not allowed.
func Check(p *policy.Principal, allowed bool, forbidden string) error {
	switch policy.Decide(p, allowed) {
	case policy.Unauthenticated:
		return apperr.Unauthenticated("Authentication required")
	case policy.Forbidden:
		return apperr.Forbidden(forbidden)
	default:
		return nil
	}
}
