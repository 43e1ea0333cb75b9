package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shoutout/internal/domain/model"
	pkgAuth "github.com/polkiloo/shoutout/internal/pkg/auth"
)

const (
	// IdentityContextKey is a gin context key for the authenticated caller.
	IdentityContextKey = "identity"
	authCookieName     = "shoutout_token"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(token string) (model.Identity, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		identity, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// RoleRequired rejects callers whose role is not listed. It must run after AuthRequired.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !slices.Contains(roles, identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed for role " + string(identity.Role)})
			return
		}
		c.Next()
	}
}

// Identity returns the caller stored by AuthRequired.
func Identity(c *gin.Context) (model.Identity, bool) {
	val, ok := c.Get(IdentityContextKey)
	if !ok {
		return model.Identity{}, false
	}
	identity, ok := val.(model.Identity)
	return identity, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
