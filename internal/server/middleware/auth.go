package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authservice "user-management-api/internal/auth/service"
)

const bearerPrefix = "bearer "

// Verifier resolves an access token to the caller's identity. Implemented by
// the auth service.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*authservice.Identity, error)
}

// Authenticate validates the Bearer token on every request whose path is not
// public, and stores the resolved identity on the request context. Public
// paths skip authentication entirely; login and refresh must work without a
// live session.
func Authenticate(verifier Verifier, publicPrefixes []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				c.Next()
				return
			}
		}

		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		ident, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		ctx := WithIdentity(c.Request.Context(),
			ident.Account.ID, ident.Session.ID, string(ident.Account.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractBearer returns the token from an Authorization header value, or ""
// if missing or malformed. The scheme check is case-insensitive.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) <= len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
