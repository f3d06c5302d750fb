package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-management-api/internal/account/domain"
)

// RequireAdmin allows only callers with the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := GetRole(c.Request.Context())
		if role != string(domain.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdminOrSelf allows admins, plus callers whose account id matches the
// named route parameter.
func RequireAdminOrSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := GetRole(c.Request.Context())
		if role == string(domain.RoleAdmin) {
			c.Next()
			return
		}
		accountID, _ := GetAccountID(c.Request.Context())
		if accountID != "" && accountID == c.Param(param) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
