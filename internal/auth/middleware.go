package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal"
)

const userContextKey = "user"

func AuthMiddleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			user, err := provider.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set(userContextKey, user)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != internal.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *internal.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*internal.User)
	if !ok {
		return nil
	}
	return user
}
