package middleware

import (
	"net/http"
	"strings"

	"github.com/alimranakash/visor-selection-api/internal/auth"
	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards the settings and cache-management routes. It
// expects an "Authorization: Bearer <token>" header carrying a valid admin JWT
// and stores the subject on the context for the handlers.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be 'Bearer <token>'"})
			return
		}

		subject, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("adminSubject", subject)
		c.Next()
	}
}
