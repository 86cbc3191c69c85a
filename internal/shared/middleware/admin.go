package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/shared/response"
)

// AdminMiddleware checks the role set by AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			response.Fail(c, http.StatusForbidden, "access denied: admin role required")
			c.Abort()
			return
		}

		role, ok := roleValue.(string)
		if !ok || role != "admin" {
			response.Fail(c, http.StatusForbidden, "access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
