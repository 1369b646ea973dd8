package middleware

import (
	"net/http"
	"slices"

	"skillhub/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			abort(c, http.StatusForbidden, "Role not found in token")
			return
		}

		userRole, ok := roleVal.(string)
		if !ok {
			abort(c, http.StatusForbidden, "Invalid role type in token")
			return
		}

		if !slices.Contains(allowedRoles, userRole) {
			abort(c, http.StatusForbidden, "You do not have permission to access this resource")
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}
