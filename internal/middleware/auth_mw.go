package middleware

import (
	"errors"
	"net/http"
	"strings"

	"skillhub/internal/logging"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey  = "authUser"
	AuthRoleKey  = "authRole"
	AuthTokenKey = "authToken"
)

const (
	msgTokenMissing = "Token missing or not parsed."
	msgTokenExpired = "Token has expired. Please login again."
	msgTokenInvalid = "Invalid token."
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": false, "message": message})
}

// AuthMiddleware authenticates the bearer token and stores the caller's identity in the context
func AuthMiddleware(tokens service.TokenService, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		identity, err := tokens.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenMissing):
				abort(c, http.StatusUnauthorized, msgTokenMissing)
			case errors.Is(err, service.ErrTokenExpired):
				abort(c, http.StatusUnauthorized, msgTokenExpired)
			case errors.Is(err, service.ErrTokenInvalid):
				abort(c, http.StatusUnauthorized, msgTokenInvalid)
			default:
				log.Error(c.Request.Context(), "token authentication failed", "error", err)
				abort(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		// Set user information in context
		c.Set(AuthUserKey, identity.UserID)
		c.Set(AuthRoleKey, identity.Role)
		c.Set(AuthTokenKey, token)

		c.Next()
	}
}
