package handler

import (
	"errors"
	"net/http"
	"strconv"

	"skillhub/internal/logging"
	"skillhub/internal/middleware"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Something went wrong, please try again later."

func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"status": status < http.StatusBadRequest, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": false, "message": message})
}

func validationFailed(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"status":  false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

// internalError logs err with the request context and answers with a generic 500.
func internalError(c *gin.Context, log logging.Logger, msg string, err error) {
	log.Error(c.Request.Context(), msg, "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	fail(c, http.StatusInternalServerError, msgInternal)
}

// handleValidation writes a 422 when err is a *service.ValidationError and reports whether it did.
func handleValidation(c *gin.Context, err error) bool {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		validationFailed(c, verr.Fields)
		return true
	}
	return false
}

// Helper to get authenticated user ID from context
func getAuthUserID(c *gin.Context) (int, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(int)
	if !ok {
		return 0, errors.New("invalid user ID type in context")
	}
	return userID, nil
}

// Helper to get the authenticated identity from context
func getIdentity(c *gin.Context) (*service.Identity, error) {
	userID, err := getAuthUserID(c)
	if err != nil {
		return nil, err
	}
	role, ok := c.Get(middleware.AuthRoleKey)
	if !ok {
		return nil, errors.New("user role not found in context")
	}
	roleStr, ok := role.(string)
	if !ok {
		return nil, errors.New("invalid user role type in context")
	}
	return &service.Identity{UserID: userID, Role: roleStr}, nil
}

// mustUserID writes a 401 and returns false when the auth middleware did not run.
func mustUserID(c *gin.Context) (int, bool) {
	userID, err := getAuthUserID(c)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Token missing or not parsed.")
		return 0, false
	}
	return userID, true
}

func mustIdentity(c *gin.Context) (*service.Identity, bool) {
	identity, err := getIdentity(c)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Token missing or not parsed.")
		return nil, false
	}
	return identity, true
}

// idParam parses a positive integer path parameter, answering 404 when it is malformed.
func idParam(c *gin.Context, name, notFound string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, notFound)
		return 0, false
	}
	return id, true
}
