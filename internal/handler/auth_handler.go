package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"skillhub/internal/logging"
	"skillhub/internal/middleware"
	"skillhub/internal/model"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// AuthHandler handles authentication, profile and password recovery requests
type AuthHandler struct {
	service service.AuthService
	log     logging.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log logging.Logger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		if handleValidation(c, err) {
			return
		}
		internalError(c, h.log, "registration failed", err)
		return
	}
	respond(c, http.StatusCreated, "User Created Successfully", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		internalError(c, h.log, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "User logged in successfully",
		"token":   token,
		"user":    user.Profile(),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.AuthTokenKey)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.log.Error(c.Request.Context(), "logout failed", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to logout, please try again")
		return
	}
	respond(c, http.StatusOK, "User logged out successfully", nil)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
		validationFailed(c, bindingErrors(err))
		return
	}
	// an explicit null clears the date of birth, an absent key leaves it alone
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err == nil {
		if v, ok := raw["date_of_birth"]; ok && string(v) == "null" {
			req.ClearDateOfBirth = true
		}
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if handleValidation(c, err) {
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "User not found.")
			return
		}
		internalError(c, h.log, "profile update failed", err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user.Profile())
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}

	err := h.service.ForgotPassword(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "OTP sent to your email.", nil)
	case handleValidation(c, err):
	case errors.Is(err, service.ErrOTPAlreadyActive):
		fail(c, http.StatusConflict, "OTP already sent. Please wait until it expires.")
	case errors.Is(err, service.ErrDeliveryFailed):
		fail(c, http.StatusInternalServerError, "Failed to send OTP email.")
	default:
		internalError(c, h.log, "forgot password failed", err)
	}
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}

	err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "OTP verified successfully", nil)
	case handleValidation(c, err):
	case errors.Is(err, service.ErrOTPInvalid):
		fail(c, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, service.ErrOTPExpired):
		fail(c, http.StatusBadRequest, "OTP expired")
	default:
		internalError(c, h.log, "otp verification failed", err)
	}
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}

	err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "Password reset successful", nil)
	case handleValidation(c, err):
	case errors.Is(err, service.ErrResetNotVerified):
		fail(c, http.StatusForbidden, "OTP verification required")
	default:
		internalError(c, h.log, "password reset failed", err)
	}
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "User not found.")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), identity, id)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "User retrieved successfully.", user.Profile())
	case errors.Is(err, service.ErrForbidden):
		fail(c, http.StatusForbidden, "You do not have permission to access this resource")
	case errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, "User not found.")
	default:
		internalError(c, h.log, "get user failed", err)
	}
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list users failed", err)
		return
	}
	profiles := make([]model.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	respond(c, http.StatusOK, "Users retrieved successfully.", profiles)
}

func methodNotAllowed(c *gin.Context) {
	fail(c, http.StatusMethodNotAllowed, "Method not allowed.")
}

// RegisterAuthRoutes registers auth and user routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			authGroup.Handle(method, "/forgot-password", methodNotAllowed)
		}
		authGroup.POST("/verify-otp", h.VerifyOTP)
		authGroup.POST("/reset-password", h.ResetPassword)

		authGroup.POST("/logout", authMW, h.Logout)
		authGroup.POST("/profile", authMW, h.UpdateProfile)
		authGroup.PUT("/profile", authMW, h.UpdateProfile)
	}

	usersGroup := rg.Group("/users")
	usersGroup.Use(authMW)
	{
		usersGroup.GET("", adminMW, h.ListUsers)
		usersGroup.GET("/:id", h.GetUser) // Service layer restricts to self or admin
	}
}
