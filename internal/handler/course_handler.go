package handler

import (
	"errors"
	"net/http"

	"skillhub/internal/logging"
	"skillhub/internal/model"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
)

const msgCourseNotFound = "Course not found."

// CourseHandler serves the course shop and purchases
type CourseHandler struct {
	service service.CourseService
	log     logging.Logger
}

func NewCourseHandler(s service.CourseService, log logging.Logger) *CourseHandler {
	return &CourseHandler{service: s, log: log}
}

func (h *CourseHandler) courseError(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, service.ErrNotFound) {
		fail(c, http.StatusNotFound, msgCourseNotFound)
		return
	}
	internalError(c, h.log, logMsg, err)
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list courses failed", err)
		return
	}
	respond(c, http.StatusOK, "Courses fetched successfully", courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id", msgCourseNotFound)
	if !ok {
		return
	}
	course, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.courseError(c, err, "get course failed")
		return
	}
	respond(c, http.StatusOK, "Course fetched successfully.", course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CourseRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		internalError(c, h.log, "create course failed", err)
		return
	}
	respond(c, http.StatusCreated, "Course created successfully.", course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", msgCourseNotFound)
	if !ok {
		return
	}
	var req model.CourseRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}
	course, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.courseError(c, err, "update course failed")
		return
	}
	respond(c, http.StatusOK, "Course updated successfully.", course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", msgCourseNotFound)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.courseError(c, err, "delete course failed")
		return
	}
	respond(c, http.StatusOK, "Course deleted successfully.", nil)
}

func (h *CourseHandler) Buy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", msgCourseNotFound)
	if !ok {
		return
	}

	err := h.service.Buy(c.Request.Context(), userID, id)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "Course bought successfully", nil)
	case errors.Is(err, service.ErrAlreadyExists):
		fail(c, http.StatusConflict, "Course already bought")
	default:
		h.courseError(c, err, "buy course failed")
	}
}

func (h *CourseHandler) Purchases(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "id", "User not found")
	if !ok {
		return
	}

	purchased, err := h.service.Purchases(c.Request.Context(), identity, userID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": true, "user_id": userID, "purchased_courses": purchased})
	case errors.Is(err, service.ErrForbidden):
		fail(c, http.StatusForbidden, "You do not have permission to access this resource")
	case errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, "User not found")
	default:
		internalError(c, h.log, "list purchases failed", err)
	}
}

// RegisterCourseRoutes registers course and purchase routes
func (h *CourseHandler) RegisterCourseRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	courses := rg.Group("/courses", authMW)
	{
		courses.GET("", h.List)
		courses.GET("/:id", h.Get)
		courses.POST("", adminMW, h.Create)
		courses.PUT("/:id", adminMW, h.Update)
		courses.DELETE("/:id", adminMW, h.Delete)
		courses.POST("/:id/buy", h.Buy)
	}

	rg.GET("/users/:id/purchases", authMW, h.Purchases) // Service layer restricts to self or admin
}
