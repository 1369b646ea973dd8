package handler

import (
	"net/http"

	"skillhub/internal/logging"
	"skillhub/internal/model"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	service service.ProgressService
	log     logging.Logger
}

func NewProgressHandler(s service.ProgressService, log logging.Logger) *ProgressHandler {
	return &ProgressHandler{service: s, log: log}
}

func (h *ProgressHandler) CompleteModule(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req model.CompleteModuleRequest
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}

	status, err := h.service.Complete(c.Request.Context(), userID, req.ModuleID, *req.IsPassed)
	if err != nil {
		internalError(c, h.log, "record module completion failed", err)
		return
	}
	respond(c, http.StatusCreated, "Module completion recorded successfully", status)
}

func (h *ProgressHandler) ListModules(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	statuses, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		internalError(c, h.log, "list completed modules failed", err)
		return
	}
	respond(c, http.StatusOK, "Completed modules retrieved successfully", statuses)
}

func (h *ProgressHandler) RegisterProgressRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	progress := rg.Group("/progress", authMW)
	{
		progress.POST("/modules", h.CompleteModule)
		progress.GET("/modules", h.ListModules)
	}
}
