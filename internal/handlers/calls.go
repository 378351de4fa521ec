package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmarkun/editaisparticipativos/internal/middleware"
	"github.com/pmarkun/editaisparticipativos/internal/services/calls"
)

type CallsHandler struct {
	calls *calls.Calls
}

func NewCallsHandler(callsService *calls.Calls) *CallsHandler {
	return &CallsHandler{calls: callsService}
}

func (h *CallsHandler) GetCalls(c *gin.Context) {
	list, err := h.calls.ListCalls(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"calls": list})
}

func (h *CallsHandler) GetCall(c *gin.Context) {
	call, err := h.calls.CallBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, call)
}

func (h *CallsHandler) CreateCall(c *gin.Context) {
	var req calls.CallInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	call, err := h.calls.CreateCall(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, call)
}

func (h *CallsHandler) UpdateCall(c *gin.Context) {
	var req calls.CallInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	call, err := h.calls.UpdateCall(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, call)
}

func (h *CallsHandler) GetProjects(c *gin.Context) {
	call, err := h.calls.CallBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	projects, err := h.calls.ListProjects(c.Request.Context(), call.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"call": call, "projects": projects})
}

func (h *CallsHandler) GetProject(c *gin.Context) {
	p, err := h.calls.ProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *CallsHandler) SubmitProject(c *gin.Context) {
	var req calls.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	call, err := h.calls.CallBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.calls.SubmitProject(c.Request.Context(), call.ID, c.GetString(middleware.SubmitterIDKey), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *CallsHandler) UpdateProject(c *gin.Context) {
	var req calls.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	p, err := h.calls.UpdateProject(c.Request.Context(), c.Param("id"), c.GetString(middleware.SubmitterIDKey), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
