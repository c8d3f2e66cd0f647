package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/service"
	"custody-tracker/pkg/response"
)

// EventHandler process events
type EventHandler struct {
	eventSvc service.EventService
}

func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// Create
// POST /api/v1/processes/:id/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := h.eventSvc.Create(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.Created(c, event)
}

// Update
// PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := h.eventSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OK(c, event)
}

// Delete
// DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleEventError(c, err)
		return
	}
	response.OK(c, nil)
}

// UpdateStatus caller transition fired → resolved
// PATCH /api/v1/events/:id/status
func (h *EventHandler) UpdateStatus(c *gin.Context) {
	var req dto.EventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := h.eventSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OK(c, event)
}

func handleEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 14001, "event not found")
	case errors.Is(err, service.ErrProcessNotFound):
		response.NotFound(c, 13002, "process not found")
	case errors.Is(err, service.ErrInvalidCategory):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 14003, err.Error())
	default:
		response.InternalError(c)
	}
}
