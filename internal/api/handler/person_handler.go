package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/service"
	"custody-tracker/pkg/response"
)

// PersonHandler persons and processes
type PersonHandler struct {
	personSvc service.PersonService
}

func NewPersonHandler(personSvc service.PersonService) *PersonHandler {
	return &PersonHandler{personSvc: personSvc}
}

// CreateFull person plus initial processes
// POST /api/v1/persons/full
func (h *PersonHandler) CreateFull(c *gin.Context) {
	var req dto.FullRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	person, err := h.personSvc.CreateFull(c.Request.Context(), &req)
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.Created(c, person)
}

// Create
// POST /api/v1/persons
func (h *PersonHandler) Create(c *gin.Context) {
	var req dto.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	person, err := h.personSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.Created(c, person)
}

// Search
// GET /api/v1/persons/search
func (h *PersonHandler) Search(c *gin.Context) {
	var req dto.PersonSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	persons, total, err := h.personSvc.Search(c.Request.Context(), &req)
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.OKPage(c, persons, total, req.Page, req.PageSize)
}

// Get person with processes and events
// GET /api/v1/persons/:id
func (h *PersonHandler) Get(c *gin.Context) {
	person, err := h.personSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.OK(c, person)
}

// Update
// PUT /api/v1/persons/:id
func (h *PersonHandler) Update(c *gin.Context) {
	var req dto.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	person, err := h.personSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.OK(c, person)
}

// Delete person with every process and event
// DELETE /api/v1/persons/:id
func (h *PersonHandler) Delete(c *gin.Context) {
	if err := h.personSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlePersonError(c, err)
		return
	}
	response.OK(c, nil)
}

// AddProcess
// POST /api/v1/persons/:id/processes
func (h *PersonHandler) AddProcess(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	process, err := h.personSvc.AddProcess(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.Created(c, process)
}

// UpdateProcess
// PUT /api/v1/processes/:id
func (h *PersonHandler) UpdateProcess(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	process, err := h.personSvc.UpdateProcess(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handlePersonError(c, err)
		return
	}
	response.OK(c, process)
}

func handlePersonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPersonNotFound):
		response.NotFound(c, 13001, "person not found")
	case errors.Is(err, service.ErrProcessNotFound):
		response.NotFound(c, 13002, "process not found")
	case errors.Is(err, service.ErrPersonCPFExists):
		response.Conflict(c, 13003, err.Error())
	case errors.Is(err, service.ErrInvalidPersonCPF):
		response.BadRequest(c, 13004, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13005, err.Error())
	default:
		response.InternalError(c)
	}
}
