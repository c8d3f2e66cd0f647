package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/lookup"
	"custody-tracker/internal/service"
	"custody-tracker/pkg/response"
)

// LookupHandler external registry lookups
type LookupHandler struct {
	lookupSvc service.LookupService
}

func NewLookupHandler(lookupSvc service.LookupService) *LookupHandler {
	return &LookupHandler{lookupSvc: lookupSvc}
}

// Process
// POST /api/v1/lookups/processes
func (h *LookupHandler) Process(c *gin.Context) {
	var req dto.ProcessLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.lookupSvc.Process(c.Request.Context(), &req)
	if err != nil {
		handleLookupError(c, err)
		return
	}
	response.OK(c, result)
}

// CPF
// POST /api/v1/lookups/cpf
func (h *LookupHandler) CPF(c *gin.Context) {
	var req dto.CPFLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.lookupSvc.CPF(c.Request.Context(), &req)
	if err != nil {
		handleLookupError(c, err)
		return
	}
	response.OK(c, result)
}

func handleLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lookup.ErrInvalidProcessNumber):
		response.BadRequest(c, 16001, err.Error())
	case errors.Is(err, lookup.ErrInvalidCPF):
		response.BadRequest(c, 16002, err.Error())
	case errors.Is(err, lookup.ErrUnknownSource):
		response.BadRequest(c, 16003, err.Error())
	case errors.Is(err, service.ErrLookupUnavailable):
		response.ServiceUnavailable(c, 16004, err.Error())
	default:
		response.InternalError(c)
	}
}
