package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/service"
	"custody-tracker/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// AlertHandler alert query surface and trigger
type AlertHandler struct {
	alertSvc service.AlertService
}

func NewAlertHandler(alertSvc service.AlertService) *AlertHandler {
	return &AlertHandler{alertSvc: alertSvc}
}

// Upcoming pending or fired events after now
// GET /api/v1/alerts/upcoming?limit=
func (h *AlertHandler) Upcoming(c *gin.Context) {
	var req dto.UpcomingAlertsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	items, err := h.alertSvc.Upcoming(c.Request.Context(), &req)
	if err != nil {
		handleAlertError(c, err)
		return
	}
	response.OK(c, items)
}

// Active fired events after now, with totals mirrored in headers
// GET /api/v1/alerts/active?offset=&limit=
func (h *AlertHandler) Active(c *gin.Context) {
	var req dto.ActiveAlertsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.alertSvc.Active(c.Request.Context(), &req)
	if err != nil {
		handleAlertError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Week-Count", strconv.FormatInt(result.WindowCount, 10))
	response.OK(c, result)
}

// Trigger runs one alert cycle on demand
// POST /api/v1/alerts/trigger
func (h *AlertHandler) Trigger(c *gin.Context) {
	result, err := h.alertSvc.Trigger(c.Request.Context())
	if err != nil {
		handleAlertError(c, err)
		return
	}
	response.OK(c, result)
}

// ExportActive
// GET /api/v1/alerts/active/export
func (h *AlertHandler) ExportActive(c *gin.Context) {
	buf, filename, err := h.alertSvc.ExportActive(c.Request.Context())
	if err != nil {
		handleAlertError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Calendar
// GET /api/v1/alerts/calendar.ics
func (h *AlertHandler) Calendar(c *gin.Context) {
	body, err := h.alertSvc.CalendarFeed(c.Request.Context())
	if err != nil {
		handleAlertError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="custody-alerts.ics"`)
	c.Data(http.StatusOK, icsContentType, body)
}

func handleAlertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlertSyncFailed):
		response.Error(c, http.StatusInternalServerError, 15001, "alert synchronization failed")
	case errors.Is(err, service.ErrAlertTriggerFailed):
		response.Error(c, http.StatusInternalServerError, 15002, "alert cycle failed")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 15003, "failed to generate the spreadsheet")
	case errors.Is(err, service.ErrCalendarGenerateErr):
		response.Error(c, http.StatusInternalServerError, 15004, "failed to generate the calendar feed")
	default:
		response.InternalError(c)
	}
}
