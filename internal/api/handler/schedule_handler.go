package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/service"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

// ScheduleHandler stateless schedule operations
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler creates a ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// Preview expands a weekly pattern into dated classes
// POST /api/v1/schedules/preview
func (h *ScheduleHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.scheduleSvc.Preview(c.Request.Context(), req.SchedulerConfig)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, resp)
}

// Extract reconstructs the weekly pattern of existing sessions
// POST /api/v1/schedules/extract
func (h *ScheduleHandler) Extract(c *gin.Context) {
	var req dto.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.scheduleSvc.Extract(c.Request.Context(), req.Classes)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, resp)
}

// Summary display labels for a schedule
// POST /api/v1/schedules/summary
func (h *ScheduleHandler) Summary(c *gin.Context) {
	var req dto.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.scheduleSvc.Summary(c.Request.Context(), req.ExtractedSchedule)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, resp)
}

// LegacyPreview expands a single-time-pair configuration
// POST /api/v1/schedules/legacy-preview
func (h *ScheduleHandler) LegacyPreview(c *gin.Context) {
	var req dto.LegacyPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.scheduleSvc.LegacyPreview(c.Request.Context(), req.ToLegacyConfig())
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, resp)
}

// ImportICS recovers a weekly pattern from an uploaded calendar
// POST /api/v1/schedules/import-ics (multipart field "file")
func (h *ScheduleHandler) ImportICS(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if tooLarge(c, err) {
			return
		}
		response.BadRequest(c, codeBadRequest, "missing calendar file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, codeBadRequest, "unreadable calendar file")
		return
	}
	defer f.Close()

	resp, err := h.scheduleSvc.ImportICS(c.Request.Context(), f)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleScheduleError maps schedule module errors
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRangeTooLarge):
		response.Unprocessable(c, 20001, "date range too large")
	case errors.Is(err, service.ErrICSParse):
		response.BadRequest(c, 20002, "calendar file could not be parsed")
	default:
		response.InternalError(c)
	}
}
