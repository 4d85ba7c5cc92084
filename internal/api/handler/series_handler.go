package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/service"
	pkgerrors "github.com/mdavis72884/bramble-claude-sub001/pkg/errors"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

// SeriesHandler recurring class HTTP handler
type SeriesHandler struct {
	seriesSvc service.SeriesService
}

// NewSeriesHandler creates a SeriesHandler
func NewSeriesHandler(seriesSvc service.SeriesService) *SeriesHandler {
	return &SeriesHandler{seriesSvc: seriesSvc}
}

// CreateSeries creates a class and its sessions
// POST /api/v1/series
func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	callerID, coopID, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.seriesSvc.Create(c.Request.Context(), &req, coopID, callerID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListSeries lists the co-op's classes
// GET /api/v1/series?page=1&page_size=20
func (h *SeriesHandler) ListSeries(c *gin.Context) {
	coopID, ok := MustGetCoopID(c)
	if !ok {
		return
	}

	var req dto.SeriesListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.seriesSvc.List(c.Request.Context(), &req, coopID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetSeries a class with its recovered pattern
// GET /api/v1/series/:id
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	coopID, ok := MustGetCoopID(c)
	if !ok {
		return
	}

	resp, err := h.seriesSvc.Get(c.Request.Context(), c.Param("id"), coopID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.OK(c, resp)
}

// UpdateSeries renames and/or reschedules a class
// PUT /api/v1/series/:id
func (h *SeriesHandler) UpdateSeries(c *gin.Context) {
	callerID, coopID, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.seriesSvc.Update(c.Request.Context(), c.Param("id"), &req, coopID, callerID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteSeries removes a class and all its sessions
// DELETE /api/v1/series/:id
func (h *SeriesHandler) DeleteSeries(c *gin.Context) {
	callerID, coopID, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.seriesSvc.Delete(c.Request.Context(), c.Param("id"), coopID, callerID); err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListSessions dated sessions of a class
// GET /api/v1/series/:id/sessions
func (h *SeriesHandler) ListSessions(c *gin.Context) {
	coopID, ok := MustGetCoopID(c)
	if !ok {
		return
	}

	sessions, err := h.seriesSvc.ListSessions(c.Request.Context(), c.Param("id"), coopID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.OK(c, gin.H{"list": sessions})
}

// AddOneOff adds a session outside the weekly pattern
// POST /api/v1/series/:id/one-offs
func (h *SeriesHandler) AddOneOff(c *gin.Context) {
	callerID, coopID, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AddOneOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.seriesSvc.AddOneOff(c.Request.Context(), c.Param("id"), &req, coopID, callerID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.Created(c, resp)
}

// MigrateLegacy materializes a legacy configuration into sessions
// POST /api/v1/series/:id/migrate-legacy
func (h *SeriesHandler) MigrateLegacy(c *gin.Context) {
	callerID, coopID, ok := mustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.seriesSvc.MigrateLegacy(c.Request.Context(), c.Param("id"), coopID, callerID)
	if err != nil {
		h.handleSeriesError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleSeriesError maps series module errors
func (h *SeriesHandler) handleSeriesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeriesNotFound):
		response.NotFound(c, 21001, "class series not found")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 21002, "class series was modified by someone else, reload and retry")
	case errors.Is(err, service.ErrInvalidSchedule):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 21003, "invalid schedule", scheduleFieldErrors(err))
	case errors.Is(err, service.ErrEmptySchedule):
		response.Unprocessable(c, 21004, "schedule produces no sessions in the date range")
	case errors.Is(err, service.ErrRangeTooLarge):
		response.Unprocessable(c, 20001, "date range too large")
	case errors.Is(err, service.ErrNoLegacyConfig):
		response.Conflict(c, 21005, "class series has no legacy configuration")
	default:
		response.InternalError(c)
	}
}
