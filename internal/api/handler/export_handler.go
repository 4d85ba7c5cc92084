package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mdavis72884/bramble-claude-sub001/internal/service"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

const (
	contentTypeICS  = "text/calendar; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler series download HTTP handler
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportICS downloads a class as an iCalendar file
// GET /api/v1/series/:id/export.ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	coopID, ok := MustGetCoopID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportICS(c.Request.Context(), c.Param("id"), coopID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename, contentTypeICS, buf.Bytes())
}

// ExportXLSX downloads a class's sessions as a spreadsheet
// GET /api/v1/series/:id/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	coopID, ok := MustGetCoopID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), c.Param("id"), coopID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeriesNotFound):
		response.NotFound(c, 21001, "class series not found")
	case errors.Is(err, service.ErrNoSessions):
		response.NotFound(c, 22001, "class series has no sessions to export")
	default:
		response.InternalError(c)
	}
}
