package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/service"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

// DraftHandler in-progress form drafts
type DraftHandler struct {
	draftSvc service.DraftService
}

// NewDraftHandler creates a DraftHandler
func NewDraftHandler(draftSvc service.DraftService) *DraftHandler {
	return &DraftHandler{draftSvc: draftSvc}
}

// SaveDraft stores or replaces the caller's draft
// PUT /api/v1/drafts/:key
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.draftSvc.Save(c.Request.Context(), userID, c.Param("key"), req.Payload)
	if err != nil {
		h.handleDraftError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetDraft loads the caller's draft
// GET /api/v1/drafts/:key
func (h *DraftHandler) GetDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.draftSvc.Get(c.Request.Context(), userID, c.Param("key"))
	if err != nil {
		h.handleDraftError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteDraft discards the caller's draft
// DELETE /api/v1/drafts/:key
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.draftSvc.Delete(c.Request.Context(), userID, c.Param("key")); err != nil {
		h.handleDraftError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *DraftHandler) handleDraftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		response.NotFound(c, 23001, "draft not found")
	case errors.Is(err, service.ErrInvalidDraftKey):
		response.BadRequest(c, 23002, err.Error())
	case errors.Is(err, service.ErrDraftUnavailable):
		response.ServiceUnavailable(c, 23003, "draft storage is unavailable")
	default:
		response.InternalError(c)
	}
}
