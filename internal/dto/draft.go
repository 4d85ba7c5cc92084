package dto

import "encoding/json"

// ── form drafts ──

// SaveDraftRequest opaque in-progress form state
type SaveDraftRequest struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// DraftResponse a stored draft
type DraftResponse struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	SavedAt   string          `json:"savedAt"`
	ExpiresAt string          `json:"expiresAt"`
}
