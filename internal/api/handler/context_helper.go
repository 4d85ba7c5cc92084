package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

// ── shared error codes ──

const (
	codeBadRequest      = 10001
	codeUnauthenticated = 10002
)

// mustGetString reads a string the JWT middleware injected. On failure it
// writes a 401 and returns false; callers return immediately.
func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, codeUnauthenticated, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, codeUnauthenticated, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetUserID extracts user_id from the gin context.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole extracts role from the gin context.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetCoopID extracts coop_id from the gin context.
func MustGetCoopID(c *gin.Context) (string, bool) {
	return mustGetString(c, "coop_id")
}

// mustGetCaller user and co-op of the authenticated caller.
func mustGetCaller(c *gin.Context) (userID, coopID string, ok bool) {
	if userID, ok = MustGetUserID(c); !ok {
		return "", "", false
	}
	if coopID, ok = MustGetCoopID(c); !ok {
		return "", "", false
	}
	return userID, coopID, true
}

// bindError answers a failed ShouldBind*. Validator failures carry
// per-field details; malformed bodies get a plain 400.
func bindError(c *gin.Context, err error) {
	if tooLarge(c, err) {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "validation failed", dto.FieldErrors(err))
		return
	}
	response.BadRequest(c, codeBadRequest, "malformed request body")
}

// tooLarge answers 413 when err comes from the BodyLimit cap.
func tooLarge(c *gin.Context, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
	return true
}

// scheduleFieldErrors field details of an invalid schedule, if any.
func scheduleFieldErrors(err error) []scheduler.FieldError {
	var verr *scheduler.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
