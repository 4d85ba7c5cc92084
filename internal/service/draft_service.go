package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

// ── draft module errors ──

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrDraftUnavailable = errors.New("draft storage is unavailable")
	ErrInvalidDraftKey  = errors.New("draft key must be 1-64 letters, digits, '-' or '_'")
)

const draftKeyPrefix = "draft:"

var draftKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// DraftService persists in-progress form input per user so an interrupted
// class form can be resumed.
type DraftService interface {
	Save(ctx context.Context, userID, key string, payload json.RawMessage) (*dto.DraftResponse, error)
	Get(ctx context.Context, userID, key string) (*dto.DraftResponse, error)
	Delete(ctx context.Context, userID, key string) error
}

type draftService struct {
	store  KVStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// storedDraft value layout in the store
type storedDraft struct {
	Payload   json.RawMessage `json:"payload"`
	SavedAt   time.Time       `json:"savedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// NewDraftService creates a DraftService. store may be nil, in which case
// every call fails with ErrDraftUnavailable.
func NewDraftService(store KVStore, ttl time.Duration, logger *zap.Logger) DraftService {
	return &draftService{store: store, ttl: ttl, logger: logger, now: time.Now}
}

// ────────────────────── Save ──────────────────────

func (s *draftService) Save(ctx context.Context, userID, key string, payload json.RawMessage) (*dto.DraftResponse, error) {
	storeKey, err := s.key(userID, key)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := storedDraft{Payload: payload, SavedAt: now, ExpiresAt: now.Add(s.ttl)}
	if err := s.store.SetJSON(ctx, storeKey, d, s.ttl); err != nil {
		s.logger.Error("save draft failed", zap.String("user_id", userID), zap.String("key", key), zap.Error(err))
		return nil, ErrDraftUnavailable
	}
	return toDraftResponse(key, &d), nil
}

// ────────────────────── Get ──────────────────────

func (s *draftService) Get(ctx context.Context, userID, key string) (*dto.DraftResponse, error) {
	storeKey, err := s.key(userID, key)
	if err != nil {
		return nil, err
	}

	var d storedDraft
	if err := s.store.GetJSON(ctx, storeKey, &d); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrDraftNotFound
		}
		s.logger.Error("load draft failed", zap.String("user_id", userID), zap.String("key", key), zap.Error(err))
		return nil, ErrDraftUnavailable
	}
	return toDraftResponse(key, &d), nil
}

// ────────────────────── Delete ──────────────────────

func (s *draftService) Delete(ctx context.Context, userID, key string) error {
	storeKey, err := s.key(userID, key)
	if err != nil {
		return err
	}
	if err := s.store.Del(ctx, storeKey); err != nil {
		s.logger.Error("delete draft failed", zap.String("user_id", userID), zap.String("key", key), zap.Error(err))
		return ErrDraftUnavailable
	}
	return nil
}

// key validates the client key and scopes it to the user.
func (s *draftService) key(userID, key string) (string, error) {
	if s.store == nil {
		return "", ErrDraftUnavailable
	}
	if !draftKeyPattern.MatchString(key) {
		return "", ErrInvalidDraftKey
	}
	return draftKeyPrefix + userID + ":" + key, nil
}

func toDraftResponse(key string, d *storedDraft) *dto.DraftResponse {
	return &dto.DraftResponse{
		Key:       key,
		Payload:   d.Payload,
		SavedAt:   d.SavedAt.Format(timestampLayout),
		ExpiresAt: d.ExpiresAt.Format(timestampLayout),
	}
}
