package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func setupTestDraftService(store KVStore) DraftService {
	return NewDraftService(store, 48*time.Hour, zap.NewNop())
}

func TestDraft_SaveGetDelete(t *testing.T) {
	store := newMemStore()
	svc := setupTestDraftService(store)
	payload := json.RawMessage(`{"className":"Latin","dayTimes":[{"dayOfWeek":1}]}`)

	saved, err := svc.Save(context.Background(), "user-1", "new-series", payload)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Key != "new-series" || saved.SavedAt == "" || saved.ExpiresAt == "" {
		t.Errorf("unexpected draft %+v", saved)
	}
	if ttl := store.ttls["draft:user-1:new-series"]; ttl != 48*time.Hour {
		t.Errorf("expected the configured ttl, got %s", ttl)
	}

	got, err := svc.Get(context.Background(), "user-1", "new-series")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Payload) != string(payload) {
		t.Errorf("payload changed: %s", got.Payload)
	}

	if _, err := svc.Get(context.Background(), "user-2", "new-series"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("drafts are per user, got %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", "new-series"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", "new-series"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound after delete, got %v", err)
	}
}

func TestDraft_InvalidKey(t *testing.T) {
	svc := setupTestDraftService(newMemStore())

	for _, key := range []string{"", "has space", "a:b", string(make([]byte, 65))} {
		if _, err := svc.Save(context.Background(), "user-1", key, json.RawMessage(`{}`)); !errors.Is(err, ErrInvalidDraftKey) {
			t.Errorf("key %q: expected ErrInvalidDraftKey, got %v", key, err)
		}
	}
}

func TestDraft_Unavailable(t *testing.T) {
	for name, store := range map[string]KVStore{"no store": nil, "store down": failingStore{}} {
		t.Run(name, func(t *testing.T) {
			svc := setupTestDraftService(store)
			if _, err := svc.Save(context.Background(), "user-1", "k", json.RawMessage(`{}`)); !errors.Is(err, ErrDraftUnavailable) {
				t.Errorf("Save: expected ErrDraftUnavailable, got %v", err)
			}
			if _, err := svc.Get(context.Background(), "user-1", "k"); !errors.Is(err, ErrDraftUnavailable) {
				t.Errorf("Get: expected ErrDraftUnavailable, got %v", err)
			}
			if err := svc.Delete(context.Background(), "user-1", "k"); !errors.Is(err, ErrDraftUnavailable) {
				t.Errorf("Delete: expected ErrDraftUnavailable, got %v", err)
			}
		})
	}
}
