package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mdavis72884/bramble-claude-sub001/internal/model"
	"github.com/mdavis72884/bramble-claude-sub001/internal/repository"
	pkgerrors "github.com/mdavis72884/bramble-claude-sub001/pkg/errors"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

// ── Mock SeriesRepository ──

type mockSeriesRepo struct {
	series map[string]*model.ClassSeries
	seq    int
}

func newMockSeriesRepo() *mockSeriesRepo {
	return &mockSeriesRepo{series: make(map[string]*model.ClassSeries)}
}

func (m *mockSeriesRepo) Create(_ context.Context, series *model.ClassSeries) error {
	if series.SeriesID == "" {
		m.seq++
		series.SeriesID = fmt.Sprintf("series-%d", m.seq)
	}
	if series.Version == 0 {
		series.Version = 1
	}
	now := time.Now()
	series.CreatedAt = now
	series.UpdatedAt = now
	stored := *series
	m.series[series.SeriesID] = &stored
	return nil
}

// GetByID returns a copy, like a fresh row read.
func (m *mockSeriesRepo) GetByID(_ context.Context, id string) (*model.ClassSeries, error) {
	if s, ok := m.series[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeriesRepo) ListByCoop(_ context.Context, coopID string, offset, limit int) ([]model.ClassSeries, int64, error) {
	var all []model.ClassSeries
	for _, s := range m.series {
		if s.CoopID == coopID {
			all = append(all, *s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ClassName < all[j].ClassName })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.ClassSeries{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSeriesRepo) Update(_ context.Context, series *model.ClassSeries) error {
	stored, ok := m.series[series.SeriesID]
	if !ok || stored.Version != series.Version {
		return pkgerrors.ErrOptimisticLock
	}
	series.Version++
	series.UpdatedAt = time.Now()
	cp := *series
	m.series[series.SeriesID] = &cp
	return nil
}

func (m *mockSeriesRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.series, id)
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions []model.ClassSession
	seq      int
	listErr  error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.ClassSession) error {
	m.seq++
	session.SessionID = fmt.Sprintf("session-%d", m.seq)
	m.sessions = append(m.sessions, *session)
	return nil
}

func (m *mockSessionRepo) BatchCreate(ctx context.Context, sessions []model.ClassSession) error {
	for i := range sessions {
		if err := m.Create(ctx, &sessions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockSessionRepo) ListBySeries(_ context.Context, seriesID string) ([]model.ClassSession, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.ClassSession
	for _, s := range m.sessions {
		if s.SeriesID != nil && *s.SeriesID == seriesID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].SessionDate.Before(out[j].SessionDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (m *mockSessionRepo) ListBySeriesIDs(ctx context.Context, seriesIDs []string) (map[string][]model.ClassSession, error) {
	out := make(map[string][]model.ClassSession, len(seriesIDs))
	for _, id := range seriesIDs {
		list, err := m.ListBySeries(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			out[id] = list
		}
	}
	return out, nil
}

func (m *mockSessionRepo) DeletePatternBySeries(_ context.Context, seriesID string, _ string) error {
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.SeriesID != nil && *s.SeriesID == seriesID && !s.IsOneOff {
			continue
		}
		kept = append(kept, s)
	}
	m.sessions = kept
	return nil
}

func (m *mockSessionRepo) DeleteBySeries(_ context.Context, seriesID string, _ string) error {
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.SeriesID != nil && *s.SeriesID == seriesID {
			continue
		}
		kept = append(kept, s)
	}
	m.sessions = kept
	return nil
}

func newMockRepository() (*repository.Repository, *mockSeriesRepo, *mockSessionRepo) {
	seriesRepo := newMockSeriesRepo()
	sessionRepo := newMockSessionRepo()
	return &repository.Repository{Series: seriesRepo, Session: sessionRepo}, seriesRepo, sessionRepo
}

// ── Mock KVStore ──

type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	ttls  map[string]time.Duration
	sets  int
	reads int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memStore) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.ttls[key] = ttl
	m.sets++
	return nil
}

func (m *memStore) GetJSON(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	data, ok := m.data[key]
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttls, k)
	}
	return nil
}

// failingStore every call fails, like an unreachable redis.
type failingStore struct{}

var errStoreDown = errors.New("dial tcp 127.0.0.1:6379: connection refused")

func (failingStore) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return errStoreDown
}

func (failingStore) GetJSON(context.Context, string, interface{}) error { return errStoreDown }

func (failingStore) Del(context.Context, ...string) error { return errStoreDown }
