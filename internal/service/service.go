package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/config"
	"github.com/mdavis72884/bramble-claude-sub001/internal/repository"
	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/metrics"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

// KVStore JSON key-value store with expiry. *redis.Client satisfies it;
// GetJSON returns redis.ErrNotFound for missing keys.
type KVStore interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Del(ctx context.Context, keys ...string) error
}

// Service aggregates every service
type Service struct {
	Schedule ScheduleService
	Series   SeriesService
	Export   ExportService
	Draft    DraftService
}

// NewService wires services. rdb may be nil: previews are then uncached
// and drafts are unavailable.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	var store KVStore
	if rdb != nil {
		store = rdb
	}

	gen := scheduler.NewGenerator(cfg.Scheduler.MaxSpanDays)

	return &Service{
		Schedule: NewScheduleService(gen, store, cfg.Scheduler.PreviewCacheTTL, m, logger),
		Series:   NewSeriesService(repo, gen, m, logger),
		Export:   NewExportService(repo, logger),
		Draft:    NewDraftService(store, cfg.Draft.TTL, logger),
	}
}
