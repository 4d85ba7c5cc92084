package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/metrics"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

// ── schedule module errors ──

var (
	// ErrRangeTooLarge the requested span exceeds scheduler.max_span_days.
	ErrRangeTooLarge = scheduler.ErrRangeTooLarge
	ErrICSParse      = errors.New("calendar file could not be parsed")
)

const previewCachePrefix = "preview:"

// ScheduleService stateless schedule operations: preview, extraction,
// summaries and calendar import. Nothing here touches the database.
type ScheduleService interface {
	Preview(ctx context.Context, cfg scheduler.SchedulerConfig) (*dto.PreviewResponse, error)
	Extract(ctx context.Context, records []scheduler.Occurrence) (*dto.ExtractResponse, error)
	Summary(ctx context.Context, schedule scheduler.ExtractedSchedule) (*dto.SummaryResponse, error)
	LegacyPreview(ctx context.Context, cfg scheduler.LegacySessionConfig) (*dto.PreviewResponse, error)
	ImportICS(ctx context.Context, r io.Reader) (*dto.ImportICSResponse, error)
}

type scheduleService struct {
	gen      *scheduler.Generator
	cache    KVStore
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewScheduleService creates a ScheduleService. cache may be nil.
func NewScheduleService(gen *scheduler.Generator, cache KVStore, cacheTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) ScheduleService {
	return &scheduleService{gen: gen, cache: cache, cacheTTL: cacheTTL, metrics: m, logger: logger}
}

// ────────────────────── Preview ──────────────────────

func (s *scheduleService) Preview(ctx context.Context, cfg scheduler.SchedulerConfig) (*dto.PreviewResponse, error) {
	key, cacheable := s.previewKey(cfg)
	if cacheable {
		var cached dto.PreviewResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			s.metrics.IncPreviewCache("hit")
			return &cached, nil
		case errors.Is(err, redis.ErrNotFound):
			s.metrics.IncPreviewCache("miss")
		default:
			s.metrics.IncPreviewCache("error")
			s.logger.Warn("preview cache read failed", zap.Error(err))
		}
	}

	resp, err := s.preview(cfg, "preview")
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, key, resp, s.cacheTTL); err != nil {
			s.metrics.IncPreviewCache("error")
			s.logger.Warn("preview cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// ────────────────────── LegacyPreview ──────────────────────

func (s *scheduleService) LegacyPreview(_ context.Context, cfg scheduler.LegacySessionConfig) (*dto.PreviewResponse, error) {
	return s.preview(cfg.ToSchedulerConfig(), "legacy")
}

// ────────────────────── Extract ──────────────────────

func (s *scheduleService) Extract(_ context.Context, records []scheduler.Occurrence) (*dto.ExtractResponse, error) {
	resp := describeRecords(records)
	s.recordExtraction(resp, len(records))
	return resp, nil
}

// ────────────────────── Summary ──────────────────────

func (s *scheduleService) Summary(_ context.Context, schedule scheduler.ExtractedSchedule) (*dto.SummaryResponse, error) {
	return &dto.SummaryResponse{
		Summary:   scheduler.FormatScheduleSummary(schedule),
		DateRange: scheduler.FormatDateRange(schedule.StartDate, schedule.EndDate),
	}, nil
}

// ────────────────────── ImportICS ──────────────────────

func (s *scheduleService) ImportICS(_ context.Context, r io.Reader) (*dto.ImportICSResponse, error) {
	records, events, err := ParseICS(r, s.gen.MaxSpanDays)
	if err != nil {
		s.logger.Info("ics import rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSParse, err)
	}

	resp := describeRecords(records)
	s.recordExtraction(resp, len(records))
	return &dto.ImportICSResponse{ExtractResponse: *resp, EventCount: events}, nil
}

// ── helpers ──

func (s *scheduleService) preview(cfg scheduler.SchedulerConfig, source string) (*dto.PreviewResponse, error) {
	classes, err := s.gen.Generate(cfg)
	if err != nil {
		if errors.Is(err, scheduler.ErrRangeTooLarge) {
			s.metrics.IncRangeRejection()
		}
		return nil, err
	}
	s.metrics.AddGenerated(source, len(classes))

	return &dto.PreviewResponse{
		Classes:   classes,
		Count:     len(classes),
		Summary:   scheduler.FormatScheduleSummary(scheduleOf(cfg)),
		DateRange: scheduler.FormatDateRange(cfg.StartDate, cfg.EndDate),
	}, nil
}

func (s *scheduleService) recordExtraction(resp *dto.ExtractResponse, records int) {
	outcome := "empty"
	if resp.Schedule.HasSchedule {
		outcome = "schedule"
	}
	s.metrics.IncExtraction(outcome)
	if len(resp.Warnings) > 0 {
		s.logger.Info("extracted schedule has inconsistent records",
			zap.Int("records", records),
			zap.Strings("warnings", resp.Warnings),
		)
	}
}

// previewKey hashes the canonical JSON form of cfg.
func (s *scheduleService) previewKey(cfg scheduler.SchedulerConfig) (string, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return "", false
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(data)
	return previewCachePrefix + hex.EncodeToString(sum[:]), true
}

// scheduleOf views a config as a schedule for summary formatting.
func scheduleOf(cfg scheduler.SchedulerConfig) scheduler.ExtractedSchedule {
	return scheduler.ExtractedSchedule{
		StartDate:       cfg.StartDate,
		EndDate:         cfg.EndDate,
		DayTimes:        cfg.DayTimes,
		Location:        cfg.Location,
		LocationDetails: cfg.LocationDetails,
		HasSchedule:     len(cfg.DayTimes) > 0,
	}
}

// describeRecords extracts the pattern from records and attaches labels and
// consistency warnings.
func describeRecords(records []scheduler.Occurrence) *dto.ExtractResponse {
	schedule := scheduler.ExtractScheduleFromClasses(records)

	issues := scheduler.CheckConsistency(records)
	warnings := make([]string, 0, len(issues))
	for _, is := range issues {
		warnings = append(warnings, is.String())
	}

	return &dto.ExtractResponse{
		Schedule:  schedule,
		Summary:   scheduler.FormatScheduleSummary(schedule),
		DateRange: scheduler.FormatDateRange(schedule.StartDate, schedule.EndDate),
		Warnings:  warnings,
	}
}
