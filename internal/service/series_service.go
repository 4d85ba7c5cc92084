package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/model"
	"github.com/mdavis72884/bramble-claude-sub001/internal/repository"
	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
	pkgerrors "github.com/mdavis72884/bramble-claude-sub001/pkg/errors"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/metrics"
)

// ── series module errors ──

var (
	ErrSeriesNotFound  = errors.New("class series not found")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrEmptySchedule   = errors.New("schedule produces no sessions in the date range")
	ErrNoSessions      = errors.New("class series has no sessions")
	ErrNoLegacyConfig  = errors.New("class series has no legacy configuration")
)

const timestampLayout = time.RFC3339

// SeriesService recurring class management. A series' weekly pattern is
// expanded into sessions on write and recovered from them on read.
type SeriesService interface {
	Create(ctx context.Context, req *dto.CreateSeriesRequest, coopID, callerID string) (*dto.SeriesResponse, error)
	Get(ctx context.Context, id, coopID string) (*dto.SeriesResponse, error)
	List(ctx context.Context, req *dto.SeriesListRequest, coopID string) ([]dto.SeriesResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateSeriesRequest, coopID, callerID string) (*dto.SeriesResponse, error)
	Delete(ctx context.Context, id, coopID, callerID string) error
	ListSessions(ctx context.Context, id, coopID string) ([]dto.SessionResponse, error)
	AddOneOff(ctx context.Context, id string, req *dto.AddOneOffRequest, coopID, callerID string) (*dto.SessionResponse, error)
	MigrateLegacy(ctx context.Context, id, coopID, callerID string) (*dto.MigrateLegacyResponse, error)
}

type seriesService struct {
	repo    *repository.Repository
	gen     *scheduler.Generator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSeriesService creates a SeriesService
func NewSeriesService(repo *repository.Repository, gen *scheduler.Generator, m *metrics.Metrics, logger *zap.Logger) SeriesService {
	return &seriesService{repo: repo, gen: gen, metrics: m, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *seriesService) Create(ctx context.Context, req *dto.CreateSeriesRequest, coopID, callerID string) (*dto.SeriesResponse, error) {
	cfg := req.Schedule.ToConfig()
	previews, err := s.expand(cfg)
	if err != nil {
		return nil, err
	}

	series := &model.ClassSeries{
		CoopID:          coopID,
		ClassName:       req.ClassName,
		Location:        cfg.Location,
		LocationDetails: cfg.LocationDetails,
	}
	series.CreatedBy = &callerID
	series.UpdatedBy = &callerID

	var sessions []model.ClassSession
	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Series.Create(ctx, series); err != nil {
			return fmt.Errorf("create series: %w", err)
		}
		sessions = patternSessions(series, previews, callerID)
		if err := txRepo.Session.BatchCreate(ctx, sessions); err != nil {
			return fmt.Errorf("create sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create class series failed", zap.String("coop_id", coopID), zap.Error(err))
		return nil, err
	}

	s.metrics.AddGenerated("series", len(sessions))
	s.logger.Info("class series created",
		zap.String("series_id", series.SeriesID),
		zap.Int("sessions", len(sessions)),
	)

	return toSeriesResponse(series, sessions), nil
}

// ────────────────────── Get ──────────────────────

func (s *seriesService) Get(ctx context.Context, id, coopID string) (*dto.SeriesResponse, error) {
	series, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session.ListBySeries(ctx, id)
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}

	return toSeriesResponse(series, sessions), nil
}

// ────────────────────── List ──────────────────────

func (s *seriesService) List(ctx context.Context, req *dto.SeriesListRequest, coopID string) ([]dto.SeriesResponse, int64, error) {
	list, total, err := s.repo.Series.ListByCoop(ctx, coopID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list class series failed", zap.String("coop_id", coopID), zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].SeriesID
	}
	bySeries, err := s.repo.Session.ListBySeriesIDs(ctx, ids)
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("coop_id", coopID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SeriesResponse, 0, len(list))
	for i := range list {
		result = append(result, *toSeriesResponse(&list[i], bySeries[list[i].SeriesID]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *seriesService) Update(ctx context.Context, id string, req *dto.UpdateSeriesRequest, coopID, callerID string) (*dto.SeriesResponse, error) {
	series, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger)
	if err != nil {
		return nil, err
	}
	if series.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	var previews []scheduler.ClassPreview
	if req.Schedule != nil {
		cfg := req.Schedule.ToConfig()
		if previews, err = s.expand(cfg); err != nil {
			return nil, err
		}
		series.Location = cfg.Location
		series.LocationDetails = cfg.LocationDetails
		series.ClearLegacyConfig()
	}
	if req.ClassName != nil {
		series.ClassName = *req.ClassName
	}
	series.UpdatedBy = &callerID

	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Series.Update(ctx, series); err != nil {
			return err
		}
		if req.Schedule == nil {
			return nil
		}
		if err := txRepo.Session.DeletePatternBySeries(ctx, id, callerID); err != nil {
			return fmt.Errorf("delete pattern sessions: %w", err)
		}
		return txRepo.Session.BatchCreate(ctx, patternSessions(series, previews, callerID))
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update class series failed", zap.String("series_id", id), zap.Error(err))
		}
		return nil, err
	}
	if req.Schedule != nil {
		s.metrics.AddGenerated("series", len(previews))
	}

	sessions, err := s.repo.Session.ListBySeries(ctx, id)
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}
	return toSeriesResponse(series, sessions), nil
}

// ────────────────────── Delete ──────────────────────

func (s *seriesService) Delete(ctx context.Context, id, coopID, callerID string) error {
	if _, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger); err != nil {
		return err
	}

	err := s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Session.DeleteBySeries(ctx, id, callerID); err != nil {
			return err
		}
		return txRepo.Series.Delete(ctx, id, callerID)
	})
	if err != nil {
		s.logger.Error("delete class series failed", zap.String("series_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListSessions ──────────────────────

func (s *seriesService) ListSessions(ctx context.Context, id, coopID string) ([]dto.SessionResponse, error) {
	if _, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger); err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session.ListBySeries(ctx, id)
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i]))
	}
	return result, nil
}

// ────────────────────── AddOneOff ──────────────────────

func (s *seriesService) AddOneOff(ctx context.Context, id string, req *dto.AddOneOffRequest, coopID, callerID string) (*dto.SessionResponse, error) {
	date, ok := scheduler.ParseDate(req.Date)
	if !ok || !scheduler.IsDate(req.Date) {
		return nil, invalidSchedule("date", "must be YYYY-MM-DD")
	}
	if req.StartTime >= req.EndTime {
		return nil, invalidSchedule("endTime", "must be after startTime")
	}

	series, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger)
	if err != nil {
		return nil, err
	}

	session := &model.ClassSession{
		SeriesID:        &series.SeriesID,
		CoopID:          series.CoopID,
		SessionDate:     date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DayOfWeek:       int(scheduler.WeekdayOf(date)),
		Location:        req.Location,
		LocationDetails: req.LocationDetails,
		IsOneOff:        true,
	}
	if session.Location == "" {
		session.Location = series.Location
		session.LocationDetails = series.LocationDetails
	}
	session.CreatedBy = &callerID
	session.UpdatedBy = &callerID

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("create one-off session failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

// ────────────────────── MigrateLegacy ──────────────────────

// MigrateLegacy materializes a legacy series through the legacy generation
// path and drops its legacy columns. Existing pattern sessions are replaced;
// one-offs stay.
func (s *seriesService) MigrateLegacy(ctx context.Context, id, coopID, callerID string) (*dto.MigrateLegacyResponse, error) {
	series, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger)
	if err != nil {
		return nil, err
	}
	if !series.HasLegacyConfig() {
		return nil, ErrNoLegacyConfig
	}

	legacy := series.LegacyConfig()
	if !legacy.Frequency.Valid() {
		return nil, invalidSchedule("frequency", "must be daily, weekly or custom")
	}
	previews, err := s.expand(legacy.ToSchedulerConfig())
	if err != nil {
		return nil, err
	}

	series.ClearLegacyConfig()
	series.UpdatedBy = &callerID

	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Series.Update(ctx, series); err != nil {
			return err
		}
		if err := txRepo.Session.DeletePatternBySeries(ctx, id, callerID); err != nil {
			return err
		}
		return txRepo.Session.BatchCreate(ctx, patternSessions(series, previews, callerID))
	})
	if err != nil {
		s.logger.Error("migrate legacy series failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}
	s.metrics.AddGenerated("legacy", len(previews))

	sessions, err := s.repo.Session.ListBySeries(ctx, id)
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("legacy series migrated", zap.String("series_id", id), zap.Int("sessions", len(previews)))
	return &dto.MigrateLegacyResponse{
		Series:    *toSeriesResponse(series, sessions),
		Generated: len(previews),
	}, nil
}

// ── internal helpers ──

// expand validates cfg and runs the bounded generator.
func (s *seriesService) expand(cfg scheduler.SchedulerConfig) ([]scheduler.ClassPreview, error) {
	if err := scheduler.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	previews, err := s.gen.Generate(cfg)
	if err != nil {
		if errors.Is(err, scheduler.ErrRangeTooLarge) {
			s.metrics.IncRangeRejection()
		}
		return nil, err
	}
	if len(previews) == 0 {
		return nil, ErrEmptySchedule
	}
	return previews, nil
}

// inTx runs fn inside a transaction when the repository has a database.
func (s *seriesService) inTx(ctx context.Context, fn func(txRepo *repository.Repository) error) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(s.repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	return nil
}

// loadOwnedSeries fetches a series visible to coopID. Series of other
// co-ops are reported as missing.
func loadOwnedSeries(ctx context.Context, repo *repository.Repository, id, coopID string, logger *zap.Logger) (*model.ClassSeries, error) {
	series, err := repo.Series.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeriesNotFound
		}
		logger.Error("get class series failed", zap.String("series_id", id), zap.Error(err))
		return nil, err
	}
	if series.CoopID != coopID {
		return nil, ErrSeriesNotFound
	}
	return series, nil
}

func invalidSchedule(field, message string) error {
	return fmt.Errorf("%w: %w", ErrInvalidSchedule, &scheduler.ValidationError{
		Fields: []scheduler.FieldError{{Field: field, Message: message}},
	})
}

func patternSessions(series *model.ClassSeries, previews []scheduler.ClassPreview, callerID string) []model.ClassSession {
	sessions := make([]model.ClassSession, len(previews))
	for i, p := range previews {
		sessions[i] = model.NewPatternSession(series.SeriesID, series.CoopID, p)
		sessions[i].CreatedBy = &callerID
		sessions[i].UpdatedBy = &callerID
	}
	return sessions
}

func sessionRecords(sessions []model.ClassSession) []scheduler.Occurrence {
	records := make([]scheduler.Occurrence, len(sessions))
	for i := range sessions {
		records[i] = sessions[i].Occurrence()
	}
	return records
}

func toSeriesResponse(series *model.ClassSeries, sessions []model.ClassSession) *dto.SeriesResponse {
	described := describeRecords(sessionRecords(sessions))

	oneOffs := 0
	for i := range sessions {
		if sessions[i].IsOneOff {
			oneOffs++
		}
	}

	return &dto.SeriesResponse{
		ID:              series.SeriesID,
		CoopID:          series.CoopID,
		ClassName:       series.ClassName,
		Location:        series.Location,
		LocationDetails: series.LocationDetails,
		Version:         series.Version,
		Schedule:        described.Schedule,
		Summary:         described.Summary,
		DateRange:       described.DateRange,
		SessionCount:    len(sessions),
		OneOffCount:     oneOffs,
		HasLegacyConfig: series.HasLegacyConfig(),
		Warnings:        described.Warnings,
		CreatedAt:       series.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:       series.UpdatedAt.UTC().Format(timestampLayout),
	}
}

func toSessionResponse(s *model.ClassSession) dto.SessionResponse {
	date := scheduler.FormatDate(s.SessionDate)
	return dto.SessionResponse{
		ID:              s.SessionID,
		Date:            date,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DayOfWeek:       scheduler.Weekday(s.DayOfWeek),
		Location:        s.Location,
		LocationDetails: s.LocationDetails,
		IsOneOff:        s.IsOneOff,
		DateLabel:       scheduler.FormatOccurrenceDate(date),
		TimeLabel:       scheduler.FormatTime12h(s.StartTime) + " - " + scheduler.FormatTime12h(s.EndTime),
	}
}
