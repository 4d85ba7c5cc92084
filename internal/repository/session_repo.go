package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mdavis72884/bramble-claude-sub001/internal/model"
)

// SessionRepository class session data access
type SessionRepository interface {
	Create(ctx context.Context, session *model.ClassSession) error
	BatchCreate(ctx context.Context, sessions []model.ClassSession) error
	ListBySeries(ctx context.Context, seriesID string) ([]model.ClassSession, error)
	ListBySeriesIDs(ctx context.Context, seriesIDs []string) (map[string][]model.ClassSession, error)
	// DeletePatternBySeries removes the generated sessions of a series; one-offs stay.
	DeletePatternBySeries(ctx context.Context, seriesID string, deletedBy string) error
	DeleteBySeries(ctx context.Context, seriesID string, deletedBy string) error
}

const sessionBatchSize = 200

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo creates a SessionRepository
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.ClassSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) BatchCreate(ctx context.Context, sessions []model.ClassSession) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(sessions, sessionBatchSize).Error
}

// ListBySeries sessions in calendar order.
func (r *sessionRepo) ListBySeries(ctx context.Context, seriesID string) ([]model.ClassSession, error) {
	var sessions []model.ClassSession
	err := r.db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Order("session_date ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

// ListBySeriesIDs sessions of several series in one query, grouped by series.
func (r *sessionRepo) ListBySeriesIDs(ctx context.Context, seriesIDs []string) (map[string][]model.ClassSession, error) {
	out := make(map[string][]model.ClassSession, len(seriesIDs))
	if len(seriesIDs) == 0 {
		return out, nil
	}

	var sessions []model.ClassSession
	err := r.db.WithContext(ctx).
		Where("series_id IN ?", seriesIDs).
		Order("session_date ASC, start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	for _, s := range sessions {
		if s.SeriesID != nil {
			out[*s.SeriesID] = append(out[*s.SeriesID], s)
		}
	}
	return out, nil
}

func (r *sessionRepo) DeletePatternBySeries(ctx context.Context, seriesID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ClassSession{}).
		Where("series_id = ? AND is_one_off = ?", seriesID, false).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *sessionRepo) DeleteBySeries(ctx context.Context, seriesID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ClassSession{}).
		Where("series_id = ?", seriesID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
