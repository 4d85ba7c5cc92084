package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mdavis72884/bramble-claude-sub001/internal/model"
	pkgerrors "github.com/mdavis72884/bramble-claude-sub001/pkg/errors"
)

// SeriesRepository class series data access
type SeriesRepository interface {
	Create(ctx context.Context, series *model.ClassSeries) error
	GetByID(ctx context.Context, id string) (*model.ClassSeries, error)
	ListByCoop(ctx context.Context, coopID string, offset, limit int) ([]model.ClassSeries, int64, error)
	Update(ctx context.Context, series *model.ClassSeries) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type seriesRepo struct {
	db *gorm.DB
}

// NewSeriesRepo creates a SeriesRepository
func NewSeriesRepo(db *gorm.DB) SeriesRepository {
	return &seriesRepo{db: db}
}

func (r *seriesRepo) Create(ctx context.Context, series *model.ClassSeries) error {
	return r.db.WithContext(ctx).Create(series).Error
}

func (r *seriesRepo) GetByID(ctx context.Context, id string) (*model.ClassSeries, error) {
	var series model.ClassSeries
	err := r.db.WithContext(ctx).
		Where("series_id = ?", id).
		First(&series).Error
	if err != nil {
		return nil, err
	}
	return &series, nil
}

func (r *seriesRepo) ListByCoop(ctx context.Context, coopID string, offset, limit int) ([]model.ClassSeries, int64, error) {
	var (
		list  []model.ClassSeries
		total int64
	)

	db := r.db.WithContext(ctx).Model(&model.ClassSeries{}).Where("coop_id = ?", coopID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("class_name ASC, created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

// Update writes every mutable column guarded by the version the caller read.
func (r *seriesRepo) Update(ctx context.Context, series *model.ClassSeries) error {
	oldVersion := series.Version
	result := r.db.WithContext(ctx).
		Model(&model.ClassSeries{}).
		Where("series_id = ? AND version = ?", series.SeriesID, oldVersion).
		Updates(map[string]interface{}{
			"class_name":          series.ClassName,
			"location":            series.Location,
			"location_details":    series.LocationDetails,
			"legacy_frequency":    series.LegacyFrequency,
			"legacy_days_of_week": series.LegacyDaysOfWeek,
			"legacy_start_date":   series.LegacyStartDate,
			"legacy_end_date":     series.LegacyEndDate,
			"legacy_start_time":   series.LegacyStartTime,
			"legacy_end_time":     series.LegacyEndTime,
			"updated_by":          series.UpdatedBy,
			"updated_at":          gorm.Expr("NOW()"),
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	series.Version = oldVersion + 1
	return nil
}

func (r *seriesRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ClassSeries{}).
		Where("series_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
