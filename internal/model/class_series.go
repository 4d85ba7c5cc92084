package model

import (
	"time"

	"github.com/lib/pq"

	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
)

// ClassSeries a recurring class offered by a co-op. Its weekly pattern is
// never stored: sessions are expanded from it and the pattern is recovered
// from them. Legacy columns hold the pre per-day-times configuration of
// series that have not been migrated yet.
type ClassSeries struct {
	SeriesID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"seriesId"`
	CoopID          string `gorm:"type:uuid;not null;index"                       json:"coopId"`
	ClassName       string `gorm:"type:varchar(200);not null"                     json:"className"`
	Location        string `gorm:"type:varchar(200);not null;default:''"          json:"location"`
	LocationDetails string `gorm:"type:text;not null;default:''"                  json:"locationDetails"`

	LegacyFrequency  *string       `gorm:"type:varchar(10)" json:"-"`
	LegacyDaysOfWeek pq.Int64Array `gorm:"type:int[]"       json:"-"`
	LegacyStartDate  *time.Time    `gorm:"type:date"        json:"-"`
	LegacyEndDate    *time.Time    `gorm:"type:date"        json:"-"`
	LegacyStartTime  *string       `gorm:"type:varchar(5)"  json:"-"`
	LegacyEndTime    *string       `gorm:"type:varchar(5)"  json:"-"`

	VersionedModel
}

// TableName table name
func (ClassSeries) TableName() string { return "class_series" }

// HasLegacyConfig reports whether the series still carries a legacy configuration.
func (s *ClassSeries) HasLegacyConfig() bool {
	return s.LegacyFrequency != nil && s.LegacyStartDate != nil && s.LegacyEndDate != nil
}

// LegacyConfig rebuilds the legacy generation input from the legacy columns.
// Weekday values outside 0–6 are dropped.
func (s *ClassSeries) LegacyConfig() scheduler.LegacySessionConfig {
	cfg := scheduler.LegacySessionConfig{
		Location:        s.Location,
		LocationDetails: s.LocationDetails,
	}
	if s.LegacyFrequency != nil {
		cfg.Frequency = scheduler.Frequency(*s.LegacyFrequency)
	}
	if s.LegacyStartDate != nil {
		cfg.StartDate = scheduler.FormatDate(*s.LegacyStartDate)
	}
	if s.LegacyEndDate != nil {
		cfg.EndDate = scheduler.FormatDate(*s.LegacyEndDate)
	}
	if s.LegacyStartTime != nil {
		cfg.StartTime = *s.LegacyStartTime
	}
	if s.LegacyEndTime != nil {
		cfg.EndTime = *s.LegacyEndTime
	}
	for _, n := range s.LegacyDaysOfWeek {
		if d, ok := scheduler.ParseWeekday(int(n)); ok {
			cfg.DaysOfWeek = append(cfg.DaysOfWeek, d)
		}
	}
	return cfg
}

// ClearLegacyConfig drops the legacy columns once sessions have been materialized.
func (s *ClassSeries) ClearLegacyConfig() {
	s.LegacyFrequency = nil
	s.LegacyDaysOfWeek = nil
	s.LegacyStartDate = nil
	s.LegacyEndDate = nil
	s.LegacyStartTime = nil
	s.LegacyEndTime = nil
}
