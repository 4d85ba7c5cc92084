package dto

import "github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"

// ── stateless schedule operations ──

// PreviewRequest generator input. Not validated: degenerate input yields an empty preview.
type PreviewRequest struct {
	scheduler.SchedulerConfig
}

// PreviewResponse generated occurrences plus display labels
type PreviewResponse struct {
	Classes   []scheduler.ClassPreview `json:"classes"`
	Count     int                      `json:"count"`
	Summary   string                   `json:"summary"`
	DateRange string                   `json:"dateRange"`
}

// ExtractRequest existing session records
type ExtractRequest struct {
	Classes []scheduler.Occurrence `json:"classes"`
}

// ExtractResponse reconstructed pattern. Warnings lists pattern records
// that disagree with the first record of their weekday.
type ExtractResponse struct {
	Schedule  scheduler.ExtractedSchedule `json:"schedule"`
	Summary   string                      `json:"summary"`
	DateRange string                      `json:"dateRange"`
	Warnings  []string                    `json:"warnings"`
}

// SummaryRequest a schedule to describe
type SummaryRequest struct {
	scheduler.ExtractedSchedule
}

// SummaryResponse display labels
type SummaryResponse struct {
	Summary   string `json:"summary"`
	DateRange string `json:"dateRange"`
}

// LegacyPreviewRequest older single-time-pair input
type LegacyPreviewRequest struct {
	StartDate       string              `json:"startDate"       binding:"required,ymd"`
	EndDate         string              `json:"endDate"         binding:"required,ymd"`
	Frequency       scheduler.Frequency `json:"frequency"       binding:"required,oneof=daily weekly custom"`
	DaysOfWeek      []scheduler.Weekday `json:"daysOfWeek"      binding:"omitempty,dive,min=0,max=6"`
	StartTime       string              `json:"startTime"       binding:"required,hhmm"`
	EndTime         string              `json:"endTime"         binding:"required,hhmm"`
	Location        string              `json:"location"        binding:"omitempty,max=200"`
	LocationDetails string              `json:"locationDetails" binding:"omitempty,max=2000"`
}

// ToLegacyConfig converts the request into the legacy generator input.
func (r *LegacyPreviewRequest) ToLegacyConfig() scheduler.LegacySessionConfig {
	return scheduler.LegacySessionConfig{
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Frequency:       r.Frequency,
		DaysOfWeek:      r.DaysOfWeek,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Location:        r.Location,
		LocationDetails: r.LocationDetails,
	}
}

// ImportICSResponse pattern recovered from an uploaded calendar
type ImportICSResponse struct {
	ExtractResponse
	EventCount int `json:"eventCount"`
}
