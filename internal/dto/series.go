package dto

import "github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"

// ── class series ──

// DayTimeInput one weekday's meeting time
type DayTimeInput struct {
	DayOfWeek scheduler.Weekday `json:"dayOfWeek" binding:"min=0,max=6"`
	StartTime string            `json:"startTime" binding:"required,hhmm"`
	EndTime   string            `json:"endTime"   binding:"required,hhmm"`
}

// ScheduleInput weekly pattern submitted by the class form
type ScheduleInput struct {
	StartDate       string         `json:"startDate"       binding:"required,ymd"`
	EndDate         string         `json:"endDate"         binding:"required,ymd"`
	DayTimes        []DayTimeInput `json:"dayTimes"        binding:"required,min=1,max=7,dive"`
	Location        string         `json:"location"        binding:"omitempty,max=200"`
	LocationDetails string         `json:"locationDetails" binding:"omitempty,max=2000"`
}

// ToConfig converts the form input into generator input.
func (in *ScheduleInput) ToConfig() scheduler.SchedulerConfig {
	dayTimes := make([]scheduler.DayTimePair, len(in.DayTimes))
	for i, dt := range in.DayTimes {
		dayTimes[i] = scheduler.DayTimePair{DayOfWeek: dt.DayOfWeek, StartTime: dt.StartTime, EndTime: dt.EndTime}
	}
	return scheduler.SchedulerConfig{
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		DayTimes:        dayTimes,
		Location:        in.Location,
		LocationDetails: in.LocationDetails,
	}
}

// CreateSeriesRequest create a recurring class
type CreateSeriesRequest struct {
	ClassName string        `json:"className" binding:"required,min=1,max=200"`
	Schedule  ScheduleInput `json:"schedule"`
}

// UpdateSeriesRequest rename and/or reschedule; Version must match the stored row
type UpdateSeriesRequest struct {
	Version   int            `json:"version"   binding:"required,min=1"`
	ClassName *string        `json:"className" binding:"omitempty,min=1,max=200"`
	Schedule  *ScheduleInput `json:"schedule"`
}

// SeriesListRequest list query
type SeriesListRequest struct {
	PaginationRequest
}

// SeriesResponse a series with its pattern recovered from its sessions
type SeriesResponse struct {
	ID              string                      `json:"id"`
	CoopID          string                      `json:"coopId"`
	ClassName       string                      `json:"className"`
	Location        string                      `json:"location"`
	LocationDetails string                      `json:"locationDetails"`
	Version         int                         `json:"version"`
	Schedule        scheduler.ExtractedSchedule `json:"schedule"`
	Summary         string                      `json:"summary"`
	DateRange       string                      `json:"dateRange"`
	SessionCount    int                         `json:"sessionCount"`
	OneOffCount     int                         `json:"oneOffCount"`
	HasLegacyConfig bool                        `json:"hasLegacyConfig"`
	Warnings        []string                    `json:"warnings,omitempty"`
	CreatedAt       string                      `json:"createdAt"`
	UpdatedAt       string                      `json:"updatedAt"`
}

// SessionResponse one dated session
type SessionResponse struct {
	ID              string            `json:"id"`
	Date            string            `json:"date"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	DayOfWeek       scheduler.Weekday `json:"dayOfWeek"`
	Location        string            `json:"location"`
	LocationDetails string            `json:"locationDetails"`
	IsOneOff        bool              `json:"isOneOff"`
	DateLabel       string            `json:"dateLabel"`
	TimeLabel       string            `json:"timeLabel"`
}

// AddOneOffRequest a single extra session outside the weekly pattern
type AddOneOffRequest struct {
	Date            string `json:"date"            binding:"required,ymd"`
	StartTime       string `json:"startTime"       binding:"required,hhmm"`
	EndTime         string `json:"endTime"         binding:"required,hhmm"`
	Location        string `json:"location"        binding:"omitempty,max=200"`
	LocationDetails string `json:"locationDetails" binding:"omitempty,max=2000"`
}

// MigrateLegacyResponse result of materializing a legacy configuration
type MigrateLegacyResponse struct {
	Series    SeriesResponse `json:"series"`
	Generated int            `json:"generated"`
}
