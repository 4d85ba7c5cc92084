// Package scheduler expands a weekly class pattern into dated occurrences
// and reconstructs the pattern from existing occurrences.
//
// Every function in this package is pure: no I/O, no shared state. Dates
// are naive local calendar dates ("YYYY-MM-DD") and times are wall-clock
// "HH:MM" strings; neither carries a timezone.
package scheduler

import (
	"errors"
	"time"
)

const (
	// DateLayout calendar date form on the wire.
	DateLayout = "2006-01-02"
	// ClockLayout wall-clock form on the wire.
	ClockLayout = "15:04"
)

// ErrRangeTooLarge the requested date span exceeds the generator's ceiling.
var ErrRangeTooLarge = errors.New("scheduler: date range too large")

// DayTimePair one weekday's meeting time.
type DayTimePair struct {
	DayOfWeek Weekday `json:"dayOfWeek"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// SchedulerConfig compact representation of a recurring schedule.
// StartDate and EndDate are inclusive; DayTimes holds at most one entry per weekday.
type SchedulerConfig struct {
	StartDate       string        `json:"startDate"`
	EndDate         string        `json:"endDate"`
	DayTimes        []DayTimePair `json:"dayTimes"`
	Location        string        `json:"location"`
	LocationDetails string        `json:"locationDetails"`
}

// ClassPreview one concrete, dated occurrence derived from a config.
type ClassPreview struct {
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Location        string  `json:"location"`
	LocationDetails string  `json:"locationDetails"`
	DayOfWeek       Weekday `json:"dayOfWeek"`
}

// Occurrence an existing session record as fed to the extractor.
// Date may be a full ISO datetime; only its date prefix is used.
type Occurrence struct {
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Location        string `json:"location,omitempty"`
	LocationDetails string `json:"locationDetails,omitempty"`
	IsOneOff        bool   `json:"isOneOff,omitempty"`
}

// ExtractedSchedule the pattern inferred from a set of occurrences.
// HasSchedule is false when no pattern occurrence was found.
type ExtractedSchedule struct {
	StartDate       string        `json:"startDate"`
	EndDate         string        `json:"endDate"`
	DayTimes        []DayTimePair `json:"dayTimes"`
	Location        string        `json:"location"`
	LocationDetails string        `json:"locationDetails"`
	HasSchedule     bool          `json:"hasSchedule"`
}

// Config returns the schedule as a generator input.
func (e ExtractedSchedule) Config() SchedulerConfig {
	dayTimes := make([]DayTimePair, len(e.DayTimes))
	copy(dayTimes, e.DayTimes)
	return SchedulerConfig{
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		DayTimes:        dayTimes,
		Location:        e.Location,
		LocationDetails: e.LocationDetails,
	}
}

// ── calendar helpers ──

// datePrefix keeps the YYYY-MM-DD part of a date or ISO datetime string.
func datePrefix(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// ParseDate parses a calendar date (or the date part of an ISO datetime) as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, datePrefix(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate serializes a calendar date back to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SpanDays inclusive number of calendar days in [start, end]; zero when inverted.
func SpanDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
