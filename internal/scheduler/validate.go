package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// FieldError a problem with one config field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in a config.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid schedule: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// IsClock reports whether s is a zero-padded 24-hour "HH:MM".
func IsClock(s string) bool {
	if len(s) != len(ClockLayout) {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// IsDate reports whether s is a valid "YYYY-MM-DD" calendar date.
func IsDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidateConfig checks what the generator itself never rejects: required
// fields, well-formed dates and times, date order, time order within a day
// and one entry per weekday. It returns nil or a *ValidationError.
func ValidateConfig(cfg SchedulerConfig) error {
	verr := &ValidationError{}

	start, startOK := validateDate(verr, "startDate", cfg.StartDate)
	end, endOK := validateDate(verr, "endDate", cfg.EndDate)
	if startOK && endOK && end.Before(start) {
		verr.add("endDate", "must not be before startDate")
	}

	if len(cfg.DayTimes) == 0 {
		verr.add("dayTimes", "at least one day is required")
	}
	seen := make(map[Weekday]bool, len(cfg.DayTimes))
	for i, dt := range cfg.DayTimes {
		field := fmt.Sprintf("dayTimes[%d]", i)
		if !dt.DayOfWeek.Valid() {
			verr.add(field+".dayOfWeek", "must be between 0 and 6")
		} else if seen[dt.DayOfWeek] {
			verr.add(field+".dayOfWeek", "%s is listed more than once", dt.DayOfWeek)
		}
		seen[dt.DayOfWeek] = true

		startClock := IsClock(dt.StartTime)
		endClock := IsClock(dt.EndTime)
		if !startClock {
			verr.add(field+".startTime", "must be HH:MM")
		}
		if !endClock {
			verr.add(field+".endTime", "must be HH:MM")
		}
		// zero-padded HH:MM compares correctly as a string
		if startClock && endClock && dt.StartTime >= dt.EndTime {
			verr.add(field+".endTime", "must be after startTime")
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validateDate(verr *ValidationError, field, value string) (time.Time, bool) {
	if value == "" {
		verr.add(field, "is required")
		return time.Time{}, false
	}
	if !IsDate(value) {
		verr.add(field, "must be YYYY-MM-DD")
		return time.Time{}, false
	}
	t, _ := ParseDate(value)
	return t, true
}
