package scheduler

import (
	"fmt"
	"sort"
)

// ExtractScheduleFromClasses infers the weekly pattern and bounding range
// that produced records.
//
// One-off records are ignored. Records are ordered by their date string;
// the earliest supplies StartDate and the location fields, the latest
// supplies EndDate. For each weekday the first record seen decides the
// time pair. Records whose date cannot be parsed are skipped.
func ExtractScheduleFromClasses(records []Occurrence) ExtractedSchedule {
	pattern := patternRecords(records)
	if len(pattern) == 0 {
		return ExtractedSchedule{DayTimes: []DayTimePair{}}
	}

	first, last := pattern[0], pattern[len(pattern)-1]

	seen := make(map[Weekday]bool, 7)
	dayTimes := make([]DayTimePair, 0, 7)
	for _, r := range pattern {
		d, _ := ParseDate(r.Date)
		day := WeekdayOf(d)
		if seen[day] {
			continue
		}
		seen[day] = true
		dayTimes = append(dayTimes, DayTimePair{
			DayOfWeek: day,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	SortDayTimes(dayTimes)

	return ExtractedSchedule{
		StartDate:       datePrefix(first.Date),
		EndDate:         datePrefix(last.Date),
		DayTimes:        dayTimes,
		Location:        first.Location,
		LocationDetails: first.LocationDetails,
		HasSchedule:     true,
	}
}

// patternRecords drops one-offs and unparseable dates, then sorts by date string.
func patternRecords(records []Occurrence) []Occurrence {
	pattern := make([]Occurrence, 0, len(records))
	for _, r := range records {
		if r.IsOneOff {
			continue
		}
		if _, ok := ParseDate(r.Date); !ok {
			continue
		}
		pattern = append(pattern, r)
	}
	sort.SliceStable(pattern, func(i, j int) bool {
		return pattern[i].Date < pattern[j].Date
	})
	return pattern
}

// ── consistency diagnostic ──

// Inconsistency a pattern record that disagrees with the first record on its weekday.
type Inconsistency struct {
	DayOfWeek Weekday `json:"dayOfWeek"`
	Date      string  `json:"date"`
	Field     string  `json:"field"`
	Expected  string  `json:"expected"`
	Actual    string  `json:"actual"`
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s %s: %s is %q, expected %q", i.Date, i.DayOfWeek.Short(), i.Field, i.Actual, i.Expected)
}

// CheckConsistency lists every place where ExtractScheduleFromClasses silently
// resolved a disagreement by keeping the first occurrence. Location fields are
// compared against the earliest record overall, since only that one is kept.
func CheckConsistency(records []Occurrence) []Inconsistency {
	pattern := patternRecords(records)
	if len(pattern) == 0 {
		return nil
	}

	var issues []Inconsistency
	firstByDay := make(map[Weekday]Occurrence, 7)
	earliest := pattern[0]
	for _, r := range pattern {
		d, _ := ParseDate(r.Date)
		day := WeekdayOf(d)
		date := datePrefix(r.Date)

		ref, ok := firstByDay[day]
		if !ok {
			firstByDay[day] = r
		} else {
			if r.StartTime != ref.StartTime {
				issues = append(issues, Inconsistency{day, date, "startTime", ref.StartTime, r.StartTime})
			}
			if r.EndTime != ref.EndTime {
				issues = append(issues, Inconsistency{day, date, "endTime", ref.EndTime, r.EndTime})
			}
		}
		if r.Location != earliest.Location {
			issues = append(issues, Inconsistency{day, date, "location", earliest.Location, r.Location})
		}
		if r.LocationDetails != earliest.LocationDetails {
			issues = append(issues, Inconsistency{day, date, "locationDetails", earliest.LocationDetails, r.LocationDetails})
		}
	}
	return issues
}
