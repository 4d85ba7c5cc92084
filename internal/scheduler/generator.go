package scheduler

import "time"

// Generator expands configs with an optional ceiling on the date span.
// A zero MaxSpanDays means unbounded.
type Generator struct {
	MaxSpanDays int
}

// NewGenerator creates a Generator that refuses spans longer than maxSpanDays.
func NewGenerator(maxSpanDays int) *Generator {
	return &Generator{MaxSpanDays: maxSpanDays}
}

// Generate expands cfg like GenerateClassesFromConfig, but returns
// ErrRangeTooLarge instead of iterating a span above the ceiling.
func (g *Generator) Generate(cfg SchedulerConfig) ([]ClassPreview, error) {
	start, end, ok := generationBounds(cfg)
	if !ok {
		return []ClassPreview{}, nil
	}
	if g.MaxSpanDays > 0 && SpanDays(start, end) > g.MaxSpanDays {
		return nil, ErrRangeTooLarge
	}
	return expand(cfg, start, end), nil
}

// GenerateClassesFromConfig returns every occurrence in [StartDate, EndDate]
// whose weekday has an entry in DayTimes, ascending by date.
//
// Missing dates, an empty DayTimes, an unparseable date or an inverted range
// all yield an empty slice. Time strings are copied through unchecked.
func GenerateClassesFromConfig(cfg SchedulerConfig) []ClassPreview {
	start, end, ok := generationBounds(cfg)
	if !ok {
		return []ClassPreview{}
	}
	return expand(cfg, start, end)
}

func generationBounds(cfg SchedulerConfig) (time.Time, time.Time, bool) {
	if cfg.StartDate == "" || cfg.EndDate == "" || len(cfg.DayTimes) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, ok := ParseDate(cfg.StartDate)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := ParseDate(cfg.EndDate)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

type clockPair struct {
	start string
	end   string
}

func expand(cfg SchedulerConfig, start, end time.Time) []ClassPreview {
	// last entry wins on a duplicated weekday
	byDay := make(map[Weekday]clockPair, len(cfg.DayTimes))
	for _, dt := range cfg.DayTimes {
		byDay[dt.DayOfWeek] = clockPair{start: dt.StartTime, end: dt.EndTime}
	}

	result := make([]ClassPreview, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := WeekdayOf(d)
		pair, ok := byDay[day]
		if !ok {
			continue
		}
		result = append(result, ClassPreview{
			Date:            FormatDate(d),
			StartTime:       pair.start,
			EndTime:         pair.end,
			Location:        cfg.Location,
			LocationDetails: cfg.LocationDetails,
			DayOfWeek:       day,
		})
	}
	return result
}
