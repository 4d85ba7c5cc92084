package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// NoScheduleSummary rendered for a schedule without a recurring pattern.
const NoScheduleSummary = "No recurring schedule"

// FormatTime12h renders "HH:MM" as a 12-hour label: "10:00" → "10am",
// "13:30" → "1:30pm", "00:15" → "12:15am". Strings that are not HH:MM are
// returned unchanged.
func FormatTime12h(clock string) string {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return clock
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return clock
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return clock
	}

	period := "am"
	if h >= 12 {
		period = "pm"
	}
	hour := h % 12
	if hour == 0 {
		hour = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d%s", hour, period)
	}
	return fmt.Sprintf("%d:%02d%s", hour, m, period)
}

// FormatScheduleSummary renders a one-line description of a schedule.
//
// When every day shares one time pair: "Mon & Wed, 10am - 11:30am".
// Otherwise each day is listed with its own times: "Mon 9am-10am, Wed 2pm-3pm".
func FormatScheduleSummary(s ExtractedSchedule) string {
	if !s.HasSchedule || len(s.DayTimes) == 0 {
		return NoScheduleSummary
	}

	pairs := make([]DayTimePair, len(s.DayTimes))
	copy(pairs, s.DayTimes)
	SortDayTimes(pairs)

	uniform := true
	for _, p := range pairs[1:] {
		if p.StartTime != pairs[0].StartTime || p.EndTime != pairs[0].EndTime {
			uniform = false
			break
		}
	}

	if uniform {
		days := make([]string, len(pairs))
		for i, p := range pairs {
			days[i] = p.DayOfWeek.Short()
		}
		return fmt.Sprintf("%s, %s - %s",
			strings.Join(days, " & "), FormatTime12h(pairs[0].StartTime), FormatTime12h(pairs[0].EndTime))
	}

	segments := make([]string, len(pairs))
	for i, p := range pairs {
		segments[i] = fmt.Sprintf("%s %s-%s", p.DayOfWeek.Short(), FormatTime12h(p.StartTime), FormatTime12h(p.EndTime))
	}
	return strings.Join(segments, ", ")
}

// FormatDateRange renders "Jan 6, 2025 - Jan 19, 2025"; empty when either
// bound is missing or unparseable.
func FormatDateRange(startDate, endDate string) string {
	start, ok := ParseDate(startDate)
	if !ok {
		return ""
	}
	end, ok := ParseDate(endDate)
	if !ok {
		return ""
	}
	return start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
}

// FormatOccurrenceDate renders a single date as "Mon, Jan 6"; the input is
// returned unchanged when it cannot be parsed.
func FormatOccurrenceDate(date string) string {
	t, ok := ParseDate(date)
	if !ok {
		return date
	}
	return t.Format("Mon, Jan 2")
}
