package service

import (
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata" // X-WR-TIMEZONE lookups on hosts without zoneinfo

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
)

// ── ICS import ──────────────────────────────────────────────
//
// Turns an iCalendar (RFC 5545) file into occurrence records for the
// extractor. Times are reduced to naive wall-clock values:
//   - floating and TZID times keep their literal clock
//   - UTC times are shown in the calendar's X-WR-TIMEZONE, else UTC
//   - all-day events carry no time pair and are skipped
// RRULE expansion goes through rrule-go and is capped so a rule without
// COUNT or UNTIL cannot run forever. Instances replaced by a RECURRENCE-ID
// VEVENT are dropped from the rule and imported from the replacement.
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize     = 2 << 20
	icsMaxOccurrences  = 1000
	icsOneOffProperty  = "X-COOP-ONE-OFF"
	icsDetailsProperty = "X-COOP-LOCATION-DETAILS"
	icsCalTimezoneProp = "X-WR-TIMEZONE"
)

var icsDateTimeLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
}

// ParseICS reads a calendar and returns one record per event instance and
// the number of VEVENTs that contributed. maxSpanDays bounds open-ended
// recurrences; zero leaves only the occurrence cap.
func ParseICS(r io.Reader, maxSpanDays int) ([]scheduler.Occurrence, int, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(r, icsMaxFileSize))
	if err != nil {
		return nil, 0, err
	}

	zone := time.UTC
	for _, p := range cal.CalendarProperties {
		if strings.EqualFold(p.IANAToken, icsCalTimezoneProp) {
			if loc, err := time.LoadLocation(strings.TrimSpace(p.Value)); err == nil {
				zone = loc
			}
		}
	}

	// a VEVENT carrying RECURRENCE-ID replaces one instance of the
	// recurring VEVENT with the same UID
	events := cal.Events()
	masters := make(map[string]*ics.VEvent)
	replaced := make(map[string]map[string]bool)
	for _, evt := range events {
		uid := evt.Id()
		if uid == "" {
			continue
		}
		rid := evt.GetProperty(ics.ComponentPropertyRecurrenceId)
		if rid == nil {
			if evt.GetProperty(ics.ComponentPropertyRrule) != nil {
				masters[uid] = evt
			}
			continue
		}
		if date, ok := icsDate(rid.Value, zone); ok {
			if replaced[uid] == nil {
				replaced[uid] = make(map[string]bool)
			}
			replaced[uid][date] = true
		}
	}

	var (
		records []scheduler.Occurrence
		count   int
	)
	for _, evt := range events {
		var (
			recs []scheduler.Occurrence
			ok   bool
		)
		if rid := evt.GetProperty(ics.ComponentPropertyRecurrenceId); rid != nil {
			recs, ok = overrideRecords(evt, rid, masters[evt.Id()], zone)
		} else {
			recs, ok = eventRecords(evt, zone, maxSpanDays, replaced[evt.Id()])
		}
		if !ok {
			continue
		}
		count++
		records = append(records, recs...)
		if len(records) > icsMaxOccurrences {
			return nil, 0, fmt.Errorf("calendar expands to more than %d sessions", icsMaxOccurrences)
		}
	}
	return records, count, nil
}

// eventBase reads the start and the shared fields of a timed VEVENT.
func eventBase(evt *ics.VEvent, zone *time.Location) (time.Time, scheduler.Occurrence, bool) {
	start, ok := icsWallClock(evt.GetProperty(ics.ComponentPropertyDtStart), zone)
	if !ok {
		return time.Time{}, scheduler.Occurrence{}, false
	}

	end, ok := icsWallClock(evt.GetProperty(ics.ComponentPropertyDtEnd), zone)
	if !ok {
		d, hasDur := icsDuration(evt.GetProperty(ics.ComponentPropertyDuration))
		if !hasDur {
			return time.Time{}, scheduler.Occurrence{}, false
		}
		end = start.Add(d)
	}

	return start, scheduler.Occurrence{
		StartTime:       start.Format(scheduler.ClockLayout),
		EndTime:         end.Format(scheduler.ClockLayout),
		Location:        propValue(evt, ics.ComponentPropertyLocation),
		LocationDetails: propValue(evt, ics.ComponentProperty(icsDetailsProperty)),
	}, true
}

// eventRecords expands one VEVENT into records, leaving out EXDATEs and
// the dates in replaced.
func eventRecords(evt *ics.VEvent, zone *time.Location, maxSpanDays int, replaced map[string]bool) ([]scheduler.Occurrence, bool) {
	start, base, ok := eventBase(evt, zone)
	if !ok {
		return nil, false
	}

	rule := evt.GetProperty(ics.ComponentPropertyRrule)
	if rule == nil {
		rec := base
		rec.Date = scheduler.FormatDate(start)
		rec.IsOneOff = markedOneOff(evt)
		return []scheduler.Occurrence{rec}, true
	}

	starts, err := expandRRule(rule.Value, start, maxSpanDays)
	if err != nil {
		return nil, false
	}

	excluded := icsExDates(evt, zone)
	out := make([]scheduler.Occurrence, 0, len(starts))
	for _, t := range starts {
		date := scheduler.FormatDate(t)
		if excluded[date] || replaced[date] {
			continue
		}
		rec := base
		rec.Date = date
		out = append(out, rec)
	}
	return out, len(out) > 0
}

// overrideRecords emits the replacement for one instance of a recurring
// event. A replacement that leaves its master's slot (other date, times or
// location) is a one-off; a cancelled instance yields nothing.
func overrideRecords(evt *ics.VEvent, rid *ics.IANAProperty, master *ics.VEvent, zone *time.Location) ([]scheduler.Occurrence, bool) {
	if strings.EqualFold(propValue(evt, ics.ComponentPropertyStatus), "CANCELLED") {
		return nil, false
	}
	start, rec, ok := eventBase(evt, zone)
	if !ok {
		return nil, false
	}
	rec.Date = scheduler.FormatDate(start)

	orig, ok := icsWallClock(rid, zone)
	moved := !ok || scheduler.FormatDate(orig) != rec.Date || orig.Format(scheduler.ClockLayout) != rec.StartTime
	if master != nil {
		if _, m, ok := eventBase(master, zone); ok {
			moved = moved || m.EndTime != rec.EndTime || m.Location != rec.Location
		}
	}
	rec.IsOneOff = moved || markedOneOff(evt)
	return []scheduler.Occurrence{rec}, true
}

func markedOneOff(evt *ics.VEvent) bool {
	return strings.EqualFold(propValue(evt, ics.ComponentProperty(icsOneOffProperty)), "TRUE")
}

// expandRRule lists the instance start times of a recurrence anchored at dtStart.
func expandRRule(value string, dtStart time.Time, maxSpanDays int) ([]time.Time, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = dtStart

	// a date-only UNTIL covers the whole day
	if !opt.Until.IsZero() && untilIsDate(value) {
		opt.Until = opt.Until.Add(24*time.Hour - time.Second)
	}
	if opt.Until.IsZero() && opt.Count == 0 && maxSpanDays > 0 {
		opt.Until = dtStart.AddDate(0, 0, maxSpanDays)
	}
	if opt.Count == 0 || opt.Count > icsMaxOccurrences+1 {
		opt.Count = icsMaxOccurrences + 1
	}

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, err
	}
	return rule.All(), nil
}

// untilIsDate reports whether the rule's UNTIL is a DATE value.
func untilIsDate(rule string) bool {
	for _, part := range strings.Split(rule, ";") {
		name, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if found && strings.EqualFold(name, "UNTIL") {
			return !strings.ContainsAny(val, "Tt")
		}
	}
	return false
}

// icsWallClock parses a DATE-TIME property into a naive wall-clock time
// (UTC location, literal clock). DATE values are rejected.
func icsWallClock(prop *ics.IANAProperty, zone *time.Location) (time.Time, bool) {
	if prop == nil {
		return time.Time{}, false
	}
	val := strings.TrimSpace(prop.Value)
	for _, layout := range icsDateTimeLayouts {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			t = t.In(zone)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// icsDuration parses the time part of an RFC 5545 duration (PT1H30M).
func icsDuration(prop *ics.IANAProperty) (time.Duration, bool) {
	if prop == nil {
		return 0, false
	}
	v := strings.ToUpper(strings.TrimSpace(prop.Value))
	if !strings.HasPrefix(v, "PT") {
		return 0, false
	}
	d, err := time.ParseDuration(strings.ToLower(strings.TrimPrefix(v, "PT")))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// icsExDates collects excluded dates as YYYY-MM-DD.
func icsExDates(evt *ics.VEvent, zone *time.Location) map[string]bool {
	out := make(map[string]bool)
	for i := range evt.Properties {
		prop := &evt.Properties[i]
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if date, ok := icsDate(v, zone); ok {
				out[date] = true
			}
		}
	}
	return out
}

// icsDate reduces a DATE or DATE-TIME value to YYYY-MM-DD.
func icsDate(value string, zone *time.Location) (string, bool) {
	single := ics.IANAProperty{BaseProperty: ics.BaseProperty{Value: value}}
	if t, ok := icsWallClock(&single, zone); ok {
		return scheduler.FormatDate(t), true
	}
	if t, err := time.Parse("20060102", strings.TrimSpace(value)); err == nil {
		return scheduler.FormatDate(t), true
	}
	return "", false
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	if p := evt.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}
