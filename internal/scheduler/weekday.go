package scheduler

import (
	"sort"
	"time"
)

// Weekday 0=Sunday … 6=Saturday, matching time.Weekday at the calendar boundary.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DisplayOrder week starts on Monday for every user-facing listing.
var DisplayOrder = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var (
	weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	weekdayShort = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// AllWeekdays numeric order, used by the daily legacy frequency.
func AllWeekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// WeekdayOf returns the weekday a calendar date falls on.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// ParseWeekday converts the wire integer form.
func ParseWeekday(n int) (Weekday, bool) {
	d := Weekday(n)
	return d, d.Valid()
}

// Valid reports whether d is one of the seven named days.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return weekdayNames[d]
}

// Short three-letter English abbreviation ("Mon").
func (d Weekday) Short() string {
	if !d.Valid() {
		return "?"
	}
	return weekdayShort[d]
}

// displayRank position of d in DisplayOrder; invalid days sort last.
func (d Weekday) displayRank() int {
	if !d.Valid() {
		return len(DisplayOrder)
	}
	return (int(d) + 6) % 7
}

// SortDayTimes orders pairs Monday..Sunday in place.
func SortDayTimes(pairs []DayTimePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].DayOfWeek.displayRank() < pairs[j].DayOfWeek.displayRank()
	})
}
