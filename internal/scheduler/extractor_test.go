package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_RoundTrip(t *testing.T) {
	cfg := SchedulerConfig{
		StartDate: "2025-01-07", // Tuesday, not a class day
		EndDate:   "2025-02-20", // Thursday, not a class day
		DayTimes: []DayTimePair{
			{DayOfWeek: Wednesday, StartTime: "14:00", EndTime: "15:00"},
			{DayOfWeek: Sunday, StartTime: "16:00", EndTime: "17:00"},
			{DayOfWeek: Monday, StartTime: "09:00", EndTime: "10:00"},
		},
		Location:        "Library Annex",
		LocationDetails: "Park in back",
	}

	previews := GenerateClassesFromConfig(cfg)
	records := make([]Occurrence, len(previews))
	for i, p := range previews {
		records[i] = Occurrence{Date: p.Date, StartTime: p.StartTime, EndTime: p.EndTime,
			Location: p.Location, LocationDetails: p.LocationDetails}
	}

	got := ExtractScheduleFromClasses(records)

	assert.True(t, got.HasSchedule)
	assert.Equal(t, "2025-01-08", got.StartDate)
	assert.Equal(t, "2025-02-19", got.EndDate)
	assert.ElementsMatch(t, cfg.DayTimes, got.DayTimes)
	assert.Equal(t, []Weekday{Monday, Wednesday, Sunday},
		[]Weekday{got.DayTimes[0].DayOfWeek, got.DayTimes[1].DayOfWeek, got.DayTimes[2].DayOfWeek})
	assert.Equal(t, "Library Annex", got.Location)
	assert.Equal(t, "Park in back", got.LocationDetails)

	// re-expanding the extracted config yields the same occurrences
	assert.Equal(t, previews, GenerateClassesFromConfig(got.Config()))
}

func TestExtract_IgnoresOneOffs(t *testing.T) {
	records := []Occurrence{
		{Date: "2025-03-03", StartTime: "10:00", EndTime: "11:00", Location: "Hall"},
		{Date: "2025-02-01", StartTime: "08:00", EndTime: "09:00", Location: "Field trip", IsOneOff: true},
		{Date: "2025-03-05", StartTime: "13:00", EndTime: "14:00", Location: "Hall"},
		{Date: "2025-04-30", StartTime: "18:00", EndTime: "20:00", Location: "Recital", IsOneOff: true},
		{Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00", Location: "Hall"},
	}

	got := ExtractScheduleFromClasses(records)

	assert.True(t, got.HasSchedule)
	assert.Equal(t, "2025-03-03", got.StartDate)
	assert.Equal(t, "2025-03-10", got.EndDate)
	assert.Equal(t, []DayTimePair{
		{DayOfWeek: Monday, StartTime: "10:00", EndTime: "11:00"},
		{DayOfWeek: Wednesday, StartTime: "13:00", EndTime: "14:00"},
	}, got.DayTimes)
	assert.Equal(t, "Hall", got.Location)
}

func TestExtract_NoScheduleSentinel(t *testing.T) {
	for name, records := range map[string][]Occurrence{
		"empty":       nil,
		"only oneoff": {{Date: "2025-03-03", StartTime: "10:00", EndTime: "11:00", IsOneOff: true}},
	} {
		t.Run(name, func(t *testing.T) {
			got := ExtractScheduleFromClasses(records)
			assert.False(t, got.HasSchedule)
			assert.NotNil(t, got.DayTimes)
			assert.Empty(t, got.DayTimes)
			assert.Empty(t, got.StartDate)
			assert.Empty(t, got.EndDate)
		})
	}
}

func TestExtract_FirstOccurrenceWins(t *testing.T) {
	records := []Occurrence{
		{Date: "2025-03-10", StartTime: "11:00", EndTime: "12:00", Location: "Later"},
		{Date: "2025-03-03", StartTime: "10:00", EndTime: "11:00", Location: "Earlier"},
	}

	got := ExtractScheduleFromClasses(records)

	require.Len(t, got.DayTimes, 1)
	assert.Equal(t, "10:00", got.DayTimes[0].StartTime)
	assert.Equal(t, "Earlier", got.Location)
}

func TestExtract_NormalizesISODatetimes(t *testing.T) {
	records := []Occurrence{
		{Date: "2025-03-03T00:00:00.000Z", StartTime: "10:00", EndTime: "11:00"},
		{Date: "2025-03-17T00:00:00.000Z", StartTime: "10:00", EndTime: "11:00"},
	}

	got := ExtractScheduleFromClasses(records)

	assert.Equal(t, "2025-03-03", got.StartDate)
	assert.Equal(t, "2025-03-17", got.EndDate)
	assert.Equal(t, Monday, got.DayTimes[0].DayOfWeek)
}

func TestExtract_SkipsUnparseableDates(t *testing.T) {
	records := []Occurrence{
		{Date: "", StartTime: "10:00", EndTime: "11:00"},
		{Date: "2025-03-04", StartTime: "10:00", EndTime: "11:00"},
	}

	got := ExtractScheduleFromClasses(records)

	assert.Equal(t, "2025-03-04", got.StartDate)
	assert.Equal(t, []DayTimePair{{DayOfWeek: Tuesday, StartTime: "10:00", EndTime: "11:00"}}, got.DayTimes)
}

func TestCheckConsistency(t *testing.T) {
	records := []Occurrence{
		{Date: "2025-03-03", StartTime: "10:00", EndTime: "11:00", Location: "Hall"},
		{Date: "2025-03-10", StartTime: "10:30", EndTime: "11:00", Location: "Hall"},
		{Date: "2025-03-12", StartTime: "13:00", EndTime: "14:00", Location: "Gym"},
		{Date: "2025-03-17", StartTime: "09:00", EndTime: "09:30", IsOneOff: true},
	}

	issues := CheckConsistency(records)

	require.Len(t, issues, 2)
	assert.Equal(t, Inconsistency{DayOfWeek: Monday, Date: "2025-03-10", Field: "startTime", Expected: "10:00", Actual: "10:30"}, issues[0])
	assert.Equal(t, Inconsistency{DayOfWeek: Wednesday, Date: "2025-03-12", Field: "location", Expected: "Hall", Actual: "Gym"}, issues[1])
	assert.Contains(t, issues[0].String(), "startTime")
}

func TestCheckConsistency_CleanInput(t *testing.T) {
	previews := GenerateClassesFromConfig(twoWeekConfig(DayTimePair{DayOfWeek: Monday, StartTime: "10:00", EndTime: "11:30"}))
	records := make([]Occurrence, len(previews))
	for i, p := range previews {
		records[i] = Occurrence{Date: p.Date, StartTime: p.StartTime, EndTime: p.EndTime, Location: p.Location, LocationDetails: p.LocationDetails}
	}

	assert.Empty(t, CheckConsistency(records))
}
