package scheduler

// Frequency legacy recurrence selector.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	}
	return false
}

// LegacySessionConfig older generation input: one global time pair applied
// to a flat weekday list. Kept only to read series created before per-day times.
type LegacySessionConfig struct {
	StartDate       string    `json:"startDate"`
	EndDate         string    `json:"endDate"`
	Frequency       Frequency `json:"frequency"`
	DaysOfWeek      []Weekday `json:"daysOfWeek"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	Location        string    `json:"location"`
	LocationDetails string    `json:"locationDetails"`
}

// ToSchedulerConfig rewrites the legacy input as a per-day config. Daily
// expands to all seven weekdays; any other frequency uses DaysOfWeek verbatim.
func (c LegacySessionConfig) ToSchedulerConfig() SchedulerConfig {
	days := c.DaysOfWeek
	if c.Frequency == FrequencyDaily {
		days = AllWeekdays()
	}

	dayTimes := make([]DayTimePair, 0, len(days))
	for _, d := range days {
		dayTimes = append(dayTimes, DayTimePair{DayOfWeek: d, StartTime: c.StartTime, EndTime: c.EndTime})
	}

	return SchedulerConfig{
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		DayTimes:        dayTimes,
		Location:        c.Location,
		LocationDetails: c.LocationDetails,
	}
}

// GenerateSessionsFromConfig legacy generation path.
func GenerateSessionsFromConfig(c LegacySessionConfig) []ClassPreview {
	return GenerateClassesFromConfig(c.ToSchedulerConfig())
}
