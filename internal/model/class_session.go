package model

import (
	"time"

	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
)

// ClassSession one dated meeting of a class. Pattern sessions come from
// the generator; one-off sessions are added by hand and never shape the
// extracted pattern.
type ClassSession struct {
	SessionID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sessionId"`
	SeriesID        *string   `gorm:"type:uuid;index"                                json:"seriesId,omitempty"`
	CoopID          string    `gorm:"type:uuid;not null"                             json:"coopId"`
	SessionDate     time.Time `gorm:"type:date;not null"                             json:"sessionDate"`
	StartTime       string    `gorm:"type:varchar(5);not null"                       json:"startTime"`
	EndTime         string    `gorm:"type:varchar(5);not null"                       json:"endTime"`
	DayOfWeek       int       `gorm:"type:smallint;not null"                         json:"dayOfWeek"`
	Location        string    `gorm:"type:varchar(200);not null;default:''"          json:"location"`
	LocationDetails string    `gorm:"type:text;not null;default:''"                  json:"locationDetails"`
	IsOneOff        bool      `gorm:"not null;default:false"                         json:"isOneOff"`
	SoftDeleteModel
}

// TableName table name
func (ClassSession) TableName() string { return "class_sessions" }

// Occurrence the session as extractor input.
func (s *ClassSession) Occurrence() scheduler.Occurrence {
	return scheduler.Occurrence{
		Date:            scheduler.FormatDate(s.SessionDate),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Location:        s.Location,
		LocationDetails: s.LocationDetails,
		IsOneOff:        s.IsOneOff,
	}
}

// NewPatternSession converts a generated preview into a session row.
// The preview date is assumed valid; it comes from the generator.
func NewPatternSession(seriesID, coopID string, p scheduler.ClassPreview) ClassSession {
	date, _ := scheduler.ParseDate(p.Date)
	sid := seriesID
	return ClassSession{
		SeriesID:        &sid,
		CoopID:          coopID,
		SessionDate:     date,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		DayOfWeek:       int(p.DayOfWeek),
		Location:        p.Location,
		LocationDetails: p.LocationDetails,
	}
}
