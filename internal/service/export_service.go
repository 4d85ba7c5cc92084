package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/internal/model"
	"github.com/mdavis72884/bramble-claude-sub001/internal/repository"
	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
)

// ── export module errors ──

var ErrExportGenerateFail = errors.New("failed to generate export file")

const icsProductID = "-//Bramble//Class Schedule//EN"

var rruleDays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ExportService series export. Content is returned in a buffer together
// with a suggested filename; the handler sets the response headers.
type ExportService interface {
	// ExportICS one recurring VEVENT per weekday of the pattern plus one
	// VEVENT per session the pattern does not describe.
	ExportICS(ctx context.Context, id, coopID string) (*bytes.Buffer, string, error)
	// ExportXLSX every session as a spreadsheet row.
	ExportXLSX(ctx context.Context, id, coopID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportICS
// ═══════════════════════════════════════════════════════════
//
// The weekly pattern is recovered with the extractor and regenerated; each
// weekday becomes DTSTART + RRULE:FREQ=WEEKLY;COUNT=n;BYDAY=xx with EXDATEs
// for regenerated dates that have no exactly matching stored session.
// Stored sessions no rule covers (one-offs, edited sessions) are exported
// individually. All times are floating local times.

func (s *exportService) ExportICS(ctx context.Context, id, coopID string) (*bytes.Buffer, string, error) {
	series, sessions, err := s.load(ctx, id, coopID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(series.ClassName)
	stamp := s.now().UTC()

	covered := make([]bool, len(sessions))
	schedule := scheduler.ExtractScheduleFromClasses(sessionRecords(sessions))
	if schedule.HasSchedule {
		expected := scheduler.GenerateClassesFromConfig(schedule.Config())
		for _, dt := range schedule.DayTimes {
			s.addRecurringEvent(cal, series, schedule, dt, expected, sessions, covered, stamp)
		}
	}

	for i := range sessions {
		if covered[i] {
			continue
		}
		addSingleEvent(cal, series, &sessions[i], stamp)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, exportFilename(series.ClassName, "ics"), nil
}

func (s *exportService) addRecurringEvent(
	cal *ics.Calendar,
	series *model.ClassSeries,
	schedule scheduler.ExtractedSchedule,
	dt scheduler.DayTimePair,
	expected []scheduler.ClassPreview,
	sessions []model.ClassSession,
	covered []bool,
	stamp time.Time,
) {
	var (
		first   string
		count   int
		exdates []string
	)
	for _, p := range expected {
		if p.DayOfWeek != dt.DayOfWeek {
			continue
		}
		count++
		if first == "" {
			first = p.Date
		}
		if i := matchSession(sessions, covered, p); i >= 0 {
			covered[i] = true
		} else {
			exdates = append(exdates, icsFloating(p.Date, p.StartTime))
		}
	}
	if count == 0 {
		return
	}

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Count:     count,
		Byweekday: []rrule.Weekday{rruleDays[dt.DayOfWeek]},
	}

	evt := cal.AddEvent(fmt.Sprintf("%s-%s@bramble", series.SeriesID, strings.ToLower(dt.DayOfWeek.Short())))
	evt.SetDtStampTime(stamp)
	evt.SetSummary(series.ClassName)
	evt.SetProperty(ics.ComponentPropertyDtStart, icsFloating(first, dt.StartTime))
	evt.SetProperty(ics.ComponentPropertyDtEnd, icsFloating(first, dt.EndTime))
	evt.AddProperty(ics.ComponentPropertyRrule, opt.RRuleString())
	for _, ex := range exdates {
		evt.AddProperty(ics.ComponentPropertyExdate, ex)
	}
	if schedule.Location != "" {
		evt.SetLocation(schedule.Location)
	}
	if schedule.LocationDetails != "" {
		evt.SetDescription(schedule.LocationDetails)
		evt.SetProperty(ics.ComponentProperty(icsDetailsProperty), schedule.LocationDetails)
	}
}

func addSingleEvent(cal *ics.Calendar, series *model.ClassSeries, session *model.ClassSession, stamp time.Time) {
	date := scheduler.FormatDate(session.SessionDate)
	uid := session.SessionID
	if uid == "" {
		uid = fmt.Sprintf("%s-%s-%s", series.SeriesID, date, session.StartTime)
	}

	evt := cal.AddEvent(uid + "@bramble")
	evt.SetDtStampTime(stamp)
	evt.SetSummary(series.ClassName)
	evt.SetProperty(ics.ComponentPropertyDtStart, icsFloating(date, session.StartTime))
	evt.SetProperty(ics.ComponentPropertyDtEnd, icsFloating(date, session.EndTime))
	if session.Location != "" {
		evt.SetLocation(session.Location)
	}
	if session.LocationDetails != "" {
		evt.SetDescription(session.LocationDetails)
		evt.SetProperty(ics.ComponentProperty(icsDetailsProperty), session.LocationDetails)
	}
	if session.IsOneOff {
		evt.SetProperty(ics.ComponentProperty(icsOneOffProperty), "TRUE")
	}
}

// matchSession finds an uncovered pattern session identical to p.
func matchSession(sessions []model.ClassSession, covered []bool, p scheduler.ClassPreview) int {
	for i := range sessions {
		ss := &sessions[i]
		if covered[i] || ss.IsOneOff {
			continue
		}
		if scheduler.FormatDate(ss.SessionDate) == p.Date &&
			ss.StartTime == p.StartTime && ss.EndTime == p.EndTime &&
			ss.Location == p.Location && ss.LocationDetails == p.LocationDetails {
			return i
		}
	}
	return -1
}

// icsFloating renders a date and HH:MM clock as a floating DATE-TIME.
func icsFloating(date, clock string) string {
	return strings.ReplaceAll(date, "-", "") + "T" + strings.ReplaceAll(clock, ":", "") + "00"
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX
// ═══════════════════════════════════════════════════════════
//
// Sheet "Sessions": one row per session in calendar order.
// Sheet "Summary": class name, pattern summary, date range, counts.

func (s *exportService) ExportXLSX(ctx context.Context, id, coopID string) (*bytes.Buffer, string, error) {
	series, sessions, err := s.load(ctx, id, coopID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sessions"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "D", 10)
	f.SetColWidth(sheet, "E", "E", 24)
	f.SetColWidth(sheet, "F", "F", 36)
	f.SetColWidth(sheet, "G", "G", 9)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Date", "Day", "Start", "End", "Location", "Details", "One-off"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	oneOffs := 0
	for i := range sessions {
		ss := &sessions[i]
		row := i + 2
		oneOff := ""
		if ss.IsOneOff {
			oneOff = "yes"
			oneOffs++
		}
		f.SetCellValue(sheet, cell("A", row), scheduler.FormatDate(ss.SessionDate))
		f.SetCellValue(sheet, cell("B", row), scheduler.Weekday(ss.DayOfWeek).Short())
		f.SetCellValue(sheet, cell("C", row), scheduler.FormatTime12h(ss.StartTime))
		f.SetCellValue(sheet, cell("D", row), scheduler.FormatTime12h(ss.EndTime))
		f.SetCellValue(sheet, cell("E", row), ss.Location)
		f.SetCellValue(sheet, cell("F", row), ss.LocationDetails)
		f.SetCellValue(sheet, cell("G", row), oneOff)
	}

	described := describeRecords(sessionRecords(sessions))
	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetColWidth(summary, "A", "A", 16)
	f.SetColWidth(summary, "B", "B", 48)
	rows := [][2]interface{}{
		{"Class", series.ClassName},
		{"Schedule", described.Summary},
		{"Dates", described.DateRange},
		{"Sessions", len(sessions)},
		{"One-off sessions", oneOffs},
		{"Exported", s.now().UTC().Format(timestampLayout)},
	}
	for i, r := range rows {
		f.SetCellValue(summary, cell("A", i+1), r[0])
		f.SetCellValue(summary, cell("B", i+1), r[1])
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, exportFilename(series.ClassName, "xlsx"), nil
}

// ── helpers ──

func (s *exportService) load(ctx context.Context, id, coopID string) (*model.ClassSeries, []model.ClassSession, error) {
	series, err := loadOwnedSeries(ctx, s.repo, id, coopID, s.logger)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := s.repo.Session.ListBySeries(ctx, id)
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("series_id", id), zap.Error(err))
		return nil, nil, err
	}
	if len(sessions) == 0 {
		return nil, nil, ErrNoSessions
	}
	return series, sessions, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// exportFilename lower-case, dash-separated class name plus extension.
func exportFilename(className, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(className) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "class"
	}
	return name + "." + ext
}
