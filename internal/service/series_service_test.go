package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/model"
	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
	pkgerrors "github.com/mdavis72884/bramble-claude-sub001/pkg/errors"
)

const (
	testCoopID   = "coop-1"
	testCallerID = "user-1"
)

// ── test helpers ──

func setupTestSeriesService() (SeriesService, *mockSeriesRepo, *mockSessionRepo) {
	repo, seriesRepo, sessionRepo := newMockRepository()
	svc := NewSeriesService(repo, scheduler.NewGenerator(1100), nil, zap.NewNop())
	return svc, seriesRepo, sessionRepo
}

// monWedInput two weeks of Monday and Wednesday mornings starting Mon 2025-01-06.
func monWedInput() dto.ScheduleInput {
	return dto.ScheduleInput{
		StartDate: "2025-01-06",
		EndDate:   "2025-01-19",
		DayTimes: []dto.DayTimeInput{
			{DayOfWeek: scheduler.Monday, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: scheduler.Wednesday, StartTime: "09:00", EndTime: "10:00"},
		},
		Location:        "Fellowship Hall",
		LocationDetails: "Room 2 by the side entrance",
	}
}

func createTestSeries(t *testing.T, svc SeriesService) *dto.SeriesResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateSeriesRequest{
		ClassName: "Nature Journaling",
		Schedule:  monWedInput(),
	}, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("Create should succeed, got: %v", err)
	}
	return resp
}

func datePtr(s string) *time.Time {
	d, _ := scheduler.ParseDate(s)
	return &d
}

func strPtr(s string) *string { return &s }

// ── Create ──

func TestCreateSeries_Success(t *testing.T) {
	svc, _, sessionRepo := setupTestSeriesService()

	resp := createTestSeries(t, svc)

	if resp.SessionCount != 4 {
		t.Errorf("expected 4 sessions, got %d", resp.SessionCount)
	}
	if len(sessionRepo.sessions) != 4 {
		t.Errorf("expected 4 stored sessions, got %d", len(sessionRepo.sessions))
	}
	if resp.Version != 1 {
		t.Errorf("expected version 1, got %d", resp.Version)
	}
	if !resp.Schedule.HasSchedule {
		t.Fatal("expected the pattern to be recoverable from the new sessions")
	}
	if resp.Summary != "Mon & Wed, 9am - 10am" {
		t.Errorf("unexpected summary %q", resp.Summary)
	}
	if resp.DateRange != "Jan 6, 2025 - Jan 15, 2025" {
		t.Errorf("unexpected date range %q", resp.DateRange)
	}
	if resp.Schedule.Location != "Fellowship Hall" {
		t.Errorf("expected location to round-trip, got %q", resp.Schedule.Location)
	}
	for _, s := range sessionRepo.sessions {
		if s.IsOneOff {
			t.Error("generated sessions must not be one-offs")
		}
		if s.CoopID != testCoopID {
			t.Errorf("expected coop %s, got %s", testCoopID, s.CoopID)
		}
	}
}

func TestCreateSeries_InvalidSchedule(t *testing.T) {
	svc, seriesRepo, _ := setupTestSeriesService()

	in := monWedInput()
	in.StartDate, in.EndDate = in.EndDate, in.StartDate

	_, err := svc.Create(context.Background(), &dto.CreateSeriesRequest{ClassName: "Latin", Schedule: in}, testCoopID, testCallerID)
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	var verr *scheduler.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected field details, got %v", err)
	}
	if verr.Fields[0].Field != "endDate" {
		t.Errorf("expected endDate to be flagged, got %s", verr.Fields[0].Field)
	}
	if len(seriesRepo.series) != 0 {
		t.Error("nothing should be stored for an invalid schedule")
	}
}

func TestCreateSeries_RangeTooLarge(t *testing.T) {
	svc, _, _ := setupTestSeriesService()

	in := monWedInput()
	in.EndDate = "2030-01-06"

	_, err := svc.Create(context.Background(), &dto.CreateSeriesRequest{ClassName: "Latin", Schedule: in}, testCoopID, testCallerID)
	if !errors.Is(err, ErrRangeTooLarge) {
		t.Fatalf("expected ErrRangeTooLarge, got %v", err)
	}
}

func TestCreateSeries_NoMatchingDays(t *testing.T) {
	svc, _, _ := setupTestSeriesService()

	// Tuesday only, pattern meets on Mondays
	in := dto.ScheduleInput{
		StartDate: "2025-01-07",
		EndDate:   "2025-01-07",
		DayTimes:  []dto.DayTimeInput{{DayOfWeek: scheduler.Monday, StartTime: "09:00", EndTime: "10:00"}},
	}
	_, err := svc.Create(context.Background(), &dto.CreateSeriesRequest{ClassName: "Latin", Schedule: in}, testCoopID, testCallerID)
	if !errors.Is(err, ErrEmptySchedule) {
		t.Fatalf("expected ErrEmptySchedule, got %v", err)
	}
}

// ── Get / List ──

func TestGetSeries_OtherCoopIsHidden(t *testing.T) {
	svc, _, _ := setupTestSeriesService()
	created := createTestSeries(t, svc)

	if _, err := svc.Get(context.Background(), created.ID, testCoopID); err != nil {
		t.Fatalf("owner should see the series: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID, "coop-2"); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("expected ErrSeriesNotFound for another co-op, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "missing", testCoopID); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("expected ErrSeriesNotFound, got %v", err)
	}
}

func TestGetSeries_ListFailure(t *testing.T) {
	svc, _, sessionRepo := setupTestSeriesService()
	created := createTestSeries(t, svc)

	sessionRepo.listErr = errors.New("connection reset")
	if _, err := svc.Get(context.Background(), created.ID, testCoopID); err == nil {
		t.Error("expected the repository error to surface")
	}
}

func TestListSeries(t *testing.T) {
	svc, _, _ := setupTestSeriesService()
	createTestSeries(t, svc)
	_, err := svc.Create(context.Background(), &dto.CreateSeriesRequest{
		ClassName: "Art Studio",
		Schedule:  monWedInput(),
	}, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), &dto.CreateSeriesRequest{
		ClassName: "Other Co-op Class",
		Schedule:  monWedInput(),
	}, "coop-2", testCallerID); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, total, err := svc.List(context.Background(), &dto.SeriesListRequest{}, testCoopID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 series for the co-op, got total=%d len=%d", total, len(list))
	}
	if list[0].ClassName != "Art Studio" {
		t.Errorf("expected alphabetical order, first=%s", list[0].ClassName)
	}
	if list[0].SessionCount != 4 {
		t.Errorf("expected sessions to be attached, got %d", list[0].SessionCount)
	}
}

// ── Update ──

func TestUpdateSeries_RescheduleKeepsOneOffs(t *testing.T) {
	svc, _, sessionRepo := setupTestSeriesService()
	created := createTestSeries(t, svc)

	_, err := svc.AddOneOff(context.Background(), created.ID, &dto.AddOneOffRequest{
		Date:      "2025-01-11",
		StartTime: "10:00",
		EndTime:   "11:00",
	}, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("AddOneOff: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, &dto.UpdateSeriesRequest{
		Version: created.Version,
		Schedule: &dto.ScheduleInput{
			StartDate: "2025-01-06",
			EndDate:   "2025-01-19",
			DayTimes:  []dto.DayTimeInput{{DayOfWeek: scheduler.Thursday, StartTime: "13:00", EndTime: "14:00"}},
		},
	}, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("Update should succeed, got: %v", err)
	}

	if updated.Version != created.Version+1 {
		t.Errorf("expected version %d, got %d", created.Version+1, updated.Version)
	}
	if updated.SessionCount != 3 || updated.OneOffCount != 1 {
		t.Errorf("expected 2 pattern sessions plus 1 one-off, got %d/%d", updated.SessionCount, updated.OneOffCount)
	}
	if updated.Summary != "Thu, 1pm - 2pm" {
		t.Errorf("one-off must not shape the pattern, summary=%q", updated.Summary)
	}
	if len(sessionRepo.sessions) != 3 {
		t.Errorf("expected 3 stored sessions, got %d", len(sessionRepo.sessions))
	}
}

func TestUpdateSeries_RenameOnly(t *testing.T) {
	svc, _, sessionRepo := setupTestSeriesService()
	created := createTestSeries(t, svc)
	before := sessionRepo.seq

	updated, err := svc.Update(context.Background(), created.ID, &dto.UpdateSeriesRequest{
		Version:   created.Version,
		ClassName: strPtr("Nature Journaling II"),
	}, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ClassName != "Nature Journaling II" {
		t.Errorf("expected rename, got %s", updated.ClassName)
	}
	if sessionRepo.seq != before {
		t.Error("a rename must not regenerate sessions")
	}
}

func TestUpdateSeries_VersionConflict(t *testing.T) {
	svc, _, _ := setupTestSeriesService()
	created := createTestSeries(t, svc)

	_, err := svc.Update(context.Background(), created.ID, &dto.UpdateSeriesRequest{
		Version:   created.Version + 5,
		ClassName: strPtr("Stale"),
	}, testCoopID, testCallerID)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("expected ErrOptimisticLock, got %v", err)
	}
}

// ── Delete ──

func TestDeleteSeries(t *testing.T) {
	svc, seriesRepo, sessionRepo := setupTestSeriesService()
	created := createTestSeries(t, svc)

	if err := svc.Delete(context.Background(), created.ID, "coop-2", testCallerID); !errors.Is(err, ErrSeriesNotFound) {
		t.Fatalf("another co-op must not delete the series, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, testCoopID, testCallerID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(seriesRepo.series) != 0 || len(sessionRepo.sessions) != 0 {
		t.Error("series and sessions should be gone")
	}
}

// ── Sessions / one-offs ──

func TestListSessions_Labels(t *testing.T) {
	svc, _, _ := setupTestSeriesService()
	created := createTestSeries(t, svc)

	sessions, err := svc.ListSessions(context.Background(), created.ID, testCoopID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(sessions))
	}
	first := sessions[0]
	if first.Date != "2025-01-06" || first.DateLabel != "Mon, Jan 6" || first.TimeLabel != "9am - 10am" {
		t.Errorf("unexpected first session %+v", first)
	}
}

func TestAddOneOff_InheritsLocation(t *testing.T) {
	svc, _, _ := setupTestSeriesService()
	created := createTestSeries(t, svc)

	s, err := svc.AddOneOff(context.Background(), created.ID, &dto.AddOneOffRequest{
		Date:      "2025-01-18",
		StartTime: "10:00",
		EndTime:   "12:00",
	}, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("AddOneOff: %v", err)
	}
	if !s.IsOneOff || s.DayOfWeek != scheduler.Saturday {
		t.Errorf("unexpected one-off %+v", s)
	}
	if s.Location != "Fellowship Hall" {
		t.Errorf("expected the series location, got %q", s.Location)
	}
}

func TestAddOneOff_Invalid(t *testing.T) {
	svc, _, _ := setupTestSeriesService()
	created := createTestSeries(t, svc)

	tests := []struct {
		name string
		req  dto.AddOneOffRequest
	}{
		{"inverted times", dto.AddOneOffRequest{Date: "2025-01-18", StartTime: "12:00", EndTime: "10:00"}},
		{"impossible date", dto.AddOneOffRequest{Date: "2025-02-30", StartTime: "10:00", EndTime: "11:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddOneOff(context.Background(), created.ID, &tt.req, testCoopID, testCallerID)
			if !errors.Is(err, ErrInvalidSchedule) {
				t.Errorf("expected ErrInvalidSchedule, got %v", err)
			}
		})
	}
}

// ── MigrateLegacy ──

func seedLegacySeries(t *testing.T, repo *mockSeriesRepo) *model.ClassSeries {
	t.Helper()
	series := &model.ClassSeries{
		CoopID:           testCoopID,
		ClassName:        "Chemistry Lab",
		Location:         "Kitchen",
		LegacyFrequency:  strPtr("custom"),
		LegacyDaysOfWeek: pq.Int64Array{2, 4},
		LegacyStartDate:  datePtr("2025-01-06"),
		LegacyEndDate:    datePtr("2025-01-19"),
		LegacyStartTime:  strPtr("10:00"),
		LegacyEndTime:    strPtr("11:00"),
	}
	if err := repo.Create(context.Background(), series); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return series
}

func TestMigrateLegacy_Success(t *testing.T) {
	svc, seriesRepo, _ := setupTestSeriesService()
	legacy := seedLegacySeries(t, seriesRepo)

	before, err := svc.Get(context.Background(), legacy.SeriesID, testCoopID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !before.HasLegacyConfig || before.Schedule.HasSchedule {
		t.Fatalf("expected an unmigrated legacy series, got %+v", before)
	}

	result, err := svc.MigrateLegacy(context.Background(), legacy.SeriesID, testCoopID, testCallerID)
	if err != nil {
		t.Fatalf("MigrateLegacy: %v", err)
	}
	if result.Generated != 4 {
		t.Errorf("expected 4 generated sessions, got %d", result.Generated)
	}
	if result.Series.HasLegacyConfig {
		t.Error("legacy columns should be cleared")
	}
	if result.Series.Summary != "Tue & Thu, 10am - 11am" {
		t.Errorf("unexpected summary %q", result.Series.Summary)
	}
	if seriesRepo.series[legacy.SeriesID].LegacyFrequency != nil {
		t.Error("stored row should no longer carry a legacy frequency")
	}

	if _, err := svc.MigrateLegacy(context.Background(), legacy.SeriesID, testCoopID, testCallerID); !errors.Is(err, ErrNoLegacyConfig) {
		t.Errorf("second migration should report ErrNoLegacyConfig, got %v", err)
	}
}

func TestMigrateLegacy_UnknownFrequency(t *testing.T) {
	svc, seriesRepo, _ := setupTestSeriesService()
	legacy := seedLegacySeries(t, seriesRepo)
	seriesRepo.series[legacy.SeriesID].LegacyFrequency = strPtr("monthly")

	_, err := svc.MigrateLegacy(context.Background(), legacy.SeriesID, testCoopID, testCallerID)
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule, got %v", err)
	}
}
