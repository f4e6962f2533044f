package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/model"
	pkgerrors "student-qr/backend/pkg/errors"
)

// ── helpers ──

func setupAttendanceService(clock Clock) (AttendanceService, CalendarService, *testRepos) {
	r := newTestRepos()
	cal := NewCalendarService(r.repo, clock, nop)
	return NewAttendanceService(r.repo, cal, clock, nop), cal, r
}

type failingChecker struct{ err error }

func (f failingChecker) Evaluate(context.Context, time.Time) (calendar.Eligibility, error) {
	return calendar.Eligibility{}, f.err
}

// ── Mark ──

func TestAttendanceService_Mark(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 1))
	r.addStudent("s1", "R001", "Asha", "Physics")

	resp, err := svc.Mark(context.Background(), &dto.MarkAttendanceRequest{
		Identifier: "R001", Status: model.StatusLate, Remarks: "bus",
	}, "teacher")
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if resp.StudentID != "s1" || resp.Date != "2024-07-01" || resp.Status != model.StatusLate || resp.QRScanned {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.StudentName != "Asha" || resp.MarkedBy != "teacher" {
		t.Errorf("student details missing: %+v", resp)
	}
}

func TestAttendanceService_Mark_LastWriteWins(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 1))
	r.addStudent("s1", "R001", "Asha", "Physics")
	ctx := context.Background()

	for _, status := range []string{model.StatusAbsent, model.StatusPresent} {
		if _, err := svc.Mark(ctx, &dto.MarkAttendanceRequest{Identifier: "s1", Status: status, Date: "2024-07-02"}, "teacher"); err != nil {
			t.Fatal(err)
		}
	}
	if len(r.attendance.records) != 1 {
		t.Fatalf("expected a single record, got %d", len(r.attendance.records))
	}
	rec, _ := r.attendance.GetByStudentAndDate(ctx, "s1", day(2024, 7, 2))
	if rec.Status != model.StatusPresent {
		t.Errorf("expected the later status, got %s", rec.Status)
	}
}

func TestAttendanceService_Mark_Blocked(t *testing.T) {
	svc, cal, r := setupAttendanceService(fixedClock(2024, 6, 1))
	r.addStudent("s1", "R001", "Asha", "Physics")
	ctx := context.Background()
	_, err := cal.Create(ctx, &dto.CreateCalendarEntryRequest{
		Name: "Summer Vacation", StartDate: "2024-05-15", EndDate: strPtr("2024-06-30"), Category: "VACATION",
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Mark(ctx, &dto.MarkAttendanceRequest{Identifier: "s1", Status: model.StatusPresent}, "teacher")
	if !errors.Is(err, ErrAttendanceBlocked) {
		t.Fatalf("expected ErrAttendanceBlocked, got %v", err)
	}
	var blocked *BlockedError
	if !errors.As(err, &blocked) || len(blocked.Names) != 1 || blocked.Names[0] != "Summer Vacation" {
		t.Errorf("expected the blocking entry name, got %v", err)
	}
	if r.attendance.upserts != 0 {
		t.Error("nothing should be written on a blocked date")
	}

	if _, err := svc.Mark(ctx, &dto.MarkAttendanceRequest{Identifier: "s1", Status: model.StatusPresent, Date: "2024-07-01"}, "teacher"); err != nil {
		t.Errorf("2024-07-01 should accept attendance: %v", err)
	}
}

func TestAttendanceService_Mark_Rejects(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 1))
	r.addStudent("s1", "R001", "Asha", "Physics")
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.MarkAttendanceRequest
		want error
	}{
		{"unknown student", dto.MarkAttendanceRequest{Identifier: "nobody", Status: model.StatusPresent}, ErrStudentNotFound},
		{"bad status", dto.MarkAttendanceRequest{Identifier: "s1", Status: "HERE"}, ErrInvalidStatus},
		{"bad date", dto.MarkAttendanceRequest{Identifier: "s1", Status: model.StatusPresent, Date: "01-07-2024"}, pkgerrors.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Mark(ctx, &tt.req, "teacher"); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAttendanceService_Mark_CheckerError(t *testing.T) {
	r := newTestRepos()
	r.addStudent("s1", "R001", "Asha", "Physics")
	boom := errors.New("db down")
	svc := NewAttendanceService(r.repo, failingChecker{err: boom}, fixedClock(2024, 7, 1), nop)

	if _, err := svc.Mark(context.Background(), &dto.MarkAttendanceRequest{Identifier: "s1", Status: model.StatusPresent}, "t"); !errors.Is(err, boom) {
		t.Errorf("expected the checker error, got %v", err)
	}
}

// ── MarkByQR ──

func TestAttendanceService_MarkByQR(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 1))
	student := r.addStudent("s1", "R001", "Asha", "Physics")
	ctx := context.Background()

	resp, err := svc.MarkByQR(ctx, &dto.MarkByQRRequest{Payload: QRPayload(student, time.Now())}, "scanner")
	if err != nil {
		t.Fatalf("MarkByQR: %v", err)
	}
	if resp.StudentID != "s1" || resp.Status != model.StatusPresent || !resp.QRScanned {
		t.Errorf("unexpected response %+v", resp)
	}

	if _, err := svc.MarkByQR(ctx, &dto.MarkByQRRequest{Payload: "   "}, "scanner"); !errors.Is(err, ErrEmptyQRPayload) {
		t.Errorf("expected ErrEmptyQRPayload, got %v", err)
	}
}

func TestExtractStudentIdentifier(t *testing.T) {
	tests := []struct {
		name, payload, want string
	}{
		{"id line", "=== STUDENT INFORMATION ===\nID: abc-123\nRoll Number: R9\n", "abc-123"},
		{"roll number fallback", "Name: Asha\nRoll Number: R001", "R001"},
		{"short roll", "Roll: R002", "R002"},
		{"empty id uses roll", "ID:\nRoll Number: R003", "R003"},
		{"bare value", "  R004 ", "R004"},
		{"blank", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractStudentIdentifier(tt.payload); got != tt.want {
				t.Errorf("ExtractStudentIdentifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ── Queries ──

func seedDay(t *testing.T, svc AttendanceService, r *testRepos, date string) {
	t.Helper()
	r.addStudent("s1", "R001", "Asha", "Physics")
	r.addStudent("s2", "R002", "Ravi", "Physics")
	r.addStudent("s3", "R003", "Meera", "Chemistry")
	r.addStudent("s4", "R004", "Kiran", "Chemistry")
	ctx := context.Background()
	marks := map[string]string{"s1": model.StatusPresent, "s2": model.StatusAbsent, "s3": model.StatusPresent}
	for id, status := range marks {
		if _, err := svc.Mark(ctx, &dto.MarkAttendanceRequest{Identifier: id, Status: status, Date: date}, "teacher"); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAttendanceService_Summary(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 1))
	seedDay(t, svc, r, "2024-07-01")
	ctx := context.Background()

	s, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Present != 2 || s.Absent != 1 || s.TotalStudents != 4 || s.Marked != 3 || s.Unmarked != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Percentage != 50 {
		t.Errorf("expected 50%%, got %v", s.Percentage)
	}

	cs, err := svc.CourseSummary(ctx, "Chemistry", "2024-07-01")
	if err != nil {
		t.Fatalf("CourseSummary: %v", err)
	}
	if cs.Present != 1 || cs.Absent != 0 || cs.TotalStudents != 2 || cs.Unmarked != 1 || cs.Course != "Chemistry" {
		t.Errorf("unexpected course summary %+v", cs)
	}

	list, _ := svc.ListByDate(ctx, "2024-07-01")
	if len(list) != 3 {
		t.Errorf("expected 3 records, got %d", len(list))
	}
}

func TestAttendanceService_StudentHistory(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 1))
	seedDay(t, svc, r, "2024-07-01")
	ctx := context.Background()
	if _, err := svc.Mark(ctx, &dto.MarkAttendanceRequest{Identifier: "s1", Status: model.StatusAbsent, Date: "2024-07-02"}, "teacher"); err != nil {
		t.Fatal(err)
	}

	history, err := svc.StudentHistory(ctx, "R001")
	if err != nil {
		t.Fatalf("StudentHistory: %v", err)
	}
	if len(history) != 2 || history[0].RollNumber != "R001" {
		t.Errorf("unexpected history %+v", history)
	}

	if _, err := svc.StudentHistory(ctx, "R999"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestAttendanceService_DateStatus(t *testing.T) {
	svc, cal, r := setupAttendanceService(fixedClock(2024, 7, 1))
	seedDay(t, svc, r, "2024-07-01")
	ctx := context.Background()
	if _, err := cal.CreateRange(ctx, &dto.CreateCalendarRangeRequest{
		Name: "Mid-Semester Break", StartDate: "2024-07-10", EndDate: strPtr("2024-07-14"), Category: "BREAK",
	}, ""); err != nil {
		t.Fatal(err)
	}

	open, err := svc.DateStatus(ctx, "2024-07-01")
	if err != nil {
		t.Fatalf("DateStatus: %v", err)
	}
	if !open.CanMark || len(open.Records) != 3 {
		t.Errorf("unexpected open day %+v", open)
	}

	closed, _ := svc.DateStatus(ctx, "2024-07-12")
	if closed.CanMark || len(closed.Records) != 0 || closed.Message != "Attendance is disabled: Mid-Semester Break" {
		t.Errorf("unexpected closed day %+v", closed)
	}
}

func TestAttendanceService_Stats(t *testing.T) {
	svc, _, r := setupAttendanceService(fixedClock(2024, 7, 2))
	seedDay(t, svc, r, "2024-07-01")
	ctx := context.Background()
	if _, err := svc.Mark(ctx, &dto.MarkAttendanceRequest{Identifier: "s4", Status: model.StatusPresent, Date: "2024-07-02"}, "t"); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Stats(ctx, "2024-07-01", "2024-07-02")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalRecords != 4 || stats.Present != 3 || stats.Absent != 1 || stats.UniqueStudents != 4 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Rate != 75 {
		t.Errorf("expected 75%%, got %v", stats.Rate)
	}

	if _, err := svc.Stats(ctx, "2024-07-02", "2024-07-01"); !errors.Is(err, calendar.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := svc.Stats(ctx, "2022-01-01", "2024-01-01"); !errors.Is(err, pkgerrors.ErrDateOutOfRange) {
		t.Errorf("expected ErrDateOutOfRange, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	if got := percentage(1, 3); got != 33.33 {
		t.Errorf("percentage(1, 3) = %v", got)
	}
	if got := percentage(5, 0); got != 0 {
		t.Errorf("percentage(5, 0) = %v", got)
	}
}
