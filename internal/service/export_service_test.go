package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/model"
	pkgerrors "student-qr/backend/pkg/errors"
)

func setupExportService() (ExportService, *testRepos) {
	r := newTestRepos()
	return NewExportService(r.repo, fixedClock(2024, 7, 3), nop), r
}

func TestExportService_ExportAttendance(t *testing.T) {
	svc, r := setupExportService()
	ctx := context.Background()
	r.addStudent("s1", "R001", "Asha", "Physics")
	r.addStudent("s2", "R002", "Ravi", "Physics")
	_ = r.attendance.Upsert(ctx, &model.Attendance{StudentID: "s1", AttendanceDate: day(2024, 7, 1), Status: model.StatusPresent, MarkedAt: time.Now()})
	_ = r.attendance.Upsert(ctx, &model.Attendance{StudentID: "s1", AttendanceDate: day(2024, 7, 2), Status: model.StatusAbsent, MarkedAt: time.Now()})
	_ = r.attendance.Upsert(ctx, &model.Attendance{StudentID: "s2", AttendanceDate: day(2024, 7, 2), Status: model.StatusPresent, MarkedAt: time.Now()})

	buf, name, err := svc.ExportAttendance(ctx, "2024-07-01", "2024-07-03")
	if err != nil {
		t.Fatalf("ExportAttendance: %v", err)
	}
	if name != "attendance_20240701_20240703.xlsx" {
		t.Errorf("unexpected file name %q", name)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected title, header and 2 student rows, got %d", len(rows))
	}
	header := rows[1]
	want := []string{"Roll Number", "Name", "Course", "2024-07-01", "2024-07-02", "2024-07-03", "Present", "Absent"}
	for i, w := range want {
		if header[i] != w {
			t.Errorf("header[%d] = %q, want %q", i, header[i], w)
		}
	}
	asha := rows[2]
	if asha[0] != "R001" || asha[3] != model.StatusPresent || asha[4] != model.StatusAbsent || asha[5] != "-" {
		t.Errorf("unexpected row %v", asha)
	}
	if asha[6] != "1" || asha[7] != "1" {
		t.Errorf("unexpected totals %v", asha[6:])
	}
}

func TestExportService_DefaultsToToday(t *testing.T) {
	svc, r := setupExportService()
	r.addStudent("s1", "R001", "Asha", "Physics")

	_, name, err := svc.ExportAttendance(context.Background(), "", "")
	if err != nil {
		t.Fatalf("ExportAttendance: %v", err)
	}
	if name != "attendance_20240703_20240703.xlsx" {
		t.Errorf("unexpected file name %q", name)
	}
}

func TestExportService_Rejects(t *testing.T) {
	svc, r := setupExportService()
	ctx := context.Background()

	if _, _, err := svc.ExportAttendance(ctx, "2024-07-01", "2024-07-02"); !errors.Is(err, ErrExportNoStudents) {
		t.Errorf("expected ErrExportNoStudents, got %v", err)
	}

	r.addStudent("s1", "R001", "Asha", "Physics")
	if _, _, err := svc.ExportAttendance(ctx, "2024-07-02", "2024-07-01"); !errors.Is(err, calendar.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, _, err := svc.ExportAttendance(ctx, "2024-01-01", "2024-07-01"); !errors.Is(err, pkgerrors.ErrDateOutOfRange) {
		t.Errorf("expected ErrDateOutOfRange, got %v", err)
	}
}

func TestColName(t *testing.T) {
	for idx, want := range map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB"} {
		if got := colName(idx); got != want {
			t.Errorf("colName(%d) = %q, want %q", idx, got, want)
		}
	}
}
