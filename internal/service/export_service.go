package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
	pkgerrors "student-qr/backend/pkg/errors"
)

// ── export business errors ──

var (
	ErrExportNoStudents   = errors.New("there are no students to export")
	ErrExportGenerateFail = errors.New("failed to generate the Excel file")
)

// maxExportDays bounds the number of date columns of a report.
const maxExportDays = 92

// ExportService report export
//
// Reports are returned as a buffer; the handler sets the download headers.
type ExportService interface {
	// ExportAttendance writes one row per student and one column per date.
	ExportAttendance(ctx context.Context, start, end string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, clock Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clock, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - row 1: title
//   - row 2: Roll Number | Name | Course | <dates...> | Present | Absent
//   - one row per student, cells hold the status or "-"

func (s *exportService) ExportAttendance(ctx context.Context, start, end string) (*bytes.Buffer, string, error) {
	from, err := dateOrToday(start, s.clock)
	if err != nil {
		return nil, "", err
	}
	to, err := dateOrToday(end, s.clock)
	if err != nil {
		return nil, "", err
	}
	if to.Before(from) {
		return nil, "", calendar.ErrInvalidDateRange
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > maxExportDays {
		return nil, "", pkgerrors.ErrDateOutOfRange
	}

	// 1. load students and records
	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, "", err
	}
	if len(students) == 0 {
		return nil, "", ErrExportNoStudents
	}

	records, err := s.repo.Attendance.ListBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("list attendance range failed", zap.Error(err))
		return nil, "", err
	}

	// 2. index "studentID:date" → status
	statusIndex := make(map[string]string, len(records))
	for _, r := range records {
		statusIndex[r.StudentID+":"+r.AttendanceDate.Format(model.DateLayout)] = r.Status
	}

	// 3. build the workbook
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attendance"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	lastCol := colName(3 + days + 1)

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, colName(3), colName(3+days-1), 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title
	title := fmt.Sprintf("Attendance %s to %s", from.Format(model.DateLayout), to.Format(model.DateLayout))
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// header
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Roll Number")
	f.SetCellValue(sheetName, cell("B", row), "Name")
	f.SetCellValue(sheetName, cell("C", row), "Course")
	for i := 0; i < days; i++ {
		f.SetCellValue(sheetName, cell(colName(3+i), row), from.AddDate(0, 0, i).Format(model.DateLayout))
	}
	f.SetCellValue(sheetName, cell(colName(3+days), row), "Present")
	f.SetCellValue(sheetName, cell(lastCol, row), "Absent")
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// data rows
	row = 3
	for _, st := range students {
		f.SetCellValue(sheetName, cell("A", row), st.RollNumber)
		f.SetCellValue(sheetName, cell("B", row), st.Name)
		f.SetCellValue(sheetName, cell("C", row), st.Course)

		present, absent := 0, 0
		for i := 0; i < days; i++ {
			date := from.AddDate(0, 0, i).Format(model.DateLayout)
			status, ok := statusIndex[st.ID+":"+date]
			if !ok {
				status = "-"
			}
			switch status {
			case model.StatusPresent:
				present++
			case model.StatusAbsent:
				absent++
			}
			f.SetCellValue(sheetName, cell(colName(3+i), row), status)
		}
		f.SetCellValue(sheetName, cell(colName(3+days), row), present)
		f.SetCellValue(sheetName, cell(lastCol, row), absent)
		row++
	}

	// 4. write to the buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	return buf, filename, nil
}

// ── helpers ──

// colName converts a zero-based column index to its letter name.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
