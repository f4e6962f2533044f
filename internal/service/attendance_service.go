package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
	pkgerrors "student-qr/backend/pkg/errors"
)

// ── attendance business errors ──

var (
	ErrAttendanceBlocked = errors.New("attendance cannot be marked on this date")
	ErrInvalidStatus     = errors.New("status must be PRESENT, ABSENT, LATE or EXCUSED")
	ErrEmptyQRPayload    = errors.New("QR payload does not identify a student")
)

// maxStatsDays bounds the span of a statistics query.
const maxStatsDays = 366

// EligibilityChecker decides whether attendance may be marked on a date.
type EligibilityChecker interface {
	Evaluate(ctx context.Context, date time.Time) (calendar.Eligibility, error)
}

// AttendanceService attendance use cases
type AttendanceService interface {
	Mark(ctx context.Context, req *dto.MarkAttendanceRequest, markedBy string) (*dto.AttendanceResponse, error)
	MarkByQR(ctx context.Context, req *dto.MarkByQRRequest, markedBy string) (*dto.AttendanceResponse, error)
	ListByDate(ctx context.Context, date string) ([]dto.AttendanceResponse, error)
	StudentHistory(ctx context.Context, identifier string) ([]dto.AttendanceResponse, error)
	Summary(ctx context.Context, date string) (*dto.AttendanceSummaryResponse, error)
	CourseSummary(ctx context.Context, course, date string) (*dto.AttendanceSummaryResponse, error)
	DateStatus(ctx context.Context, date string) (*dto.DateStatusResponse, error)
	Stats(ctx context.Context, start, end string) (*dto.AttendanceStatsResponse, error)
}

type attendanceService struct {
	repo        *repository.Repository
	eligibility EligibilityChecker
	clock       Clock
	logger      *zap.Logger
}

// NewAttendanceService creates an AttendanceService.
func NewAttendanceService(repo *repository.Repository, eligibility EligibilityChecker, clock Clock, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, eligibility: eligibility, clock: clock, logger: logger}
}

// BlockedError carries the entries that block attendance on a date.
type BlockedError struct {
	Date  time.Time
	Names []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot mark attendance on %s: %s", e.Date.Format(model.DateLayout), strings.Join(e.Names, ", "))
}

// Is makes errors.Is(err, ErrAttendanceBlocked) hold.
func (e *BlockedError) Is(target error) bool { return target == ErrAttendanceBlocked }

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, req *dto.MarkAttendanceRequest, markedBy string) (*dto.AttendanceResponse, error) {
	return s.mark(ctx, req.Identifier, req.Status, req.Remarks, req.Date, markedBy, false)
}

// MarkByQR marks the student named in a scanned payload, PRESENT by default.
func (s *attendanceService) MarkByQR(ctx context.Context, req *dto.MarkByQRRequest, markedBy string) (*dto.AttendanceResponse, error) {
	identifier := ExtractStudentIdentifier(req.Payload)
	if identifier == "" {
		return nil, ErrEmptyQRPayload
	}
	status := req.Status
	if status == "" {
		status = model.StatusPresent
	}
	return s.mark(ctx, identifier, status, req.Remarks, req.Date, markedBy, true)
}

func (s *attendanceService) mark(ctx context.Context, identifier, status, remarks, date, markedBy string, qr bool) (*dto.AttendanceResponse, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	day, err := dateOrToday(date, s.clock)
	if err != nil {
		return nil, err
	}

	verdict, err := s.eligibility.Evaluate(ctx, day)
	if err != nil {
		return nil, err
	}
	if !verdict.Eligible {
		return nil, &BlockedError{Date: day, Names: verdict.BlockingNames()}
	}

	student, err := s.findStudent(ctx, identifier)
	if err != nil {
		return nil, err
	}

	record := &model.Attendance{
		StudentID:      student.ID,
		AttendanceDate: day,
		Status:         status,
		Remarks:        remarks,
		MarkedBy:       markedBy,
		MarkedAt:       time.Now(),
		QRScanned:      qr,
	}
	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("upsert attendance failed", zap.String("student_id", student.ID), zap.Error(err))
		return nil, err
	}
	record.Student = student

	s.logger.Info("attendance marked",
		zap.String("student_id", student.ID),
		zap.String("date", day.Format(model.DateLayout)),
		zap.String("status", status),
		zap.Bool("qr", qr),
	)
	return toAttendanceResponse(record), nil
}

// findStudent resolves an id first, then a roll number.
func (s *attendanceService) findStudent(ctx context.Context, identifier string) (*model.Student, error) {
	identifier = strings.TrimSpace(identifier)
	student, err := s.repo.Student.GetByID(ctx, identifier)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("get student failed", zap.String("identifier", identifier), zap.Error(err))
		return nil, err
	}

	student, err = s.repo.Student.GetByRollNumber(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student by roll number failed", zap.String("identifier", identifier), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// ExtractStudentIdentifier reads the "ID:" line of a QR payload, falling back
// to a "Roll Number:" or "Roll:" line, then to the whole payload.
func ExtractStudentIdentifier(payload string) string {
	var roll string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ID:"):
			if id := strings.TrimSpace(strings.TrimPrefix(line, "ID:")); id != "" {
				return id
			}
		case roll == "" && strings.HasPrefix(line, "Roll Number:"):
			roll = strings.TrimSpace(strings.TrimPrefix(line, "Roll Number:"))
		case roll == "" && strings.HasPrefix(line, "Roll:"):
			roll = strings.TrimSpace(strings.TrimPrefix(line, "Roll:"))
		}
	}
	if roll != "" {
		return roll
	}
	return strings.TrimSpace(payload)
}

// ────────────────────── Queries ──────────────────────

func (s *attendanceService) ListByDate(ctx context.Context, date string) ([]dto.AttendanceResponse, error) {
	day, err := dateOrToday(date, s.clock)
	if err != nil {
		return nil, err
	}
	records, err := s.listByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return toAttendanceResponses(records), nil
}

func (s *attendanceService) listByDate(ctx context.Context, day time.Time) ([]model.Attendance, error) {
	records, err := s.repo.Attendance.ListByDate(ctx, day)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Time("date", day), zap.Error(err))
		return nil, err
	}
	return records, nil
}

func (s *attendanceService) StudentHistory(ctx context.Context, identifier string) ([]dto.AttendanceResponse, error) {
	student, err := s.findStudent(ctx, identifier)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Attendance.ListByStudent(ctx, student.ID)
	if err != nil {
		s.logger.Error("list student attendance failed", zap.String("student_id", student.ID), zap.Error(err))
		return nil, err
	}
	for i := range records {
		records[i].Student = student
	}
	return toAttendanceResponses(records), nil
}

// Summary totals a day across all students.
func (s *attendanceService) Summary(ctx context.Context, date string) (*dto.AttendanceSummaryResponse, error) {
	day, err := dateOrToday(date, s.clock)
	if err != nil {
		return nil, err
	}
	records, err := s.listByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Student.Count(ctx)
	if err != nil {
		s.logger.Error("count students failed", zap.Error(err))
		return nil, err
	}
	return summarize(day, "", records, total), nil
}

// CourseSummary totals a day across the students of one course.
func (s *attendanceService) CourseSummary(ctx context.Context, course, date string) (*dto.AttendanceSummaryResponse, error) {
	day, err := dateOrToday(date, s.clock)
	if err != nil {
		return nil, err
	}
	records, err := s.listByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Student.CountByCourse(ctx, course)
	if err != nil {
		s.logger.Error("count course students failed", zap.String("course", course), zap.Error(err))
		return nil, err
	}

	inCourse := records[:0:0]
	for _, r := range records {
		if r.Student != nil && r.Student.Course == course {
			inCourse = append(inCourse, r)
		}
	}
	return summarize(day, course, inCourse, total), nil
}

func summarize(day time.Time, course string, records []model.Attendance, totalStudents int64) *dto.AttendanceSummaryResponse {
	resp := &dto.AttendanceSummaryResponse{
		Date:          day.Format(model.DateLayout),
		Course:        course,
		TotalStudents: totalStudents,
		Marked:        int64(len(records)),
	}
	for i := range records {
		switch {
		case records[i].IsPresent():
			resp.Present++
		case records[i].IsAbsent():
			resp.Absent++
		}
	}
	resp.Unmarked = totalStudents - resp.Marked
	if resp.Unmarked < 0 {
		resp.Unmarked = 0
	}
	resp.Percentage = percentage(resp.Present, totalStudents)
	return resp
}

// DateStatus reports whether a day accepts attendance, with its records when it does.
func (s *attendanceService) DateStatus(ctx context.Context, date string) (*dto.DateStatusResponse, error) {
	day, err := dateOrToday(date, s.clock)
	if err != nil {
		return nil, err
	}
	verdict, err := s.eligibility.Evaluate(ctx, day)
	if err != nil {
		return nil, err
	}

	resp := &dto.DateStatusResponse{
		Date:          day.Format(model.DateLayout),
		CanMark:       verdict.Eligible,
		BlockingNames: verdict.BlockingNames(),
		Records:       []dto.AttendanceResponse{},
	}
	if !verdict.Eligible {
		resp.Message = "Attendance is disabled: " + strings.Join(resp.BlockingNames, ", ")
		return resp, nil
	}

	resp.Message = "Attendance can be marked"
	records, err := s.listByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	resp.Records = toAttendanceResponses(records)
	return resp, nil
}

// Stats aggregates the records of an inclusive date range.
func (s *attendanceService) Stats(ctx context.Context, start, end string) (*dto.AttendanceStatsResponse, error) {
	from, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, calendar.ErrInvalidDateRange
	}
	if to.Sub(from) > maxStatsDays*24*time.Hour {
		return nil, pkgerrors.ErrDateOutOfRange
	}

	records, err := s.repo.Attendance.ListBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("list attendance range failed", zap.Error(err))
		return nil, err
	}
	total, err := s.repo.Student.Count(ctx)
	if err != nil {
		s.logger.Error("count students failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.AttendanceStatsResponse{
		StartDate:     from.Format(model.DateLayout),
		EndDate:       to.Format(model.DateLayout),
		TotalRecords:  int64(len(records)),
		TotalStudents: total,
	}
	unique := make(map[string]struct{})
	for i := range records {
		unique[records[i].StudentID] = struct{}{}
		switch {
		case records[i].IsPresent():
			resp.Present++
		case records[i].IsAbsent():
			resp.Absent++
		}
	}
	resp.UniqueStudents = int64(len(unique))
	resp.Rate = percentage(resp.Present, resp.TotalRecords)
	return resp, nil
}

// percentage is part·100/whole rounded to two decimals, 0 for an empty whole.
func percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(whole)) / 100
}

// ── conversion ──

func toAttendanceResponse(a *model.Attendance) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:        a.ID,
		StudentID: a.StudentID,
		Date:      a.AttendanceDate.Format(model.DateLayout),
		Status:    a.Status,
		Remarks:   a.Remarks,
		MarkedBy:  a.MarkedBy,
		MarkedAt:  formatTime(a.MarkedAt),
		QRScanned: a.QRScanned,
	}
	if a.Student != nil {
		resp.StudentName = a.Student.Name
		resp.RollNumber = a.Student.RollNumber
		resp.Course = a.Student.Course
	}
	return resp
}

func toAttendanceResponses(records []model.Attendance) []dto.AttendanceResponse {
	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, *toAttendanceResponse(&records[i]))
	}
	return result
}
