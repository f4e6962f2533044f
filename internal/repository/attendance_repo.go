package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-qr/backend/internal/model"
)

// AttendanceRepository attendance data access.
// Records are unique per (student, date); writes replace the existing record.
type AttendanceRepository interface {
	Upsert(ctx context.Context, record *model.Attendance) error
	// UpsertAttendance is the calendar auto-marker's write path.
	UpsertAttendance(ctx context.Context, studentID string, date time.Time, status, remark string) error
	GetByStudentAndDate(ctx context.Context, studentID string, date time.Time) (*model.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Attendance, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository.
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// autoMarkedBy is recorded as marked_by on calendar auto-marks.
const autoMarkedBy = "SYSTEM"

func (r *attendanceRepo) Upsert(ctx context.Context, record *model.Attendance) error {
	if record.MarkedAt.IsZero() {
		record.MarkedAt = time.Now()
	}
	record.AttendanceDate = model.Day(record.AttendanceDate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "attendance_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "remarks", "marked_by", "marked_at", "qr_scanned"}),
		}).
		Create(record).Error
}

func (r *attendanceRepo) UpsertAttendance(ctx context.Context, studentID string, date time.Time, status, remark string) error {
	return r.Upsert(ctx, &model.Attendance{
		StudentID:      studentID,
		AttendanceDate: date,
		Status:         status,
		Remarks:        remark,
		MarkedBy:       autoMarkedBy,
	})
}

func (r *attendanceRepo) GetByStudentAndDate(ctx context.Context, studentID string, date time.Time) (*model.Attendance, error) {
	var record model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND attendance_date = ?", studentID, date.Format(model.DateLayout)).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("attendance_date = ?", date.Format(model.DateLayout)).
		Order("marked_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("attendance_date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListBetween(ctx context.Context, start, end time.Time) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("attendance_date BETWEEN ? AND ?", start.Format(model.DateLayout), end.Format(model.DateLayout)).
		Order("attendance_date ASC, student_id ASC").
		Find(&records).Error
	return records, err
}
