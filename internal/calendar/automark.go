package calendar

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"student-qr/backend/internal/model"
)

// ErrAutoMarkNotPermitted is returned when auto-marking an entry that does not allow it.
var ErrAutoMarkNotPermitted = errors.New("auto-mark is not enabled for this calendar entry")

// AttendanceWriter upserts one attendance record keyed by (subject, date).
type AttendanceWriter interface {
	UpsertAttendance(ctx context.Context, subjectID string, date time.Time, status, remark string) error
}

// MarkFailure is one write that did not go through.
type MarkFailure struct {
	SubjectID string
	Date      time.Time
	Err       error
}

// MarkResult summarises an auto-mark run.
type MarkResult struct {
	EntryID   uint
	Status    string
	Dates     int
	Attempted int
	Written   int
	Failures  []MarkFailure
}

// AutoMarker writes an entry's auto-mark status for every subject on every
// covered day. Writes are independent: a failed write is logged and skipped.
type AutoMarker struct {
	writer AttendanceWriter
	logger *zap.Logger
}

// NewAutoMarker creates an AutoMarker.
func NewAutoMarker(writer AttendanceWriter, logger *zap.Logger) *AutoMarker {
	return &AutoMarker{writer: writer, logger: logger}
}

// Remark is the attendance remark left by an auto-mark of entry.
func Remark(entry *model.CalendarEntry) string {
	return "Auto-marked: " + entry.Name
}

// Mark covers entry.StartDate through its last day, both inclusive.
func (m *AutoMarker) Mark(ctx context.Context, entry *model.CalendarEntry, subjectIDs []string) (*MarkResult, error) {
	if !entry.AutoMark {
		return nil, ErrAutoMarkNotPermitted
	}

	result := &MarkResult{EntryID: entry.ID, Status: entry.AutoMarkStatus}
	last := entry.LastDay()
	for day := model.Day(entry.StartDate); !day.After(last); day = day.AddDate(0, 0, 1) {
		m.markDay(ctx, entry, day, subjectIDs, result)
	}

	m.logger.Info("calendar entry auto-marked",
		zap.Uint("entry_id", entry.ID),
		zap.String("status", entry.AutoMarkStatus),
		zap.Int("dates", result.Dates),
		zap.Int("written", result.Written),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

// MarkDate marks a single day; a day outside the entry yields an empty result.
func (m *AutoMarker) MarkDate(ctx context.Context, entry *model.CalendarEntry, date time.Time, subjectIDs []string) (*MarkResult, error) {
	if !entry.AutoMark {
		return nil, ErrAutoMarkNotPermitted
	}

	result := &MarkResult{EntryID: entry.ID, Status: entry.AutoMarkStatus}
	if entry.Covers(date) {
		m.markDay(ctx, entry, model.Day(date), subjectIDs, result)
	}
	return result, nil
}

func (m *AutoMarker) markDay(ctx context.Context, entry *model.CalendarEntry, day time.Time, subjectIDs []string, result *MarkResult) {
	result.Dates++
	remark := Remark(entry)
	for _, id := range subjectIDs {
		result.Attempted++
		if err := m.writer.UpsertAttendance(ctx, id, day, entry.AutoMarkStatus, remark); err != nil {
			m.logger.Warn("auto-mark write failed",
				zap.Uint("entry_id", entry.ID),
				zap.String("subject_id", id),
				zap.String("date", day.Format(model.DateLayout)),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, MarkFailure{SubjectID: id, Date: day, Err: err})
			continue
		}
		result.Written++
	}
}
