package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"student-qr/backend/config"
	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
	pkgerrors "student-qr/backend/pkg/errors"
	"student-qr/backend/pkg/jwt"
)

// Service aggregates every service.
type Service struct {
	Auth       AuthService
	Calendar   CalendarService
	Attendance AttendanceService
	Student    StudentService
	Export     ExportService
}

// TokenBlacklist revokes access tokens before they expire.
// *redis.Client implements it.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// NewService wires the services. blacklist may be nil when Redis is unavailable.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	qr QRCodeWriter,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	clock := newClock(loc)
	calendarSvc := NewCalendarService(repo, clock, logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Calendar:   calendarSvc,
		Attendance: NewAttendanceService(repo, calendarSvc, clock, logger),
		Student:    NewStudentService(repo, qr, logger),
		Export:     NewExportService(repo, clock, logger),
	}
}

// ── helpers ──

// Clock yields the current time in the school's time zone.
type Clock func() time.Time

func newClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// today is the current school day at midnight UTC.
func (c Clock) today() time.Time {
	t := c()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate parses YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, pkgerrors.ErrInvalidDate
	}
	return t, nil
}

// parseOptionalDate parses an optional YYYY-MM-DD; nil or blank yields nil.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateOrToday parses s, falling back to today when blank.
func dateOrToday(s string, clock Clock) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return clock.today(), nil
	}
	return parseDate(s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(model.DateLayout)
}
