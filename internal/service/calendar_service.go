package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
)

// ── calendar business errors ──

var (
	ErrCalendarEntryNotFound = errors.New("calendar entry not found")
	ErrInvalidYear           = errors.New("year must be between 1900 and 9999")
)

// upcomingMonths is how far ahead ListUpcoming looks.
const upcomingMonths = 3

// CalendarService school calendar use cases
type CalendarService interface {
	List(ctx context.Context, year int, category string) ([]dto.CalendarEntryResponse, error)
	ListActive(ctx context.Context) ([]dto.CalendarEntryResponse, error)
	ListUpcoming(ctx context.Context) ([]dto.CalendarEntryResponse, error)
	Years(ctx context.Context) ([]int, error)
	Get(ctx context.Context, id uint) (*dto.CalendarEntryResponse, error)
	Create(ctx context.Context, req *dto.CreateCalendarEntryRequest, callerID string) (*dto.CalendarEntryResponse, error)
	CreateRange(ctx context.Context, req *dto.CreateCalendarRangeRequest, callerID string) (*dto.CalendarEntryResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateCalendarEntryRequest, callerID string) (*dto.CalendarEntryResponse, error)
	Delete(ctx context.Context, id uint) error
	Toggle(ctx context.Context, id uint, callerID string) (*dto.CalendarEntryResponse, error)

	// Evaluate runs the eligibility engine over the entries covering date.
	Evaluate(ctx context.Context, date time.Time) (calendar.Eligibility, error)
	Check(ctx context.Context, date string) (*dto.EligibilityResponse, error)
	CanMarkAttendance(ctx context.Context, date time.Time) (bool, error)
	Summary(ctx context.Context) (*dto.CalendarSummaryResponse, error)

	AutoMark(ctx context.Context, id uint) (*dto.AutoMarkResponse, error)
	// AutoMarkForDate marks date for every active auto-mark entry covering it.
	AutoMarkForDate(ctx context.Context, date time.Time) (int, error)
	InitializeDefaults(ctx context.Context, year int) (*dto.InitializeCalendarResponse, error)

	ExportICS(ctx context.Context, year int) ([]byte, string, error)
	ImportICS(ctx context.Context, r io.Reader, callerID string) (*dto.ImportCalendarResponse, error)
}

type calendarService struct {
	repo   *repository.Repository
	marker *calendar.AutoMarker
	clock  Clock
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService. Auto-marks are written
// through the attendance repository.
func NewCalendarService(repo *repository.Repository, clock Clock, logger *zap.Logger) CalendarService {
	return &calendarService{
		repo:   repo,
		marker: calendar.NewAutoMarker(repo.Attendance, logger),
		clock:  clock,
		logger: logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *calendarService) List(ctx context.Context, year int, category string) ([]dto.CalendarEntryResponse, error) {
	if year == 0 {
		year = s.clock().Year()
	}
	if year < 1900 || year > 9999 {
		return nil, ErrInvalidYear
	}
	if category != "" {
		c, err := calendar.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		category = string(c)
	}

	entries, err := s.repo.CalendarEntry.List(ctx, repository.CalendarFilter{Year: year, Category: category})
	if err != nil {
		s.logger.Error("list calendar entries failed", zap.Int("year", year), zap.Error(err))
		return nil, err
	}
	return toEntryResponses(entries), nil
}

func (s *calendarService) ListActive(ctx context.Context) ([]dto.CalendarEntryResponse, error) {
	entries, err := s.repo.CalendarEntry.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active calendar entries failed", zap.Error(err))
		return nil, err
	}
	return toEntryResponses(entries), nil
}

func (s *calendarService) ListUpcoming(ctx context.Context) ([]dto.CalendarEntryResponse, error) {
	entries, err := s.upcoming(ctx)
	if err != nil {
		return nil, err
	}
	return toEntryResponses(entries), nil
}

func (s *calendarService) upcoming(ctx context.Context) ([]model.CalendarEntry, error) {
	today := s.clock.today()
	entries, err := s.repo.CalendarEntry.ListStartingBetween(ctx, today, today.AddDate(0, upcomingMonths, 0))
	if err != nil {
		s.logger.Error("list upcoming calendar entries failed", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (s *calendarService) Years(ctx context.Context) ([]int, error) {
	years, err := s.repo.CalendarEntry.DistinctYears(ctx)
	if err != nil {
		s.logger.Error("list calendar years failed", zap.Error(err))
		return nil, err
	}
	return years, nil
}

// ────────────────────── Get ──────────────────────

func (s *calendarService) Get(ctx context.Context, id uint) (*dto.CalendarEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

func (s *calendarService) load(ctx context.Context, id uint) (*model.CalendarEntry, error) {
	entry, err := s.repo.CalendarEntry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarEntryNotFound
		}
		s.logger.Error("get calendar entry failed", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// ────────────────────── Create ──────────────────────

// Create uses the bare constructor and applies only the flags the caller set.
// A vacation additionally becomes an auto-marked absence with a resumption date.
func (s *calendarService) Create(ctx context.Context, req *dto.CreateCalendarEntryRequest, callerID string) (*dto.CalendarEntryResponse, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	entry, err := calendar.NewEntry(req.Name, req.Description, start, end, req.Category)
	if err != nil {
		return nil, err
	}

	if entry.Category == string(calendar.Vacation) {
		calendar.ApplyVacationExtras(entry)
	}
	if req.BlocksAttendance != nil {
		entry.BlocksAttendance = *req.BlocksAttendance
	}
	if req.AutoMark != nil {
		entry.AutoMark = *req.AutoMark
	}
	if req.AutoMarkStatus != "" {
		entry.AutoMarkStatus = req.AutoMarkStatus
	}
	entry.RecurringYearly = req.RecurringYearly
	entry.SchoolActivity = entry.SchoolActivity || req.SchoolActivity
	entry.ActivityDescription = req.ActivityDescription

	if err := s.save(ctx, entry, callerID); err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// CreateRange uses the range helper, so the category defaults decide the policy.
func (s *calendarService) CreateRange(ctx context.Context, req *dto.CreateCalendarRangeRequest, callerID string) (*dto.CalendarEntryResponse, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	entry, err := calendar.NewRangeEntry(req.Name, req.Description, start, end, req.Category)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, entry, callerID); err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

func (s *calendarService) save(ctx context.Context, entry *model.CalendarEntry, callerID string) error {
	if callerID != "" {
		entry.CreatedBy = &callerID
		entry.UpdatedBy = &callerID
	}
	if err := s.repo.CalendarEntry.Create(ctx, entry); err != nil {
		s.logger.Error("create calendar entry failed", zap.String("name", entry.Name), zap.Error(err))
		return err
	}
	s.logger.Info("calendar entry created",
		zap.Uint("id", entry.ID),
		zap.String("name", entry.Name),
		zap.String("category", entry.Category),
		zap.String("range", entry.DateRangeLabel()),
	)
	return nil
}

// ────────────────────── Update ──────────────────────

// Update replaces every editable field of the entry.
func (s *calendarService) Update(ctx context.Context, id uint, req *dto.UpdateCalendarEntryRequest, callerID string) (*dto.CalendarEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := calendar.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(start) {
		return nil, calendar.ErrInvalidDateRange
	}
	resumption, err := parseOptionalDate(req.ResumptionDate)
	if err != nil {
		return nil, err
	}

	entry.Name = req.Name
	entry.Description = req.Description
	entry.StartDate = start
	entry.EndDate = end
	entry.Category = string(category)
	entry.Active = req.Active
	entry.BlocksAttendance = req.BlocksAttendance
	entry.RecurringYearly = req.RecurringYearly
	entry.AutoMark = req.AutoMark
	entry.AutoMarkStatus = req.AutoMarkStatus
	entry.AffectsResumption = req.AffectsResumption
	entry.ResumptionDate = resumption
	entry.SchoolActivity = req.SchoolActivity
	entry.ActivityDescription = req.ActivityDescription
	if callerID != "" {
		entry.UpdatedBy = &callerID
	}

	if err := s.repo.CalendarEntry.Update(ctx, entry); err != nil {
		s.logger.Error("update calendar entry failed", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// ────────────────────── Delete ──────────────────────

func (s *calendarService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.CalendarEntry.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCalendarEntryNotFound
		}
		s.logger.Error("delete calendar entry failed", zap.Uint("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("calendar entry deleted", zap.Uint("id", id))
	return nil
}

// ────────────────────── Toggle ──────────────────────

func (s *calendarService) Toggle(ctx context.Context, id uint, callerID string) (*dto.CalendarEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.Active = !entry.Active
	if callerID != "" {
		entry.UpdatedBy = &callerID
	}
	if err := s.repo.CalendarEntry.Update(ctx, entry); err != nil {
		s.logger.Error("toggle calendar entry failed", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// ────────────────────── Eligibility ──────────────────────

func (s *calendarService) Evaluate(ctx context.Context, date time.Time) (calendar.Eligibility, error) {
	entries, err := s.repo.CalendarEntry.ListCovering(ctx, model.Day(date))
	if err != nil {
		s.logger.Error("list covering calendar entries failed", zap.Time("date", date), zap.Error(err))
		return calendar.Eligibility{}, err
	}
	return calendar.Evaluate(date, entries), nil
}

func (s *calendarService) Check(ctx context.Context, date string) (*dto.EligibilityResponse, error) {
	d, err := dateOrToday(date, s.clock)
	if err != nil {
		return nil, err
	}
	result, err := s.Evaluate(ctx, d)
	if err != nil {
		return nil, err
	}
	return &dto.EligibilityResponse{
		Date:          d.Format(model.DateLayout),
		CanMark:       result.Eligible,
		HasBlocking:   result.HasBlocking(),
		BlockingNames: result.BlockingNames(),
		Entries:       toEntryResponses(result.Entries),
	}, nil
}

func (s *calendarService) CanMarkAttendance(ctx context.Context, date time.Time) (bool, error) {
	result, err := s.Evaluate(ctx, date)
	if err != nil {
		return false, err
	}
	return result.Eligible, nil
}

// ────────────────────── Summary ──────────────────────

func (s *calendarService) Summary(ctx context.Context) (*dto.CalendarSummaryResponse, error) {
	upcoming, err := s.upcoming(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.Evaluate(ctx, s.clock.today())
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CalendarEntry.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active calendar entries failed", zap.Error(err))
		return nil, err
	}

	counts := make(map[string]int64)
	for c, n := range calendar.CountByCategory(active) {
		counts[string(c)] = n
	}

	return &dto.CalendarSummaryResponse{
		UpcomingCount:     len(upcoming),
		TodayEntries:      toEntryResponses(today.Entries),
		IsNoAttendanceDay: !today.Eligible,
		CountByCategory:   counts,
	}, nil
}

// ────────────────────── AutoMark ──────────────────────

func (s *calendarService) AutoMark(ctx context.Context, id uint) (*dto.AutoMarkResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.AutoMark {
		return nil, calendar.ErrAutoMarkNotPermitted
	}

	studentIDs, err := s.repo.Student.ListIDs(ctx)
	if err != nil {
		s.logger.Error("list student ids failed", zap.Error(err))
		return nil, err
	}

	result, err := s.marker.Mark(ctx, entry, studentIDs)
	if err != nil {
		return nil, err
	}
	return toAutoMarkResponse(result), nil
}

func (s *calendarService) AutoMarkForDate(ctx context.Context, date time.Time) (int, error) {
	entries, err := s.repo.CalendarEntry.ListCovering(ctx, model.Day(date))
	if err != nil {
		s.logger.Error("list covering calendar entries failed", zap.Time("date", date), zap.Error(err))
		return 0, err
	}

	var marked []*model.CalendarEntry
	for i := range entries {
		if entries[i].AutoMark {
			marked = append(marked, &entries[i])
		}
	}
	if len(marked) == 0 {
		return 0, nil
	}

	studentIDs, err := s.repo.Student.ListIDs(ctx)
	if err != nil {
		s.logger.Error("list student ids failed", zap.Error(err))
		return 0, err
	}

	for _, entry := range marked {
		result, err := s.marker.MarkDate(ctx, entry, date, studentIDs)
		if err != nil {
			return 0, err
		}
		s.logger.Info("calendar entry swept",
			zap.Uint("entry_id", entry.ID),
			zap.String("date", model.Day(date).Format(model.DateLayout)),
			zap.Int("written", result.Written),
			zap.Int("failed", len(result.Failures)),
		)
	}
	return len(marked), nil
}

// ────────────────────── InitializeDefaults ──────────────────────

// InitializeDefaults seeds the predefined holidays and the activity and break
// ranges of year. A year that already has entries is left untouched.
func (s *calendarService) InitializeDefaults(ctx context.Context, year int) (*dto.InitializeCalendarResponse, error) {
	if year == 0 {
		year = s.clock().Year()
	}
	if year < 1900 || year > 9999 {
		return nil, ErrInvalidYear
	}

	count, err := s.repo.CalendarEntry.CountByYear(ctx, year)
	if err != nil {
		s.logger.Error("count calendar entries failed", zap.Int("year", year), zap.Error(err))
		return nil, err
	}
	if count > 0 {
		return &dto.InitializeCalendarResponse{Year: year, Skipped: true}, nil
	}

	entries, err := defaultEntries(year)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		for _, entry := range entries {
			if err := txRepo.CalendarEntry.Create(ctx, entry); err != nil {
				return fmt.Errorf("seed %q: %w", entry.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("seed calendar failed", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	s.logger.Info("calendar seeded", zap.Int("year", year), zap.Int("entries", len(entries)))
	return &dto.InitializeCalendarResponse{Year: year, Created: len(entries)}, nil
}

// ────────────────────── ICS ──────────────────────

func (s *calendarService) ExportICS(ctx context.Context, year int) ([]byte, string, error) {
	if year == 0 {
		year = s.clock().Year()
	}
	if year < 1900 || year > 9999 {
		return nil, "", ErrInvalidYear
	}

	entries, err := s.repo.CalendarEntry.List(ctx, repository.CalendarFilter{Year: year})
	if err != nil {
		s.logger.Error("list calendar entries failed", zap.Int("year", year), zap.Error(err))
		return nil, "", err
	}

	data := buildICS(entries, s.clock())
	return []byte(data), fmt.Sprintf("school-calendar-%d.ics", year), nil
}

func (s *calendarService) ImportICS(ctx context.Context, r io.Reader, callerID string) (*dto.ImportCalendarResponse, error) {
	entries, skipped, err := parseICSEntries(io.LimitReader(r, icsMaxFileSize))
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		for _, entry := range entries {
			if callerID != "" {
				entry.CreatedBy = &callerID
				entry.UpdatedBy = &callerID
			}
			if err := txRepo.CalendarEntry.Create(ctx, entry); err != nil {
				return fmt.Errorf("import %q: %w", entry.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("import calendar failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("calendar imported", zap.Int("imported", len(entries)), zap.Int("skipped", len(skipped)))
	return &dto.ImportCalendarResponse{Imported: len(entries), Skipped: skipped}, nil
}

// ── conversion ──

func toEntryResponse(e *model.CalendarEntry) *dto.CalendarEntryResponse {
	resp := &dto.CalendarEntryResponse{
		ID:                  e.ID,
		Name:                e.Name,
		Description:         e.Description,
		StartDate:           e.StartDate.Format(model.DateLayout),
		EndDate:             formatDate(e.EndDate),
		DateRange:           e.DateRangeLabel(),
		Days:                e.Days(),
		Category:            e.Category,
		CategoryName:        calendar.Category(e.Category).DisplayName(),
		Active:              e.Active,
		BlocksAttendance:    e.BlocksAttendance,
		RecurringYearly:     e.RecurringYearly,
		AutoMark:            e.AutoMark,
		AutoMarkStatus:      e.AutoMarkStatus,
		AffectsResumption:   e.AffectsResumption,
		ResumptionDate:      formatDate(e.ResumptionDate),
		SchoolActivity:      e.SchoolActivity,
		ActivityDescription: e.ActivityDescription,
		CreatedAt:           formatTime(e.CreatedAt),
		UpdatedAt:           formatTime(e.UpdatedAt),
	}
	return resp
}

func toEntryResponses(entries []model.CalendarEntry) []dto.CalendarEntryResponse {
	result := make([]dto.CalendarEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toEntryResponse(&entries[i]))
	}
	return result
}

func toAutoMarkResponse(r *calendar.MarkResult) *dto.AutoMarkResponse {
	resp := &dto.AutoMarkResponse{
		EntryID:   r.EntryID,
		Status:    r.Status,
		Dates:     r.Dates,
		Attempted: r.Attempted,
		Written:   r.Written,
		Failed:    len(r.Failures),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures,
			fmt.Sprintf("%s %s: %v", f.SubjectID, f.Date.Format(model.DateLayout), f.Err))
	}
	return resp
}

// trimmed returns s without surrounding blanks, or fallback when empty.
func trimmed(s, fallback string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return fallback
}
