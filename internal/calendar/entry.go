package calendar

import (
	"errors"
	"time"

	"student-qr/backend/internal/model"
)

// ErrInvalidDateRange is returned when an end date precedes the start date.
var ErrInvalidDateRange = errors.New("end date must not be before start date")

// Policy is the attendance behaviour a category gives a new range entry.
type Policy struct {
	BlocksAttendance bool
	AutoMark         bool
	// AutoMarkStatus is empty when the category keeps the declared default.
	AutoMarkStatus    string
	AffectsResumption bool
	SchoolActivity    bool
}

// DefaultsFor maps a category to its default policy.
func DefaultsFor(c Category) Policy {
	switch c {
	case Vacation:
		return Policy{BlocksAttendance: true, AutoMark: true, AutoMarkStatus: model.StatusAbsent, AffectsResumption: true}
	case SchoolActivity:
		return Policy{BlocksAttendance: false, AutoMark: true, AutoMarkStatus: model.StatusPresent, SchoolActivity: true}
	case SpecialEvent, Examination:
		return Policy{BlocksAttendance: false, AutoMark: false}
	default:
		return Policy{BlocksAttendance: true, AutoMark: false}
	}
}

// NewEntry builds an entry with the declared defaults only: active, blocking
// attendance, no auto-mark, auto-mark status ABSENT. end may be nil.
func NewEntry(name, description string, start time.Time, end *time.Time, category string) (*model.CalendarEntry, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}

	start = model.Day(start)
	if end != nil {
		e := model.Day(*end)
		if e.Before(start) {
			return nil, ErrInvalidDateRange
		}
		end = &e
	}

	return &model.CalendarEntry{
		Name:             name,
		Description:      description,
		StartDate:        start,
		EndDate:          end,
		Category:         string(c),
		Active:           true,
		BlocksAttendance: true,
		AutoMarkStatus:   model.StatusAbsent,
	}, nil
}

// NewRangeEntry builds an entry and applies the category defaults on top of
// the declared ones.
func NewRangeEntry(name, description string, start time.Time, end *time.Time, category string) (*model.CalendarEntry, error) {
	entry, err := NewEntry(name, description, start, end, category)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(entry)
	return entry, nil
}

// ApplyDefaults overwrites the policy flags of entry with its category defaults.
// Vacations resume the day after their last day.
func ApplyDefaults(entry *model.CalendarEntry) {
	p := DefaultsFor(Category(entry.Category))

	entry.BlocksAttendance = p.BlocksAttendance
	entry.AutoMark = p.AutoMark
	if p.AutoMarkStatus != "" {
		entry.AutoMarkStatus = p.AutoMarkStatus
	}
	if p.AffectsResumption {
		entry.AffectsResumption = true
		resume := entry.LastDay().AddDate(0, 0, 1)
		entry.ResumptionDate = &resume
	}
	if p.SchoolActivity {
		entry.SchoolActivity = true
	}
}

// ApplyVacationExtras makes entry an auto-marked absence that resumes the day
// after its last day. Blocking is left as is.
func ApplyVacationExtras(entry *model.CalendarEntry) {
	entry.AutoMark = true
	entry.AutoMarkStatus = model.StatusAbsent
	entry.AffectsResumption = true
	resume := entry.LastDay().AddDate(0, 0, 1)
	entry.ResumptionDate = &resume
}
