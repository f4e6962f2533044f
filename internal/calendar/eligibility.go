package calendar

import (
	"sort"
	"time"

	"student-qr/backend/internal/model"
)

// Eligibility is the attendance verdict for one date.
type Eligibility struct {
	Date     time.Time
	Eligible bool
	// Entries are the active entries covering Date.
	Entries []model.CalendarEntry
	// Blocking are the covering entries that disable attendance.
	Blocking []model.CalendarEntry
}

// HasBlocking reports whether any covering entry disables attendance.
func (e Eligibility) HasBlocking() bool { return len(e.Blocking) > 0 }

// BlockingNames lists the names of the blocking entries.
func (e Eligibility) BlockingNames() []string {
	names := make([]string, 0, len(e.Blocking))
	for i := range e.Blocking {
		names = append(names, e.Blocking[i].Name)
	}
	return names
}

// EntriesCovering returns the active entries whose range includes date,
// ordered by start date then id.
func EntriesCovering(date time.Time, entries []model.CalendarEntry) []model.CalendarEntry {
	var covering []model.CalendarEntry
	for i := range entries {
		if entries[i].Active && entries[i].Covers(date) {
			covering = append(covering, entries[i])
		}
	}
	sort.SliceStable(covering, func(i, j int) bool {
		if !covering[i].StartDate.Equal(covering[j].StartDate) {
			return covering[i].StartDate.Before(covering[j].StartDate)
		}
		return covering[i].ID < covering[j].ID
	})
	return covering
}

// Evaluate decides whether attendance may be marked on date.
//
// A date with no covering entry is eligible. Otherwise a single covering
// entry that does not block attendance makes the date eligible, even when
// other covering entries block it.
func Evaluate(date time.Time, entries []model.CalendarEntry) Eligibility {
	result := Eligibility{Date: model.Day(date), Eligible: true}
	result.Entries = EntriesCovering(date, entries)
	if len(result.Entries) == 0 {
		return result
	}

	permitted := false
	for i := range result.Entries {
		if result.Entries[i].BlocksAttendance {
			result.Blocking = append(result.Blocking, result.Entries[i])
		} else {
			permitted = true
		}
	}
	result.Eligible = permitted
	return result
}

// IsEligible is Evaluate reduced to its verdict.
func IsEligible(date time.Time, entries []model.CalendarEntry) bool {
	return Evaluate(date, entries).Eligible
}
