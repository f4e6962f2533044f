package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/model"
)

// ── ICS export / import ──────────────────────────────────────
//
// Entries map to all-day VEVENTs:
//   - DTSTART is the first day, DTEND the day after the last (exclusive)
//   - CATEGORIES carries the category, unknown categories import as CUSTOM
//   - RRULE:FREQ=YEARLY marks a recurring entry
//   - X-ATTENDANCE-BLOCKED mirrors blocks-attendance on export only; imported
//     entries take their category defaults
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize = 5 * 1024 * 1024 // 5MB
	icsProductID   = "-//student-qr//school calendar//EN"
	icsBlockedProp = ics.ComponentProperty("X-ATTENDANCE-BLOCKED")
)

// ErrInvalidICS reports an unreadable calendar file.
var ErrInvalidICS = errors.New("invalid iCalendar file")

// buildICS serialises entries as an iCalendar document.
func buildICS(entries []model.CalendarEntry, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for i := range entries {
		e := &entries[i]
		event := cal.AddEvent(fmt.Sprintf("calendar-entry-%d@student-qr", e.ID))
		event.SetDtStampTime(stamp)
		event.SetSummary(e.Name)
		if e.Description != "" {
			event.SetDescription(e.Description)
		}
		event.SetAllDayStartAt(model.Day(e.StartDate))
		event.SetAllDayEndAt(e.LastDay().AddDate(0, 0, 1))
		event.SetProperty(ics.ComponentPropertyCategories, e.Category)
		if e.RecurringYearly {
			event.AddRrule("FREQ=YEARLY")
		}
		event.SetProperty(icsBlockedProp, strings.ToUpper(strconv.FormatBool(e.BlocksAttendance)))
	}

	return cal.Serialize()
}

// parseICSEntries turns every usable VEVENT into a range entry. Events
// without a summary or a start date are reported in skipped.
func parseICSEntries(r io.Reader) ([]*model.CalendarEntry, []string, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidICS, err)
	}

	var entries []*model.CalendarEntry
	var skipped []string
	for i, event := range cal.Events() {
		entry, err := parseICSEvent(event)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("event %d: %v", i+1, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func parseICSEvent(event *ics.VEvent) (*model.CalendarEntry, error) {
	summary := event.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return nil, errors.New("missing SUMMARY")
	}
	name := strings.TrimSpace(summary.Value)

	start, _, err := parseICSDate(event, ics.ComponentPropertyDtStart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var end *time.Time
	if last, boundary, err := parseICSDate(event, ics.ComponentPropertyDtEnd); err == nil {
		// DTEND is exclusive
		if boundary {
			last = last.AddDate(0, 0, -1)
		}
		if last.After(start) {
			end = &last
		}
	}

	category := calendar.Custom
	if prop := event.GetProperty(ics.ComponentPropertyCategories); prop != nil {
		for _, value := range strings.Split(prop.Value, ",") {
			if c, err := calendar.ParseCategory(strings.ToUpper(value)); err == nil {
				category = c
				break
			}
		}
	}

	description := ""
	if prop := event.GetProperty(ics.ComponentPropertyDescription); prop != nil {
		description = trimmed(prop.Value, "")
	}

	entry, err := calendar.NewRangeEntry(name, description, start, end, string(category))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if rrule := event.GetProperty(ics.ComponentPropertyRrule); rrule != nil &&
		strings.Contains(strings.ToUpper(rrule.Value), "FREQ=YEARLY") {
		entry.RecurringYearly = true
	}
	return entry, nil
}

// parseICSDate reads a date or date-time property as a calendar day.
// boundary is true when the value falls on midnight, which is where an
// exclusive DTEND of an all-day event lands.
func parseICSDate(event *ics.VEvent, propName ics.ComponentProperty) (day time.Time, boundary bool, err error) {
	prop := event.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return model.Day(t), isMidnight(t), nil
	}

	loc := time.UTC
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if tz, err := time.LoadLocation(v[0]); err == nil {
				loc = tz
			}
		}
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, loc); err == nil {
			return model.Day(t), isMidnight(t), nil
		}
	}

	return time.Time{}, false, fmt.Errorf("cannot parse %s %q", propName, val)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}
