package calendar

import (
	"time"

	"student-qr/backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func mustRange(name string, start, end time.Time, c Category) model.CalendarEntry {
	e, err := NewRangeEntry(name, "", start, &end, string(c))
	if err != nil {
		panic(err)
	}
	return *e
}
