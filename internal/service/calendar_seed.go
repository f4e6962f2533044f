package service

import (
	"time"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/model"
)

type seedEntry struct {
	name        string
	description string
	start       [2]int // month, day
	end         [2]int // zero for a single day
	category    calendar.Category
}

// predefinedHolidays are created with the bare constructor; vacations get
// the vacation extras afterwards.
var predefinedHolidays = []seedEntry{
	{"New Year's Day", "New Year Celebration", [2]int{1, 1}, [2]int{}, calendar.PublicHoliday},
	{"Republic Day", "Indian Republic Day", [2]int{1, 26}, [2]int{}, calendar.PublicHoliday},
	{"Independence Day", "Indian Independence Day", [2]int{8, 15}, [2]int{}, calendar.PublicHoliday},
	{"Gandhi Jayanti", "Mahatma Gandhi's Birthday", [2]int{10, 2}, [2]int{}, calendar.PublicHoliday},
	{"Christmas Day", "Christmas Celebration", [2]int{12, 25}, [2]int{}, calendar.PublicHoliday},
	{"Teachers' Day", "Teachers' Day Celebration", [2]int{9, 5}, [2]int{}, calendar.SpecialEvent},
	{"Children's Day", "Children's Day Celebration", [2]int{11, 14}, [2]int{}, calendar.SpecialEvent},
	{"Summer Vacation", "Summer Break", [2]int{5, 15}, [2]int{6, 30}, calendar.Vacation},
	{"Winter Vacation", "Winter Break", [2]int{12, 20}, [2]int{12, 31}, calendar.Vacation},
	{"Diwali Vacation", "Diwali Festival Break", [2]int{11, 1}, [2]int{11, 5}, calendar.Vacation},
	{"Mid-term Break", "Mid-term Examination Break", [2]int{3, 15}, [2]int{3, 20}, calendar.Break},
}

// customRanges are created with the range helper, so category defaults apply.
var customRanges = []seedEntry{
	{"Annual Sports Week", "Inter-house sports competition and activities", [2]int{2, 10}, [2]int{2, 15}, calendar.SchoolActivity},
	{"Cultural Festival", "Annual cultural fest with performances", [2]int{8, 20}, [2]int{8, 25}, calendar.SchoolActivity},
	{"Science Exhibition Week", "Student science projects exhibition", [2]int{11, 5}, [2]int{11, 9}, calendar.SchoolActivity},
	{"Educational Field Trips", "Multiple grade-level field trips", [2]int{9, 15}, [2]int{9, 19}, calendar.SchoolActivity},
	{"Pre-Exam Study Break", "Break for final exam preparation", [2]int{3, 1}, [2]int{3, 5}, calendar.Break},
	{"Mid-Semester Break", "Short break between semesters", [2]int{7, 10}, [2]int{7, 14}, calendar.Break},
	{"Teacher Development Days", "Professional development for teachers", [2]int{4, 22}, [2]int{4, 23}, calendar.Break},
	{"School Maintenance Days", "Building maintenance and repairs", [2]int{1, 8}, [2]int{1, 10}, calendar.Break},
	{"Parent-Teacher Conference", "Meetings with parents - half days", [2]int{10, 28}, [2]int{10, 29}, calendar.SpecialEvent},
	{"Final Examinations", "Annual final examinations", [2]int{3, 25}, [2]int{4, 5}, calendar.Examination},
}

func (e seedEntry) dates(year int) (time.Time, *time.Time) {
	start := time.Date(year, time.Month(e.start[0]), e.start[1], 0, 0, 0, 0, time.UTC)
	if e.end[0] == 0 {
		return start, nil
	}
	end := time.Date(year, time.Month(e.end[0]), e.end[1], 0, 0, 0, 0, time.UTC)
	return start, &end
}

// defaultEntries builds the seed calendar of year.
func defaultEntries(year int) ([]*model.CalendarEntry, error) {
	entries := make([]*model.CalendarEntry, 0, len(predefinedHolidays)+len(customRanges))

	for _, seed := range predefinedHolidays {
		start, end := seed.dates(year)
		entry, err := calendar.NewEntry(seed.name, seed.description, start, end, string(seed.category))
		if err != nil {
			return nil, err
		}
		if seed.category == calendar.Vacation {
			calendar.ApplyVacationExtras(entry)
		}
		entries = append(entries, entry)
	}

	for _, seed := range customRanges {
		start, end := seed.dates(year)
		entry, err := calendar.NewRangeEntry(seed.name, seed.description, start, end, string(seed.category))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
