package model

import "time"

// Attendance statuses.
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLate    = "LATE"
	StatusExcused = "EXCUSED"
)

// CalendarEntry is a holiday, break, activity or other dated school event.
// A nil EndDate means the entry covers StartDate only.
type CalendarEntry struct {
	ID                  uint       `gorm:"primaryKey"                                      json:"id"`
	Name                string     `gorm:"type:varchar(200);not null"                      json:"name"`
	Description         string     `gorm:"type:varchar(500);not null;default:''"           json:"description"`
	StartDate           time.Time  `gorm:"type:date;not null"                              json:"start_date"`
	EndDate             *time.Time `gorm:"type:date"                                       json:"end_date,omitempty"`
	Category            string     `gorm:"type:varchar(30);not null"                       json:"category"`
	Active              bool       `gorm:"not null"                                        json:"active"`
	BlocksAttendance    bool       `gorm:"not null"                                        json:"blocks_attendance"`
	RecurringYearly     bool       `gorm:"not null;default:false"                          json:"recurring_yearly"`
	AutoMark            bool       `gorm:"not null;default:false"                          json:"auto_mark"`
	AutoMarkStatus      string     `gorm:"type:varchar(20);not null;default:'ABSENT'"      json:"auto_mark_status"`
	AffectsResumption   bool       `gorm:"not null;default:false"                          json:"affects_resumption"`
	ResumptionDate      *time.Time `gorm:"type:date"                                       json:"resumption_date,omitempty"`
	SchoolActivity      bool       `gorm:"column:school_activity;not null;default:false"   json:"school_activity"`
	ActivityDescription string     `gorm:"type:varchar(1000);not null;default:''"          json:"activity_description"`
	BaseModel
}

// TableName table name
func (CalendarEntry) TableName() string { return "calendar_entries" }

// LastDay is the final covered day.
func (e *CalendarEntry) LastDay() time.Time {
	if e.EndDate == nil {
		return Day(e.StartDate)
	}
	return Day(*e.EndDate)
}

// Covers reports whether date falls within start..end (inclusive).
func (e *CalendarEntry) Covers(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(e.StartDate)) && !d.After(e.LastDay())
}

// Days is the inclusive number of covered days.
func (e *CalendarEntry) Days() int {
	return int(e.LastDay().Sub(Day(e.StartDate)).Hours()/24) + 1
}

// IsMultiDay reports whether the entry spans more than one day.
func (e *CalendarEntry) IsMultiDay() bool {
	return e.Days() > 1
}

// DateRangeLabel renders "2024-05-15 to 2024-06-30", or the single date.
func (e *CalendarEntry) DateRangeLabel() string {
	start := Day(e.StartDate).Format(DateLayout)
	if !e.IsMultiDay() {
		return start
	}
	return start + " to " + e.LastDay().Format(DateLayout)
}
