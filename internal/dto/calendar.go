package dto

// ── calendar DTOs ──

// CalendarListRequest GET /calendar-entries query
type CalendarListRequest struct {
	Year     int    `form:"year"     binding:"omitempty,min=1900,max=9999"`
	Category string `form:"category" binding:"omitempty,category"`
}

// CreateCalendarEntryRequest creates an entry with explicit policy flags.
// Unset flags keep the declared defaults.
type CreateCalendarEntryRequest struct {
	Name                string  `json:"name"                 binding:"required,min=1,max=200"`
	Description         string  `json:"description"          binding:"max=500"`
	StartDate           string  `json:"start_date"           binding:"required"` // "2024-05-15"
	EndDate             *string `json:"end_date"`
	Category            string  `json:"category"             binding:"required,category"`
	BlocksAttendance    *bool   `json:"blocks_attendance"`
	RecurringYearly     bool    `json:"recurring_yearly"`
	AutoMark            *bool   `json:"auto_mark"`
	AutoMarkStatus      string  `json:"auto_mark_status"     binding:"omitempty,attendance_status"`
	SchoolActivity      bool    `json:"school_activity"`
	ActivityDescription string  `json:"activity_description" binding:"max=1000"`
}

// CreateCalendarRangeRequest creates an entry with the category defaults applied.
type CreateCalendarRangeRequest struct {
	Name        string  `json:"name"        binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=500"`
	StartDate   string  `json:"start_date"  binding:"required"`
	EndDate     *string `json:"end_date"`
	Category    string  `json:"category"    binding:"required,category"`
}

// UpdateCalendarEntryRequest replaces every editable field.
type UpdateCalendarEntryRequest struct {
	Name                string  `json:"name"                 binding:"required,min=1,max=200"`
	Description         string  `json:"description"          binding:"max=500"`
	StartDate           string  `json:"start_date"           binding:"required"`
	EndDate             *string `json:"end_date"`
	Category            string  `json:"category"             binding:"required,category"`
	Active              bool    `json:"active"`
	BlocksAttendance    bool    `json:"blocks_attendance"`
	RecurringYearly     bool    `json:"recurring_yearly"`
	AutoMark            bool    `json:"auto_mark"`
	AutoMarkStatus      string  `json:"auto_mark_status"     binding:"required,attendance_status"`
	AffectsResumption   bool    `json:"affects_resumption"`
	ResumptionDate      *string `json:"resumption_date"`
	SchoolActivity      bool    `json:"school_activity"`
	ActivityDescription string  `json:"activity_description" binding:"max=1000"`
}

// InitializeCalendarRequest POST /calendar-entries/initialize
type InitializeCalendarRequest struct {
	Year int `json:"year" binding:"omitempty,min=1900,max=9999"`
}

// CalendarEntryResponse entry view
type CalendarEntryResponse struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date,omitempty"`
	DateRange           string `json:"date_range"`
	Days                int    `json:"days"`
	Category            string `json:"category"`
	CategoryName        string `json:"category_name"`
	Active              bool   `json:"active"`
	BlocksAttendance    bool   `json:"blocks_attendance"`
	RecurringYearly     bool   `json:"recurring_yearly"`
	AutoMark            bool   `json:"auto_mark"`
	AutoMarkStatus      string `json:"auto_mark_status"`
	AffectsResumption   bool   `json:"affects_resumption"`
	ResumptionDate      string `json:"resumption_date,omitempty"`
	SchoolActivity      bool   `json:"school_activity"`
	ActivityDescription string `json:"activity_description,omitempty"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// EligibilityResponse GET /calendar-entries/check
type EligibilityResponse struct {
	Date          string                  `json:"date"`
	CanMark       bool                    `json:"can_mark_attendance"`
	HasBlocking   bool                    `json:"has_blocking"`
	BlockingNames []string                `json:"blocking_names"`
	Entries       []CalendarEntryResponse `json:"entries"`
}

// CalendarSummaryResponse GET /calendar-entries/summary
type CalendarSummaryResponse struct {
	UpcomingCount     int                     `json:"upcoming_count"`
	TodayEntries      []CalendarEntryResponse `json:"today_entries"`
	IsNoAttendanceDay bool                    `json:"is_no_attendance_day"`
	CountByCategory   map[string]int64        `json:"count_by_category"`
}

// AutoMarkResponse POST /calendar-entries/:id/auto-mark
type AutoMarkResponse struct {
	EntryID   uint     `json:"entry_id"`
	Status    string   `json:"status"`
	Dates     int      `json:"dates"`
	Attempted int      `json:"attempted"`
	Written   int      `json:"written"`
	Failed    int      `json:"failed"`
	Failures  []string `json:"failures,omitempty"` // "<student id> <date>: <error>"
}

// InitializeCalendarResponse seeding outcome
type InitializeCalendarResponse struct {
	Year    int  `json:"year"`
	Created int  `json:"created"`
	Skipped bool `json:"skipped"`
}

// ImportCalendarResponse ICS import outcome
type ImportCalendarResponse struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}
