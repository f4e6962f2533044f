package dto

// ── attendance DTOs ──

// MarkAttendanceRequest marks one student by id or roll number.
// An empty date means today.
type MarkAttendanceRequest struct {
	Identifier string `json:"identifier" binding:"required,max=64"`
	Status     string `json:"status"     binding:"required,attendance_status"`
	Remarks    string `json:"remarks"    binding:"max=500"`
	Date       string `json:"date"`
}

// MarkByQRRequest marks the student encoded in a scanned payload.
type MarkByQRRequest struct {
	Payload string `json:"payload" binding:"required,max=2000"`
	Status  string `json:"status"  binding:"omitempty,attendance_status"`
	Remarks string `json:"remarks" binding:"max=500"`
	Date    string `json:"date"`
}

// AttendanceResponse attendance record view
type AttendanceResponse struct {
	ID          uint   `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	RollNumber  string `json:"roll_number,omitempty"`
	Course      string `json:"course,omitempty"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Remarks     string `json:"remarks"`
	MarkedBy    string `json:"marked_by"`
	MarkedAt    string `json:"marked_at"`
	QRScanned   bool   `json:"qr_scanned"`
}

// AttendanceSummaryResponse daily totals
type AttendanceSummaryResponse struct {
	Date          string  `json:"date"`
	Course        string  `json:"course,omitempty"`
	Present       int64   `json:"present"`
	Absent        int64   `json:"absent"`
	TotalStudents int64   `json:"total_students"`
	Marked        int64   `json:"marked"`
	Unmarked      int64   `json:"unmarked"`
	Percentage    float64 `json:"percentage"`
}

// DateStatusResponse GET /attendance/status
type DateStatusResponse struct {
	Date          string               `json:"date"`
	CanMark       bool                 `json:"can_mark_attendance"`
	BlockingNames []string             `json:"blocking_names"`
	Message       string               `json:"message"`
	Records       []AttendanceResponse `json:"records"`
}

// AttendanceStatsResponse range statistics
type AttendanceStatsResponse struct {
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	TotalRecords   int64   `json:"total_records"`
	Present        int64   `json:"present"`
	Absent         int64   `json:"absent"`
	UniqueStudents int64   `json:"unique_students"`
	TotalStudents  int64   `json:"total_students"`
	Rate           float64 `json:"attendance_rate"`
}

// DateRangeRequest ?start=&end=
type DateRangeRequest struct {
	Start string `form:"start" binding:"required"`
	End   string `form:"end"   binding:"required"`
}
