package model

import (
	"strings"
	"time"
)

// Attendance is one student's status on one day; unique per (student, date).
type Attendance struct {
	ID             uint      `gorm:"primaryKey"                                 json:"id"`
	StudentID      string    `gorm:"type:varchar(64);not null"                  json:"student_id"`
	AttendanceDate time.Time `gorm:"type:date;not null"                         json:"attendance_date"`
	Status         string    `gorm:"type:varchar(20);not null"                  json:"status"`
	Remarks        string    `gorm:"type:varchar(500);not null;default:''"      json:"remarks"`
	MarkedBy       string    `gorm:"type:varchar(50);not null;default:''"       json:"marked_by"`
	MarkedAt       time.Time `gorm:"not null"                                   json:"marked_at"`
	QRScanned      bool      `gorm:"column:qr_scanned;not null;default:false"   json:"qr_scanned"`

	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

// TableName table name
func (Attendance) TableName() string { return "attendance" }

// IsPresent status check
func (a *Attendance) IsPresent() bool { return strings.EqualFold(a.Status, StatusPresent) }

// IsAbsent status check
func (a *Attendance) IsAbsent() bool { return strings.EqualFold(a.Status, StatusAbsent) }

// ValidStatus reports whether s is one of the four attendance statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}
