package handler

import "student-qr/backend/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	Calendar   *CalendarHandler
	Student    *StudentHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler creates the aggregate. db may be nil, in which case /health
// reports the process only.
func NewHandler(svc *service.Service, db Pinger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Calendar:   NewCalendarHandler(svc.Calendar),
		Student:    NewStudentHandler(svc.Student),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
		Health:     NewHealthHandler(db),
	}
}
