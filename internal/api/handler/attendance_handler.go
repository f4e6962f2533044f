package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/service"
	"student-qr/backend/pkg/response"
)

// AttendanceHandler attendance endpoints
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler.
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MarkAttendance marks a student by id or roll number
// POST /api/v1/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	record, err := h.attendanceSvc.Mark(c.Request.Context(), &req, username)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// MarkByQR marks the student encoded in a scanned QR payload
// POST /api/v1/attendance/qr
func (h *AttendanceHandler) MarkByQR(c *gin.Context) {
	var req dto.MarkByQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	record, err := h.attendanceSvc.MarkByQR(c.Request.Context(), &req, username)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// ListByDate records of a day (default today)
// GET /api/v1/attendance?date=2024-07-01
func (h *AttendanceHandler) ListByDate(c *gin.Context) {
	records, err := h.attendanceSvc.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// Summary daily totals
// GET /api/v1/attendance/summary?date=2024-07-01
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.attendanceSvc.Summary(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

// CourseSummary daily totals of one course
// GET /api/v1/attendance/course-summary?course=Physics&date=2024-07-01
func (h *AttendanceHandler) CourseSummary(c *gin.Context) {
	course := strings.TrimSpace(c.Query("course"))
	if course == "" {
		response.BadRequest(c, 10001, "course is required")
		return
	}

	summary, err := h.attendanceSvc.CourseSummary(c.Request.Context(), course, c.Query("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

// DateStatus whether a day accepts attendance
// GET /api/v1/attendance/status?date=2024-07-01
func (h *AttendanceHandler) DateStatus(c *gin.Context) {
	status, err := h.attendanceSvc.DateStatus(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, status)
}

// Stats range statistics
// GET /api/v1/attendance/stats?start=2024-07-01&end=2024-07-31
func (h *AttendanceHandler) Stats(c *gin.Context) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "start and end are required")
		return
	}

	stats, err := h.attendanceSvc.Stats(c.Request.Context(), req.Start, req.End)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, stats)
}

// StudentHistory all records of one student
// GET /api/v1/attendance/students/:identifier
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	records, err := h.attendanceSvc.StudentHistory(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	if writeInputError(c, err) {
		return
	}
	var blocked *service.BlockedError
	switch {
	case errors.As(err, &blocked):
		response.ErrorWithDetails(c, http.StatusConflict, 13001,
			"attendance cannot be marked on this date", strings.Join(blocked.Names, ", "))
	case errors.Is(err, service.ErrAttendanceBlocked):
		response.Conflict(c, 13001, "attendance cannot be marked on this date")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13002, "status must be PRESENT, ABSENT, LATE or EXCUSED")
	case errors.Is(err, service.ErrEmptyQRPayload):
		response.BadRequest(c, 13003, "QR payload does not identify a student")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "student not found")
	default:
		response.InternalError(c)
	}
}
