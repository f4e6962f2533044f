package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/service"
	"student-qr/backend/pkg/response"
)

// calendarImportMaxBytes bounds an uploaded ICS file.
const calendarImportMaxBytes = 5 << 20

// CalendarHandler school calendar endpoints
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// ListEntries lists entries of a year, optionally of one category
// GET /api/v1/calendar-entries?year=2024&category=VACATION
func (h *CalendarHandler) ListEntries(c *gin.Context) {
	var req dto.CalendarListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	entries, err := h.calendarSvc.List(c.Request.Context(), req.Year, req.Category)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ListActive lists active entries
// GET /api/v1/calendar-entries/active
func (h *CalendarHandler) ListActive(c *gin.Context) {
	entries, err := h.calendarSvc.ListActive(c.Request.Context())
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ListUpcoming lists entries starting within the next three months
// GET /api/v1/calendar-entries/upcoming
func (h *CalendarHandler) ListUpcoming(c *gin.Context) {
	entries, err := h.calendarSvc.ListUpcoming(c.Request.Context())
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ListYears lists the years that have entries
// GET /api/v1/calendar-entries/years
func (h *CalendarHandler) ListYears(c *gin.Context) {
	years, err := h.calendarSvc.Years(c.Request.Context())
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"years": years})
}

// Summary dashboard figures
// GET /api/v1/calendar-entries/summary
func (h *CalendarHandler) Summary(c *gin.Context) {
	summary, err := h.calendarSvc.Summary(c.Request.Context())
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, summary)
}

// CheckDate reports whether attendance may be marked on a date (default today)
// GET /api/v1/calendar-entries/check?date=2024-06-01
func (h *CalendarHandler) CheckDate(c *gin.Context) {
	result, err := h.calendarSvc.Check(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, result)
}

// GetEntry entry detail
// GET /api/v1/calendar-entries/:id
func (h *CalendarHandler) GetEntry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, 10001, "invalid entry id")
		return
	}

	entry, err := h.calendarSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, entry)
}

// CreateEntry creates an entry with explicit flags
// POST /api/v1/calendar-entries
func (h *CalendarHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateCalendarEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.calendarSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.Created(c, entry)
}

// CreateRange creates an entry with the category defaults applied
// POST /api/v1/calendar-entries/range
func (h *CalendarHandler) CreateRange(c *gin.Context) {
	var req dto.CreateCalendarRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.calendarSvc.CreateRange(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.Created(c, entry)
}

// UpdateEntry replaces an entry
// PUT /api/v1/calendar-entries/:id
func (h *CalendarHandler) UpdateEntry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, 10001, "invalid entry id")
		return
	}

	var req dto.UpdateCalendarEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.calendarSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, entry)
}

// ToggleEntry flips the active flag
// PUT /api/v1/calendar-entries/:id/toggle
func (h *CalendarHandler) ToggleEntry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, 10001, "invalid entry id")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.calendarSvc.Toggle(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, entry)
}

// DeleteEntry deletes an entry
// DELETE /api/v1/calendar-entries/:id
func (h *CalendarHandler) DeleteEntry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, 10001, "invalid entry id")
		return
	}

	if err := h.calendarSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, nil)
}

// AutoMark writes the entry's status for every student on every covered day
// POST /api/v1/calendar-entries/:id/auto-mark
func (h *CalendarHandler) AutoMark(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, 10001, "invalid entry id")
		return
	}

	result, err := h.calendarSvc.AutoMark(c.Request.Context(), id)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, result)
}

// Initialize seeds the default calendar of a year
// POST /api/v1/calendar-entries/initialize
func (h *CalendarHandler) Initialize(c *gin.Context) {
	var req dto.InitializeCalendarRequest
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
			return
		}
	}

	result, err := h.calendarSvc.InitializeDefaults(c.Request.Context(), req.Year)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	if result.Skipped {
		response.OK(c, result)
		return
	}
	response.Created(c, result)
}

// ExportICS downloads a year as an iCalendar file
// GET /api/v1/calendar-entries/export.ics?year=2024
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	var req dto.CalendarListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	data, filename, err := h.calendarSvc.ExportICS(c.Request.Context(), req.Year)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// ImportICS creates entries from an uploaded iCalendar file
// POST /api/v1/calendar-entries/import (multipart: file)
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "file is required")
		return
	}
	if fileHeader.Size > calendarImportMaxBytes {
		response.BadRequest(c, 14005, "calendar file exceeds 5MB")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer file.Close()

	result, err := h.calendarSvc.ImportICS(c.Request.Context(), file, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	if writeInputError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCalendarEntryNotFound):
		response.NotFound(c, 14001, "calendar entry not found")
	case errors.Is(err, service.ErrInvalidYear):
		response.BadRequest(c, 14003, "year must be between 1900 and 9999")
	case errors.Is(err, calendar.ErrAutoMarkNotPermitted):
		response.Conflict(c, 14004, "this entry does not allow auto-marking")
	case errors.Is(err, service.ErrInvalidICS):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14006, "invalid calendar file", err.Error())
	default:
		response.InternalError(c)
	}
}
