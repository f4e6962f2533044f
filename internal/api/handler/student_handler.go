package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/service"
	"student-qr/backend/pkg/response"
)

// StudentHandler student and QR code endpoints
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents paginated student list
// GET /api/v1/students?page=1&page_size=20
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	students, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// SearchStudents matches name, email, course or roll number
// GET /api/v1/students/search?q=asha
func (h *StudentHandler) SearchStudents(c *gin.Context) {
	students, err := h.studentSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// GetStudent student detail including the photo
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent registers a student and generates the QR code
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent replaces a student's details
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent removes a student and its QR image
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// RegenerateQR writes a fresh QR image
// POST /api/v1/students/:id/qr
func (h *StudentHandler) RegenerateQR(c *gin.Context) {
	student, err := h.studentSvc.RegenerateQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// GetQRImage downloads the QR code as PNG
// GET /api/v1/students/:id/qr
func (h *StudentHandler) GetQRImage(c *gin.Context) {
	png, filename, err := h.studentSvc.QRImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename="+filename)
	c.Data(http.StatusOK, "image/png", png)
}

// GetQRBase64 QR code as a data URI with its payload
// GET /api/v1/students/:id/qr/base64
func (h *StudentHandler) GetQRBase64(c *gin.Context) {
	qr, err := h.studentSvc.QRBase64(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, qr)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "student not found")
	case errors.Is(err, service.ErrRollNumberTaken):
		response.Conflict(c, 12002, "roll number is already assigned")
	case errors.Is(err, service.ErrStudentIDTaken):
		response.Conflict(c, 12003, "student id already exists")
	case errors.Is(err, service.ErrQRCodeNotFound):
		response.NotFound(c, 12004, "QR code not available")
	default:
		response.InternalError(c)
	}
}
