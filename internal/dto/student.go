package dto

// ── student DTOs ──

// CreateStudentRequest new student; ID is generated when empty.
type CreateStudentRequest struct {
	ID          string `json:"id"           binding:"omitempty,max=64"`
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	Email       string `json:"email"        binding:"required,email,max=255"`
	Course      string `json:"course"       binding:"required,max=100"`
	RollNumber  string `json:"roll_number"  binding:"required,max=50"`
	PhotoBase64 string `json:"photo_base64"`
}

// UpdateStudentRequest replaces every editable field.
// An empty photo keeps the stored one.
type UpdateStudentRequest struct {
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	Email       string `json:"email"        binding:"required,email,max=255"`
	Course      string `json:"course"       binding:"required,max=100"`
	RollNumber  string `json:"roll_number"  binding:"required,max=50"`
	PhotoBase64 string `json:"photo_base64"`
}

// StudentListRequest GET /students
type StudentListRequest struct {
	PaginationRequest
}

// StudentResponse student view
type StudentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Course     string `json:"course"`
	RollNumber string `json:"roll_number"`
	HasPhoto   bool   `json:"has_photo"`
	HasQRCode  bool   `json:"has_qr_code"`
	CreatedAt  string `json:"created_at"`
}

// StudentDetailResponse adds the photo.
type StudentDetailResponse struct {
	StudentResponse
	PhotoBase64 string `json:"photo_base64,omitempty"`
}

// QRCodeResponse GET /students/:id/qr/base64
type QRCodeResponse struct {
	StudentID string `json:"student_id"`
	Image     string `json:"image"` // base64 PNG
	Payload   string `json:"payload"`
}
