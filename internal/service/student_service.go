package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
)

// ── student business errors ──

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrRollNumberTaken = errors.New("roll number is already assigned to another student")
	ErrStudentIDTaken  = errors.New("student id already exists")
	ErrQRCodeNotFound  = errors.New("student has no QR code")
)

// QRCodeWriter renders and stores QR images. *qrcode.Generator implements it.
type QRCodeWriter interface {
	Base64(text string) (string, error)
	Save(text, fileName string) (string, error)
	Read(path string) ([]byte, error)
	Remove(path string) error
}

// StudentService student use cases
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	Get(ctx context.Context, id string) (*dto.StudentDetailResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Search(ctx context.Context, query string) ([]dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	// RegenerateQR writes a fresh QR image and replaces the stored one.
	RegenerateQR(ctx context.Context, id string) (*dto.StudentResponse, error)
	QRBase64(ctx context.Context, id string) (*dto.QRCodeResponse, error)
	// QRImage returns the stored PNG, generating it first when missing.
	QRImage(ctx context.Context, id string) ([]byte, string, error)
}

type studentService struct {
	repo   *repository.Repository
	qr     QRCodeWriter
	now    func() time.Time
	logger *zap.Logger
}

// NewStudentService creates a StudentService.
func NewStudentService(repo *repository.Repository, qr QRCodeWriter, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, qr: qr, now: time.Now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	rollNumber := strings.TrimSpace(req.RollNumber)
	taken, err := s.repo.Student.ExistsByRollNumber(ctx, rollNumber)
	if err != nil {
		s.logger.Error("check roll number failed", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, ErrRollNumberTaken
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.New().String()
	} else if _, err := s.repo.Student.GetByID(ctx, id); err == nil {
		return nil, ErrStudentIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check student id failed", zap.Error(err))
		return nil, err
	}

	student := &model.Student{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Course:      strings.TrimSpace(req.Course),
		RollNumber:  rollNumber,
		PhotoBase64: req.PhotoBase64,
	}

	// a QR failure leaves the student without a code; it can be regenerated later
	if path, err := s.saveQR(student); err == nil {
		student.QRCodePath = path
	}

	if err := s.repo.Student.Create(ctx, student); err != nil {
		_ = s.qr.Remove(student.QRCodePath)
		s.logger.Error("create student failed", zap.String("roll_number", rollNumber), zap.Error(err))
		return nil, err
	}

	s.logger.Info("student created", zap.String("id", student.ID), zap.String("roll_number", rollNumber))
	return toStudentResponse(student), nil
}

// ────────────────────── Read ──────────────────────

func (s *studentService) Get(ctx context.Context, id string) (*dto.StudentDetailResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StudentDetailResponse{
		StudentResponse: *toStudentResponse(student),
		PhotoBase64:     student.PhotoBase64,
	}, nil
}

func (s *studentService) load(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, 0, err
	}
	return toStudentResponses(students), total, nil
}

// Search returns every student when query is blank.
func (s *studentService) Search(ctx context.Context, query string) ([]dto.StudentResponse, error) {
	var (
		students []model.Student
		err      error
	)
	if strings.TrimSpace(query) == "" {
		students, err = s.repo.Student.ListAll(ctx)
	} else {
		students, err = s.repo.Student.Search(ctx, query)
	}
	if err != nil {
		s.logger.Error("search students failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return toStudentResponses(students), nil
}

func (s *studentService) Count(ctx context.Context) (int64, error) {
	return s.repo.Student.Count(ctx)
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rollNumber := strings.TrimSpace(req.RollNumber)
	if rollNumber != student.RollNumber {
		taken, err := s.repo.Student.ExistsByRollNumber(ctx, rollNumber)
		if err != nil {
			s.logger.Error("check roll number failed", zap.Error(err))
			return nil, err
		}
		if taken {
			return nil, ErrRollNumberTaken
		}
	}

	student.Name = strings.TrimSpace(req.Name)
	student.Email = strings.TrimSpace(req.Email)
	student.Course = strings.TrimSpace(req.Course)
	student.RollNumber = rollNumber
	if req.PhotoBase64 != "" {
		student.PhotoBase64 = req.PhotoBase64
	}

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("update student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string) error {
	student, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		s.logger.Error("delete student failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.qr.Remove(student.QRCodePath); err != nil {
		s.logger.Warn("remove qr file failed", zap.String("path", student.QRCodePath), zap.Error(err))
	}
	s.logger.Info("student deleted", zap.String("id", id))
	return nil
}

// ────────────────────── QR codes ──────────────────────

// QRPayload is the text encoded in a student's QR code.
func QRPayload(student *model.Student, generated time.Time) string {
	var b strings.Builder
	b.WriteString("=== STUDENT INFORMATION ===\n")
	fmt.Fprintf(&b, "ID: %s\n", student.ID)
	fmt.Fprintf(&b, "Name: %s\n", student.Name)
	fmt.Fprintf(&b, "Email: %s\n", student.Email)
	fmt.Fprintf(&b, "Course: %s\n", student.Course)
	fmt.Fprintf(&b, "Roll Number: %s\n", student.RollNumber)
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(time.RFC3339))
	if student.HasPhoto() {
		fmt.Fprintf(&b, "Photo: Available (Base64 length: %d)\n", len(student.PhotoBase64))
	} else {
		b.WriteString("Photo: Not available\n")
	}
	b.WriteString("===========================")
	return b.String()
}

func (s *studentService) saveQR(student *model.Student) (string, error) {
	now := s.now()
	fileName := fmt.Sprintf("student_%s_%d.png", student.RollNumber, now.UnixMilli())
	path, err := s.qr.Save(QRPayload(student, now), fileName)
	if err != nil {
		s.logger.Warn("generate qr code failed", zap.String("student_id", student.ID), zap.Error(err))
		return "", err
	}
	return path, nil
}

func (s *studentService) RegenerateQR(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.saveQR(student)
	if err != nil {
		return nil, err
	}
	old := student.QRCodePath
	student.QRCodePath = path
	if err := s.repo.Student.Update(ctx, student); err != nil {
		_ = s.qr.Remove(path)
		s.logger.Error("store qr path failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if old != "" && old != path {
		if err := s.qr.Remove(old); err != nil {
			s.logger.Warn("remove old qr file failed", zap.String("path", old), zap.Error(err))
		}
	}
	return toStudentResponse(student), nil
}

func (s *studentService) QRBase64(ctx context.Context, id string) (*dto.QRCodeResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := QRPayload(student, s.now())
	image, err := s.qr.Base64(payload)
	if err != nil {
		s.logger.Error("render qr code failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &dto.QRCodeResponse{StudentID: student.ID, Image: image, Payload: payload}, nil
}

func (s *studentService) QRImage(ctx context.Context, id string) ([]byte, string, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	fileName := fmt.Sprintf("student_%s_qr.png", student.RollNumber)

	if student.QRCodePath != "" {
		if png, err := s.qr.Read(student.QRCodePath); err == nil {
			return png, fileName, nil
		}
	}

	if _, err := s.RegenerateQR(ctx, id); err != nil {
		return nil, "", err
	}
	student, err = s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	png, err := s.qr.Read(student.QRCodePath)
	if err != nil {
		return nil, "", ErrQRCodeNotFound
	}
	return png, fileName, nil
}

// ── conversion ──

func toStudentResponse(st *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:         st.ID,
		Name:       st.Name,
		Email:      st.Email,
		Course:     st.Course,
		RollNumber: st.RollNumber,
		HasPhoto:   st.HasPhoto(),
		HasQRCode:  st.QRCodePath != "",
		CreatedAt:  formatTime(st.CreatedAt),
	}
}

func toStudentResponses(students []model.Student) []dto.StudentResponse {
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result
}
