package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"student-qr/backend/internal/model"
)

// StudentRepository student data access
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error)
	List(ctx context.Context, offset, limit int) ([]model.Student, int64, error)
	ListAll(ctx context.Context) ([]model.Student, error)
	ListIDs(ctx context.Context) ([]string, error)
	// Search matches name, email, course or roll number, case-insensitively.
	Search(ctx context.Context, query string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByCourse(ctx context.Context, course string) (int64, error)
	ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository.
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("roll_number = ?", rollNumber).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&students).Error
	return students, total, err
}

func (r *studentRepo) ListAll(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *studentRepo) Search(ctx context.Context, query string) ([]model.Student, error) {
	var students []model.Student
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(course) LIKE ? OR LOWER(roll_number) LIKE ?",
			like, like, like, like).
		Order("name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Student{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&count).Error
	return count, err
}

func (r *studentRepo) CountByCourse(ctx context.Context, course string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("course = ?", course).
		Count(&count).Error
	return count, err
}

func (r *studentRepo) ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("roll_number = ?", rollNumber).
		Count(&count).Error
	return count > 0, err
}
