package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"student-qr/backend/internal/model"
)

// CalendarFilter narrows List; zero fields are ignored.
type CalendarFilter struct {
	Year     int
	Category string
}

// CalendarEntryRepository calendar entry data access
type CalendarEntryRepository interface {
	Create(ctx context.Context, entry *model.CalendarEntry) error
	GetByID(ctx context.Context, id uint) (*model.CalendarEntry, error)
	List(ctx context.Context, filter CalendarFilter) ([]model.CalendarEntry, error)
	ListActive(ctx context.Context) ([]model.CalendarEntry, error)
	// ListCovering returns active entries whose range includes date.
	ListCovering(ctx context.Context, date time.Time) ([]model.CalendarEntry, error)
	// ListStartingBetween returns active entries starting within [from, to].
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEntry, error)
	DistinctYears(ctx context.Context) ([]int, error)
	CountByYear(ctx context.Context, year int) (int64, error)
	Update(ctx context.Context, entry *model.CalendarEntry) error
	Delete(ctx context.Context, id uint) error
}

type calendarEntryRepo struct {
	db *gorm.DB
}

// NewCalendarEntryRepo creates a CalendarEntryRepository.
func NewCalendarEntryRepo(db *gorm.DB) CalendarEntryRepository {
	return &calendarEntryRepo{db: db}
}

func (r *calendarEntryRepo) Create(ctx context.Context, entry *model.CalendarEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *calendarEntryRepo) GetByID(ctx context.Context, id uint) (*model.CalendarEntry, error) {
	var entry model.CalendarEntry
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *calendarEntryRepo) List(ctx context.Context, filter CalendarFilter) ([]model.CalendarEntry, error) {
	var entries []model.CalendarEntry
	db := r.db.WithContext(ctx)
	if filter.Year > 0 {
		db = db.Where("EXTRACT(YEAR FROM start_date) = ?", filter.Year)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	err := db.Order("start_date ASC, id ASC").Find(&entries).Error
	return entries, err
}

func (r *calendarEntryRepo) ListActive(ctx context.Context) ([]model.CalendarEntry, error) {
	var entries []model.CalendarEntry
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("start_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *calendarEntryRepo) ListCovering(ctx context.Context, date time.Time) ([]model.CalendarEntry, error) {
	var entries []model.CalendarEntry
	d := date.Format(model.DateLayout)
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("start_date <= ?", d).
		Where("COALESCE(end_date, start_date) >= ?", d).
		Order("start_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *calendarEntryRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEntry, error) {
	var entries []model.CalendarEntry
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("start_date BETWEEN ? AND ?", from.Format(model.DateLayout), to.Format(model.DateLayout)).
		Order("start_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *calendarEntryRepo) DistinctYears(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&model.CalendarEntry{}).
		Distinct("EXTRACT(YEAR FROM start_date)::int AS year").
		Order("year DESC").
		Pluck("year", &years).Error
	return years, err
}

func (r *calendarEntryRepo) CountByYear(ctx context.Context, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CalendarEntry{}).
		Where("EXTRACT(YEAR FROM start_date) = ?", year).
		Count(&count).Error
	return count, err
}

func (r *calendarEntryRepo) Update(ctx context.Context, entry *model.CalendarEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *calendarEntryRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.CalendarEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
