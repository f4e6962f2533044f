package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository.
type Repository struct {
	db *gorm.DB

	User          UserRepository
	Student       StudentRepository
	Attendance    AttendanceRepository
	CalendarEntry CalendarEntryRepository
}

// NewRepository creates the aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		Student:       NewStudentRepo(db),
		Attendance:    NewAttendanceRepo(db),
		CalendarEntry: NewCalendarEntryRepo(db),
	}
}

// BeginTx starts a transaction.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate whose repositories run inside tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{
		db:            tx,
		User:          NewUserRepo(tx),
		Student:       NewStudentRepo(tx),
		Attendance:    NewAttendanceRepo(tx),
		CalendarEntry: NewCalendarEntryRepo(tx),
	}
}

// Transaction runs fn inside a transaction, committing when it returns nil.
// An aggregate assembled without a database runs fn directly.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
