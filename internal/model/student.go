package model

import "time"

// Student is an attendance-tracked person.
type Student struct {
	ID          string    `gorm:"type:varchar(64);primaryKey"        json:"id"`
	Name        string    `gorm:"type:varchar(100);not null"         json:"name"`
	Email       string    `gorm:"type:varchar(255);not null"         json:"email"`
	Course      string    `gorm:"type:varchar(100);not null"         json:"course"`
	RollNumber  string    `gorm:"type:varchar(50);not null;unique"   json:"roll_number"`
	PhotoBase64 string    `gorm:"type:text"                          json:"-"`
	QRCodePath  string    `gorm:"column:qr_code_path;type:varchar(500)" json:"-"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName table name
func (Student) TableName() string { return "students" }

// HasPhoto reports whether a usable photo is attached.
func (s *Student) HasPhoto() bool {
	return len(s.PhotoBase64) > 100
}
