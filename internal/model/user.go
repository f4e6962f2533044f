package model

import "time"

// Roles, from most to least privileged.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleUser    = "user"
)

// User is a staff account.
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string     `gorm:"type:varchar(50);not null;unique"               json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Email        *string    `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	FullName     string     `gorm:"type:varchar(100);not null;default:''"          json:"full_name"`
	Role         string     `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	Enabled      bool       `gorm:"not null;default:true"                          json:"enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName table name
func (User) TableName() string { return "users" }
