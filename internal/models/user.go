package models

import (
	"time"

	"padaria-backend/internal/ids"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID        string   `gorm:"primaryKey;size:36"`
	Name      string   `gorm:"size:100;not null"`
	Phone     string   `gorm:"size:20;uniqueIndex;not null"`
	Email     string   `gorm:"size:100;uniqueIndex;not null"`
	Password  string   `gorm:"size:255;not null"` // bcrypt hash
	Role      UserRole `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	return nil
}
