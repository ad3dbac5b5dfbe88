package models

import (
	"time"

	"padaria-backend/internal/ids"

	"gorm.io/gorm"
)

// Sale: one line item of a checkout. Value is fixed at transaction time
// (unit sale price x quantity); later price changes do not touch it.
// Rows are created only by the sale service, never directly, and are
// immutable except for the IsPaid flag.
type Sale struct {
	ID        string  `gorm:"primaryKey;size:36"`
	ProductID string  `gorm:"size:36;index;not null"`
	UserID    string  `gorm:"size:36;index;not null"`
	Quantity  float64 `gorm:"not null"`
	Value     float64 `gorm:"not null"`
	IsPaid    bool    `gorm:"not null;default:false"`
	SaleCode  string  `gorm:"size:36;index;not null"`
	CreatedAt time.Time
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = ids.New()
	}
	return nil
}
