package models

import (
	"time"

	"padaria-backend/internal/ids"

	"gorm.io/gorm"
)

type Product struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Name        string  `gorm:"size:100;not null;index"`
	PriceCost   float64 `gorm:"not null;default:0"`
	PriceSale   float64 `gorm:"not null"`
	Measure     Measure `gorm:"size:10;not null"`
	ImagePath   string  `gorm:"size:255"`
	Description string  `gorm:"type:text"`
	Mark        string  `gorm:"size:100"`
	MinQuantity float64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Batches  []ProductBatch `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Portions []Portion      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	return nil
}

type ProductBatch struct {
	ID        string     `gorm:"primaryKey;size:36"`
	ProductID string     `gorm:"size:36;index;not null"`
	Validity  *time.Time // nil = no expiry
	Quantity  float64    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *ProductBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ids.New()
	}
	return nil
}

// Portion: one recipe line, the amount of one ingredient consumed per
// unit of product produced.
type Portion struct {
	ID           string  `gorm:"primaryKey;size:36"`
	IngredientID string  `gorm:"size:36;index;not null"`
	ProductID    string  `gorm:"size:36;index;not null"`
	Quantity     float64 `gorm:"not null"`
}

func (p *Portion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	return nil
}
