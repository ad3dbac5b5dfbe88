package models

import (
	"time"

	"padaria-backend/internal/ids"

	"gorm.io/gorm"
)

// Measure: unit of measure for ingredients and products.
type Measure string

const (
	MeasureKilogram Measure = "kg"
	MeasureLiter    Measure = "l"
	MeasureUnit     Measure = "unit"
)

func ValidMeasure(m Measure) bool {
	switch m {
	case MeasureKilogram, MeasureLiter, MeasureUnit:
		return true
	}
	return false
}

type Ingredient struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Name        string  `gorm:"size:100;not null;index"`
	Measure     Measure `gorm:"size:10;not null"`
	ImagePath   string  `gorm:"size:255"`
	Mark        string  `gorm:"size:100"` // brand; "-" when not informed
	Description string  `gorm:"size:500"`
	Value       float64 `gorm:"not null"` // unit value
	MinQuantity float64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Batches  []IngredientBatch `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Portions []Portion         `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = ids.New()
	}
	return nil
}

// IngredientBatch: one dated lot of an ingredient. Quantity never goes
// negative; a lot drained to zero stays on record until explicitly
// deleted.
type IngredientBatch struct {
	ID           string     `gorm:"primaryKey;size:36"`
	IngredientID string     `gorm:"size:36;index;not null"`
	Validity     *time.Time // nil = no expiry
	Quantity     float64    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b *IngredientBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ids.New()
	}
	return nil
}
