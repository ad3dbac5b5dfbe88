package ingredient

import (
	"errors"
	"time"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"

	"gorm.io/gorm"
)

// DefaultMark is stored when a request does not inform a brand.
const DefaultMark = "-"

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateRequest struct {
	Name        string
	Measure     models.Measure
	Mark        string
	Description string
	Value       float64
	MinQuantity float64
	ImagePath   string
	Validity    *time.Time
	Quantity    float64
}

// Create registers an ingredient together with its first batch, in one
// transaction. An ingredient with the same (name, mark, measure,
// description, value) tuple is considered the same ingredient: the
// request is folded into a new batch on the existing row instead of a
// duplicate row. The returned bool reports that merge.
func (s *Service) Create(req CreateRequest) (*models.Ingredient, bool, error) {
	if req.Name == "" {
		return nil, false, apperr.Validation("name is required")
	}
	if !models.ValidMeasure(req.Measure) {
		return nil, false, apperr.Validation("measure must be one of kg, l, unit")
	}
	if req.Value <= 0 {
		return nil, false, apperr.Validation("value must be greater than zero")
	}
	if req.Quantity < 0 {
		return nil, false, apperr.Validation("quantity cannot be negative")
	}
	if req.Mark == "" {
		req.Mark = DefaultMark
	}

	merged := false
	var ing models.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("name = ? AND mark = ? AND measure = ? AND description = ? AND value = ?",
				req.Name, req.Mark, req.Measure, req.Description, req.Value).
			First(&ing).Error
		switch {
		case err == nil:
			merged = true
		case errors.Is(err, gorm.ErrRecordNotFound):
			ing = models.Ingredient{
				Name:        req.Name,
				Measure:     req.Measure,
				Mark:        req.Mark,
				Description: req.Description,
				Value:       req.Value,
				MinQuantity: req.MinQuantity,
				ImagePath:   req.ImagePath,
			}
			if err := tx.Create(&ing).Error; err != nil {
				return apperr.Server(err)
			}
		default:
			return apperr.Server(err)
		}

		batch := models.IngredientBatch{
			IngredientID: ing.ID,
			Validity:     req.Validity,
			Quantity:     req.Quantity,
		}
		if err := tx.Create(&batch).Error; err != nil {
			return apperr.Server(err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &ing, merged, nil
}

func (s *Service) Get(id string) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.Preload("Batches").Preload("Portions").First(&ing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ingredient not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return &ing, nil
}

func (s *Service) All() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.Preload("Batches").Preload("Portions").Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return ingredients, nil
}

// Patch lists the mutable ingredient fields; nil means unchanged.
type Patch struct {
	Name        *string
	Measure     *models.Measure
	Mark        *string
	Description *string
	Value       *float64
	MinQuantity *float64
	ImagePath   *string
}

func (s *Service) Update(id string, patch Patch) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.First(&ing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ingredient not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	if patch.Name != nil {
		ing.Name = *patch.Name
	}
	if patch.Measure != nil {
		if !models.ValidMeasure(*patch.Measure) {
			return nil, apperr.Validation("measure must be one of kg, l, unit")
		}
		ing.Measure = *patch.Measure
	}
	if patch.Mark != nil {
		ing.Mark = *patch.Mark
	}
	if patch.Description != nil {
		ing.Description = *patch.Description
	}
	if patch.Value != nil {
		ing.Value = *patch.Value
	}
	if patch.MinQuantity != nil {
		ing.MinQuantity = *patch.MinQuantity
	}
	if patch.ImagePath != nil {
		ing.ImagePath = *patch.ImagePath
	}

	if err := s.db.Save(&ing).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &ing, nil
}

// Delete removes the ingredient with its batches and recipe portions.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ing models.Ingredient
		err := tx.First(&ing, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ingredient not found")
		}
		if err != nil {
			return apperr.Server(err)
		}

		if err := tx.Where("ingredient_id = ?", id).Delete(&models.IngredientBatch{}).Error; err != nil {
			return apperr.Server(err)
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.Portion{}).Error; err != nil {
			return apperr.Server(err)
		}
		if err := tx.Delete(&ing).Error; err != nil {
			return apperr.Server(err)
		}
		return nil
	})
}

// AddBatch registers a new lot for an existing ingredient. Duplicate
// lots (same owner, same validity) are allowed; each is distinct.
func (s *Service) AddBatch(ingredientID string, validity *time.Time, quantity float64) (*models.IngredientBatch, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}

	var ing models.Ingredient
	err := s.db.First(&ing, "id = ?", ingredientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ingredient not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	batch := models.IngredientBatch{
		IngredientID: ingredientID,
		Validity:     validity,
		Quantity:     quantity,
	}
	if err := s.db.Create(&batch).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &batch, nil
}

func (s *Service) Batches(ingredientID string) ([]models.IngredientBatch, error) {
	var batches []models.IngredientBatch
	if err := s.db.Where("ingredient_id = ?", ingredientID).Order("created_at ASC").Find(&batches).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return batches, nil
}

// BatchPatch lists the mutable batch fields; nil means unchanged.
// Updates are direct overwrites, the caller is responsible for not
// driving the quantity negative here; only the depletion path enforces
// the invariant during sales.
type BatchPatch struct {
	Validity *time.Time
	Quantity *float64
}

func (s *Service) UpdateBatch(batchID string, patch BatchPatch) (*models.IngredientBatch, error) {
	var batch models.IngredientBatch
	err := s.db.First(&batch, "id = ?", batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ingredient batch not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	if patch.Validity != nil {
		batch.Validity = patch.Validity
	}
	if patch.Quantity != nil {
		batch.Quantity = *patch.Quantity
	}

	if err := s.db.Save(&batch).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &batch, nil
}

func (s *Service) DeleteBatch(batchID string) error {
	res := s.db.Where("id = ?", batchID).Delete(&models.IngredientBatch{})
	if res.Error != nil {
		return apperr.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("ingredient batch not found")
	}
	return nil
}
