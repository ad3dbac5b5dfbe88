package product

import (
	"errors"
	"time"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// PortionRequest is one recipe line: the amount of one ingredient
// consumed per unit of product produced.
type PortionRequest struct {
	IngredientID string
	Quantity     float64
}

type CreateRequest struct {
	Name        string
	PriceCost   float64
	PriceSale   float64
	Measure     models.Measure
	ImagePath   string
	Description string
	Mark        string
	MinQuantity float64
	Validity    *time.Time
	Quantity    float64
	Recipe      []PortionRequest
}

// Create persists the product, its first batch and the optional recipe
// in one transaction.
func (s *Service) Create(req CreateRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !models.ValidMeasure(req.Measure) {
		return nil, apperr.Validation("measure must be one of kg, l, unit")
	}
	if req.PriceSale <= 0 {
		return nil, apperr.Validation("price_sale must be greater than zero")
	}
	if req.Quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}
	for _, p := range req.Recipe {
		if p.Quantity <= 0 {
			return nil, apperr.Validation("portion quantity must be greater than zero")
		}
	}

	prod := models.Product{
		Name:        req.Name,
		PriceCost:   req.PriceCost,
		PriceSale:   req.PriceSale,
		Measure:     req.Measure,
		ImagePath:   req.ImagePath,
		Description: req.Description,
		Mark:        req.Mark,
		MinQuantity: req.MinQuantity,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prod).Error; err != nil {
			return apperr.Server(err)
		}

		batch := models.ProductBatch{
			ProductID: prod.ID,
			Validity:  req.Validity,
			Quantity:  req.Quantity,
		}
		if err := tx.Create(&batch).Error; err != nil {
			return apperr.Server(err)
		}

		for _, p := range req.Recipe {
			if err := addPortion(tx, prod.ID, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(prod.ID)
}

func addPortion(tx *gorm.DB, productID string, req PortionRequest) error {
	var ing models.Ingredient
	err := tx.First(&ing, "id = ?", req.IngredientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("ingredient not found")
	}
	if err != nil {
		return apperr.Server(err)
	}

	portion := models.Portion{
		IngredientID: req.IngredientID,
		ProductID:    productID,
		Quantity:     req.Quantity,
	}
	if err := tx.Create(&portion).Error; err != nil {
		return apperr.Server(err)
	}
	return nil
}

func (s *Service) Get(id string) (*models.Product, error) {
	var prod models.Product
	err := s.db.Preload("Batches").Preload("Portions").First(&prod, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return &prod, nil
}

func (s *Service) All() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Preload("Batches").Preload("Portions").Order("name ASC").Find(&products).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return products, nil
}

// Patch lists the mutable product fields; nil means unchanged.
type Patch struct {
	Name        *string
	PriceCost   *float64
	PriceSale   *float64
	Measure     *models.Measure
	ImagePath   *string
	Description *string
	Mark        *string
	MinQuantity *float64
}

func (s *Service) Update(id string, patch Patch) (*models.Product, error) {
	var prod models.Product
	err := s.db.First(&prod, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	if patch.Name != nil {
		prod.Name = *patch.Name
	}
	if patch.PriceCost != nil {
		prod.PriceCost = *patch.PriceCost
	}
	if patch.PriceSale != nil {
		prod.PriceSale = *patch.PriceSale
	}
	if patch.Measure != nil {
		if !models.ValidMeasure(*patch.Measure) {
			return nil, apperr.Validation("measure must be one of kg, l, unit")
		}
		prod.Measure = *patch.Measure
	}
	if patch.ImagePath != nil {
		prod.ImagePath = *patch.ImagePath
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.Mark != nil {
		prod.Mark = *patch.Mark
	}
	if patch.MinQuantity != nil {
		prod.MinQuantity = *patch.MinQuantity
	}

	if err := s.db.Save(&prod).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &prod, nil
}

// Delete removes the product with its batches and recipe portions.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		err := tx.First(&prod, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not found")
		}
		if err != nil {
			return apperr.Server(err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductBatch{}).Error; err != nil {
			return apperr.Server(err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Portion{}).Error; err != nil {
			return apperr.Server(err)
		}
		if err := tx.Delete(&prod).Error; err != nil {
			return apperr.Server(err)
		}
		return nil
	})
}

func (s *Service) AddBatch(productID string, validity *time.Time, quantity float64) (*models.ProductBatch, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}

	var prod models.Product
	err := s.db.First(&prod, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	batch := models.ProductBatch{
		ProductID: productID,
		Validity:  validity,
		Quantity:  quantity,
	}
	if err := s.db.Create(&batch).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &batch, nil
}

func (s *Service) Batches(productID string) ([]models.ProductBatch, error) {
	var batches []models.ProductBatch
	if err := s.db.Where("product_id = ?", productID).Order("created_at ASC").Find(&batches).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return batches, nil
}

// BatchPatch lists the mutable batch fields; nil means unchanged.
// Direct overwrite, no delta validation; see the ingredient ledger.
type BatchPatch struct {
	Validity *time.Time
	Quantity *float64
}

func (s *Service) UpdateBatch(batchID string, patch BatchPatch) (*models.ProductBatch, error) {
	var batch models.ProductBatch
	err := s.db.First(&batch, "id = ?", batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product batch not found")
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
	res := s.db.Where("id = ?", batchID).Delete(&models.ProductBatch{})
	if res.Error != nil {
		return apperr.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product batch not found")
	}
	return nil
}

// AddRecipe appends recipe portions to an existing product.
func (s *Service) AddRecipe(productID string, portions []PortionRequest) (*models.Product, error) {
	if len(portions) == 0 {
		return nil, apperr.Validation("at least one portion is required")
	}
	for _, p := range portions {
		if p.Quantity <= 0 {
			return nil, apperr.Validation("portion quantity must be greater than zero")
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		err := tx.First(&prod, "id = ?", productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not found")
		}
		if err != nil {
			return apperr.Server(err)
		}

		for _, p := range portions {
			if err := addPortion(tx, productID, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(productID)
}

func (s *Service) UpdatePortion(portionID string, quantity float64) (*models.Portion, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("portion quantity must be greater than zero")
	}

	var portion models.Portion
	err := s.db.First(&portion, "id = ?", portionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("portion not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	portion.Quantity = quantity
	if err := s.db.Save(&portion).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &portion, nil
}

func (s *Service) DeletePortion(portionID string) error {
	res := s.db.Where("id = ?", portionID).Delete(&models.Portion{})
	if res.Error != nil {
		return apperr.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("portion not found")
	}
	return nil
}
