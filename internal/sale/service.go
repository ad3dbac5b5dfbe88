// Package sale implements the sale transaction orchestrator and the
// sale-note read model. All writes of one checkout (sale rows plus the
// batch depletions backing them) happen inside a single database
// transaction: a multi-item note either fully appears or not at all.
//
// There is no row locking on batches; two concurrent checkouts of the
// same product can both pass the availability check before either
// commits. Single-writer-per-transaction is assumed.
package sale

import (
	"errors"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/ids"
	"padaria-backend/internal/models"
	"padaria-backend/internal/stock"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LineRequest is one (product, seller, quantity) item of a checkout.
type LineRequest struct {
	ProductID string
	UserID    string
	Quantity  float64
}

// Note is the assembled receipt of one sale code: the seller, the
// distinct products involved and every line item.
type Note struct {
	Seller     models.User
	Products   []models.Product
	Items      []models.Sale
	TotalValue float64
}

// CreateOne rings up a single line item under a fresh sale code.
func (s *Service) CreateOne(req LineRequest) (*models.Sale, error) {
	code := ids.NewSaleCode()

	var sale *models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		sale, err = createLine(tx, req, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// CreateNote rings up several line items as one checkout: every item
// shares one generated sale code and one transaction scope. When any
// item fails, items already applied are rolled back with it.
func (s *Service) CreateNote(lines []LineRequest) (*Note, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("at least one sale item is required")
	}

	code := ids.NewSaleCode()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			if _, err := createLine(tx, line, code); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.NoteByCode(code)
}

// createLine validates product and seller, depletes the product's
// batches earliest-expiry-first and inserts the sale row, all on the
// caller's transaction. The recorded value is fixed at sale time.
//
// Only the sold product's own batches are touched; recipe portions are
// an ingredient-consumption record for production time, a sale never
// cascades into ingredient stock.
func createLine(tx *gorm.DB, req LineRequest, code string) (*models.Sale, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}

	var product models.Product
	err := tx.First(&product, "id = ?", req.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	var user models.User
	err = tx.First(&user, "id = ?", req.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	var batches []models.ProductBatch
	if err := tx.Where("product_id = ?", req.ProductID).Find(&batches).Error; err != nil {
		return nil, apperr.Server(err)
	}

	states := make([]stock.Batch, 0, len(batches))
	byID := make(map[string]*models.ProductBatch, len(batches))
	for i := range batches {
		b := &batches[i]
		states = append(states, stock.Batch{
			ID:        b.ID,
			Validity:  b.Validity,
			Quantity:  b.Quantity,
			CreatedAt: b.CreatedAt,
		})
		byID[b.ID] = b
	}

	draws, err := stock.Plan(states, req.Quantity)
	if err != nil {
		return nil, err
	}

	for _, draw := range draws {
		remaining := byID[draw.BatchID].Quantity - draw.Quantity
		if err := tx.Model(&models.ProductBatch{}).
			Where("id = ?", draw.BatchID).
			Update("quantity", remaining).Error; err != nil {
			return nil, apperr.Server(err)
		}
	}

	sale := models.Sale{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Quantity:  req.Quantity,
		Value:     product.PriceSale * req.Quantity,
		SaleCode:  code,
	}
	if err := tx.Create(&sale).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &sale, nil
}

// NoteByCode assembles the receipt for one sale code. The seller is
// taken from the first line item (every item of one code shares one
// seller) and re-validated: a seller deleted after the fact turns the
// note unreadable rather than half-populated.
func (s *Service) NoteByCode(code string) (*Note, error) {
	return noteByCode(s.db, code)
}

func noteByCode(db *gorm.DB, code string) (*Note, error) {
	var sales []models.Sale
	if err := db.Where("sale_code = ?", code).Order("created_at ASC").Find(&sales).Error; err != nil {
		return nil, apperr.Server(err)
	}
	if len(sales) == 0 {
		return nil, apperr.NotFound("sale note not found")
	}

	var seller models.User
	err := db.First(&seller, "id = ?", sales[0].UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	productIDs := make([]string, 0, len(sales))
	seen := make(map[string]bool, len(sales))
	total := 0.0
	for _, sale := range sales {
		total += sale.Value
		if !seen[sale.ProductID] {
			seen[sale.ProductID] = true
			productIDs = append(productIDs, sale.ProductID)
		}
	}

	var products []models.Product
	if err := db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, apperr.Server(err)
	}

	return &Note{
		Seller:     seller,
		Products:   products,
		Items:      sales,
		TotalValue: total,
	}, nil
}

// Confirm flips is_paid on every line item of the code and returns the
// note. Batch quantities are untouched.
func (s *Service) Confirm(code string) (*Note, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sale{}).Where("sale_code = ?", code).Update("is_paid", true)
		if res.Error != nil {
			return apperr.Server(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("sale note not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.NoteByCode(code)
}

// Cancel deletes every line item of the code. Depleted batch
// quantities are not restored: the line items do not record which
// batches they drew from, so there is nothing to reverse exactly.
func (s *Service) Cancel(code string) error {
	res := s.db.Where("sale_code = ?", code).Delete(&models.Sale{})
	if res.Error != nil {
		return apperr.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("sale note not found")
	}
	return nil
}

// Delete removes a single sale row by id.
func (s *Service) Delete(saleID string) error {
	res := s.db.Where("id = ?", saleID).Delete(&models.Sale{})
	if res.Error != nil {
		return apperr.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("sale not found")
	}
	return nil
}

func (s *Service) ByCode(code string) ([]models.Sale, error) {
	return s.find("sale_code = ?", code)
}

func (s *Service) ByEmployee(userID string) ([]models.Sale, error) {
	return s.find("user_id = ?", userID)
}

func (s *Service) ByProduct(productID string) ([]models.Sale, error) {
	return s.find("product_id = ?", productID)
}

func (s *Service) All() ([]models.Sale, error) {
	return s.find("")
}

func (s *Service) find(query string, args ...interface{}) ([]models.Sale, error) {
	var sales []models.Sale
	q := s.db.Order("created_at DESC")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Find(&sales).Error; err != nil {
		return nil, apperr.Server(err)
	}
	if len(sales) == 0 {
		return nil, apperr.NotFound("sales not found")
	}
	return sales, nil
}
