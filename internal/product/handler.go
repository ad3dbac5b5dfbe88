package product

import (
	"time"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PortionBody struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type CreateProductRequest struct {
	Name        string        `json:"name"`
	PriceCost   float64       `json:"price_cost"`
	PriceSale   float64       `json:"price_sale"`
	Measure     string        `json:"measure"`
	ImagePath   string        `json:"image_path"`
	Description string        `json:"description"`
	Mark        string        `json:"mark"`
	MinQuantity float64       `json:"min_quantity"`
	Validity    string        `json:"validity"` // "2006-01-02", optional
	Quantity    float64       `json:"quantity"`
	Recipe      []PortionBody `json:"recipe"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	PriceCost   *float64 `json:"price_cost"`
	PriceSale   *float64 `json:"price_sale"`
	Measure     *string  `json:"measure"`
	ImagePath   *string  `json:"image_path"`
	Description *string  `json:"description"`
	Mark        *string  `json:"mark"`
	MinQuantity *float64 `json:"min_quantity"`
}

type CreateBatchRequest struct {
	ProductID string  `json:"product_id"`
	Validity  string  `json:"validity"`
	Quantity  float64 `json:"quantity"`
}

type UpdateBatchRequest struct {
	Validity *string  `json:"validity"`
	Quantity *float64 `json:"quantity"`
}

type AddRecipeRequest struct {
	Portions []PortionBody `json:"portions"`
}

type UpdatePortionRequest struct {
	Quantity float64 `json:"quantity"`
}

type BatchResponse struct {
	ID        string  `json:"id"`
	Validity  *string `json:"validity"`
	Quantity  float64 `json:"quantity"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type PortionResponse struct {
	ID           string  `json:"id"`
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	PriceCost   float64           `json:"price_cost"`
	PriceSale   float64           `json:"price_sale"`
	Measure     string            `json:"measure"`
	ImagePath   string            `json:"image_path"`
	Description string            `json:"description"`
	Mark        string            `json:"mark"`
	MinQuantity float64           `json:"min_quantity"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	Batches     []BatchResponse   `json:"batches"`
	Portions    []PortionResponse `json:"portions"`
}

func parseValidity(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Validation("validity must be 'YYYY-MM-DD'")
	}
	return &d, nil
}

func formatValidity(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func toBatchResponse(b models.ProductBatch) BatchResponse {
	return BatchResponse{
		ID:        b.ID,
		Validity:  formatValidity(b.Validity),
		Quantity:  b.Quantity,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func ToProductResponse(p *models.Product) ProductResponse {
	batches := make([]BatchResponse, 0, len(p.Batches))
	for _, b := range p.Batches {
		batches = append(batches, toBatchResponse(b))
	}
	portions := make([]PortionResponse, 0, len(p.Portions))
	for _, portion := range p.Portions {
		portions = append(portions, PortionResponse{
			ID:           portion.ID,
			IngredientID: portion.IngredientID,
			Quantity:     portion.Quantity,
		})
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		PriceCost:   p.PriceCost,
		PriceSale:   p.PriceSale,
		Measure:     string(p.Measure),
		ImagePath:   p.ImagePath,
		Description: p.Description,
		Mark:        p.Mark,
		MinQuantity: p.MinQuantity,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   p.UpdatedAt.Format("2006-01-02 15:04:05"),
		Batches:     batches,
		Portions:    portions,
	}
}

// POST /api/product
func CreateProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		validity, err := parseValidity(body.Validity)
		if err != nil {
			return err
		}

		recipe := make([]PortionRequest, 0, len(body.Recipe))
		for _, p := range body.Recipe {
			recipe = append(recipe, PortionRequest{
				IngredientID: p.IngredientID,
				Quantity:     p.Quantity,
			})
		}

		prod, err := svc.Create(CreateRequest{
			Name:        body.Name,
			PriceCost:   body.PriceCost,
			PriceSale:   body.PriceSale,
			Measure:     models.Measure(body.Measure),
			ImagePath:   body.ImagePath,
			Description: body.Description,
			Mark:        body.Mark,
			MinQuantity: body.MinQuantity,
			Validity:    validity,
			Quantity:    body.Quantity,
			Recipe:      recipe,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToProductResponse(prod))
	}
}

// GET /api/product
func ListProductsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.All()
		if err != nil {
			return err
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, ToProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/product/:id
func GetProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prod, err := svc.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(ToProductResponse(prod))
	}
}

// PUT /api/product/:id
func UpdateProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		patch := Patch{
			Name:        body.Name,
			PriceCost:   body.PriceCost,
			PriceSale:   body.PriceSale,
			ImagePath:   body.ImagePath,
			Description: body.Description,
			Mark:        body.Mark,
			MinQuantity: body.MinQuantity,
		}
		if body.Measure != nil {
			m := models.Measure(*body.Measure)
			patch.Measure = &m
		}

		prod, err := svc.Update(c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(ToProductResponse(prod))
	}
}

// DELETE /api/product/:id
func DeleteProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "product deleted"})
	}
}

// POST /api/product/batch
func CreateProductBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		if body.ProductID == "" {
			return apperr.Validation("product_id is required")
		}

		validity, err := parseValidity(body.Validity)
		if err != nil {
			return err
		}

		batch, err := svc.AddBatch(body.ProductID, validity, body.Quantity)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toBatchResponse(*batch))
	}
}

// GET /api/product/:id/batch
func ListProductBatchesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		batches, err := svc.Batches(c.Params("id"))
		if err != nil {
			return err
		}

		resp := make([]BatchResponse, 0, len(batches))
		for _, b := range batches {
			resp = append(resp, toBatchResponse(b))
		}
		return c.JSON(resp)
	}
}

// PUT /api/product/batch/:id
func UpdateProductBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		patch := BatchPatch{Quantity: body.Quantity}
		if body.Validity != nil {
			validity, err := parseValidity(*body.Validity)
			if err != nil {
				return err
			}
			patch.Validity = validity
		}

		batch, err := svc.UpdateBatch(c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(toBatchResponse(*batch))
	}
}

// DELETE /api/product/batch/:id
func DeleteProductBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteBatch(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "product batch deleted"})
	}
}

// POST /api/product/:id/recipe
func AddRecipeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		portions := make([]PortionRequest, 0, len(body.Portions))
		for _, p := range body.Portions {
			portions = append(portions, PortionRequest{
				IngredientID: p.IngredientID,
				Quantity:     p.Quantity,
			})
		}

		prod, err := svc.AddRecipe(c.Params("id"), portions)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToProductResponse(prod))
	}
}

// PUT /api/product/portion/:id
func UpdatePortionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdatePortionRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		portion, err := svc.UpdatePortion(c.Params("id"), body.Quantity)
		if err != nil {
			return err
		}
		return c.JSON(PortionResponse{
			ID:           portion.ID,
			IngredientID: portion.IngredientID,
			Quantity:     portion.Quantity,
		})
	}
}

// DELETE /api/product/portion/:id
func DeletePortionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeletePortion(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "portion deleted"})
	}
}
