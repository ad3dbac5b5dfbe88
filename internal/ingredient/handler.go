package ingredient

import (
	"time"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateIngredientRequest struct {
	Name        string  `json:"name"`
	Measure     string  `json:"measure"`
	Mark        string  `json:"mark"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	MinQuantity float64 `json:"min_quantity"`
	ImagePath   string  `json:"image_path"`
	Validity    string  `json:"validity"` // "2006-01-02", optional
	Quantity    float64 `json:"quantity"`
}

type UpdateIngredientRequest struct {
	Name        *string  `json:"name"`
	Measure     *string  `json:"measure"`
	Mark        *string  `json:"mark"`
	Description *string  `json:"description"`
	Value       *float64 `json:"value"`
	MinQuantity *float64 `json:"min_quantity"`
	ImagePath   *string  `json:"image_path"`
}

type CreateBatchRequest struct {
	IngredientID string  `json:"ingredient_id"`
	Validity     string  `json:"validity"`
	Quantity     float64 `json:"quantity"`
}

type UpdateBatchRequest struct {
	Validity *string  `json:"validity"`
	Quantity *float64 `json:"quantity"`
}

type BatchResponse struct {
	ID        string  `json:"id"`
	Validity  *string `json:"validity"`
	Quantity  float64 `json:"quantity"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type PortionResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type IngredientResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Measure     string            `json:"measure"`
	Mark        string            `json:"mark"`
	Description string            `json:"description"`
	Value       float64           `json:"value"`
	MinQuantity float64           `json:"min_quantity"`
	ImagePath   string            `json:"image_path"`
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

func toBatchResponse(b models.IngredientBatch) BatchResponse {
	return BatchResponse{
		ID:        b.ID,
		Validity:  formatValidity(b.Validity),
		Quantity:  b.Quantity,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toIngredientResponse(ing *models.Ingredient) IngredientResponse {
	batches := make([]BatchResponse, 0, len(ing.Batches))
	for _, b := range ing.Batches {
		batches = append(batches, toBatchResponse(b))
	}
	portions := make([]PortionResponse, 0, len(ing.Portions))
	for _, p := range ing.Portions {
		portions = append(portions, PortionResponse{
			ID:        p.ID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}
	return IngredientResponse{
		ID:          ing.ID,
		Name:        ing.Name,
		Measure:     string(ing.Measure),
		Mark:        ing.Mark,
		Description: ing.Description,
		Value:       ing.Value,
		MinQuantity: ing.MinQuantity,
		ImagePath:   ing.ImagePath,
		CreatedAt:   ing.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   ing.UpdatedAt.Format("2006-01-02 15:04:05"),
		Batches:     batches,
		Portions:    portions,
	}
}

// POST /api/ingredient
func CreateIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		validity, err := parseValidity(body.Validity)
		if err != nil {
			return err
		}

		ing, merged, err := svc.Create(CreateRequest{
			Name:        body.Name,
			Measure:     models.Measure(body.Measure),
			Mark:        body.Mark,
			Description: body.Description,
			Value:       body.Value,
			MinQuantity: body.MinQuantity,
			ImagePath:   body.ImagePath,
			Validity:    validity,
			Quantity:    body.Quantity,
		})
		if err != nil {
			return err
		}

		detail := "ingredient created"
		if merged {
			detail = "ingredient already exists, saved as a new batch"
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"detail":        detail,
			"ingredient_id": ing.ID,
		})
	}
}

// GET /api/ingredient
func ListIngredientsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ingredients, err := svc.All()
		if err != nil {
			return err
		}

		resp := make([]IngredientResponse, 0, len(ingredients))
		for i := range ingredients {
			resp = append(resp, toIngredientResponse(&ingredients[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/ingredient/:id
func GetIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ing, err := svc.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toIngredientResponse(ing))
	}
}

// PUT /api/ingredient/:id
func UpdateIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		patch := Patch{
			Name:        body.Name,
			Mark:        body.Mark,
			Description: body.Description,
			Value:       body.Value,
			MinQuantity: body.MinQuantity,
			ImagePath:   body.ImagePath,
		}
		if body.Measure != nil {
			m := models.Measure(*body.Measure)
			patch.Measure = &m
		}

		ing, err := svc.Update(c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(toIngredientResponse(ing))
	}
}

// DELETE /api/ingredient/:id
func DeleteIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "ingredient deleted"})
	}
}

// POST /api/ingredient/batch
func CreateIngredientBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		if body.IngredientID == "" {
			return apperr.Validation("ingredient_id is required")
		}

		validity, err := parseValidity(body.Validity)
		if err != nil {
			return err
		}

		batch, err := svc.AddBatch(body.IngredientID, validity, body.Quantity)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toBatchResponse(*batch))
	}
}

// GET /api/ingredient/:id/batch
func ListIngredientBatchesHandler(svc *Service) fiber.Handler {
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

// PUT /api/ingredient/batch/:id
func UpdateIngredientBatchHandler(svc *Service) fiber.Handler {
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

// DELETE /api/ingredient/batch/:id
func DeleteIngredientBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteBatch(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "ingredient batch deleted"})
	}
}
