package sale

import (
	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"
	"padaria-backend/internal/product"
	"padaria-backend/internal/user"

	"github.com/gofiber/fiber/v2"
)

type SaleItemBody struct {
	ProductID string  `json:"product_id"`
	UserID    string  `json:"user_id"`
	Quantity  float64 `json:"quantity"`
}

// CreateSaleRequest accepts both checkout shapes: a single item given
// inline, or a multi-item note given under "sales".
type CreateSaleRequest struct {
	ProductID string         `json:"product_id"`
	UserID    string         `json:"user_id"`
	Quantity  float64        `json:"quantity"`
	Sales     []SaleItemBody `json:"sales"`
}

type SaleResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	UserID    string  `json:"user_id"`
	Quantity  float64 `json:"quantity"`
	Value     float64 `json:"value"`
	IsPaid    bool    `json:"is_paid"`
	SaleCode  string  `json:"sale_code"`
	CreatedAt string  `json:"created_at"`
}

type NoteResponse struct {
	Seller     user.UserResponse         `json:"seller"`
	Products   []product.ProductResponse `json:"products"`
	Notes      []SaleResponse            `json:"notes"`
	TotalValue float64                   `json:"total_value"`
}

func toSaleResponse(s *models.Sale) SaleResponse {
	return SaleResponse{
		ID:        s.ID,
		ProductID: s.ProductID,
		UserID:    s.UserID,
		Quantity:  s.Quantity,
		Value:     s.Value,
		IsPaid:    s.IsPaid,
		SaleCode:  s.SaleCode,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toNoteResponse(n *Note) NoteResponse {
	products := make([]product.ProductResponse, 0, len(n.Products))
	for i := range n.Products {
		products = append(products, product.ToProductResponse(&n.Products[i]))
	}
	items := make([]SaleResponse, 0, len(n.Items))
	for i := range n.Items {
		items = append(items, toSaleResponse(&n.Items[i]))
	}
	return NoteResponse{
		Seller:     user.ToUserResponse(&n.Seller),
		Products:   products,
		Notes:      items,
		TotalValue: n.TotalValue,
	}
}

// POST /api/sale
func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		if len(body.Sales) > 0 {
			lines := make([]LineRequest, 0, len(body.Sales))
			for _, item := range body.Sales {
				lines = append(lines, LineRequest{
					ProductID: item.ProductID,
					UserID:    item.UserID,
					Quantity:  item.Quantity,
				})
			}
			note, err := svc.CreateNote(lines)
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(toNoteResponse(note))
		}

		sale, err := svc.CreateOne(LineRequest{
			ProductID: body.ProductID,
			UserID:    body.UserID,
			Quantity:  body.Quantity,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
	}
}

// GET /api/sale/code/:code
func GetSaleNoteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := svc.NoteByCode(c.Params("code"))
		if err != nil {
			return err
		}
		return c.JSON(toNoteResponse(note))
	}
}

// PUT /api/sale/confirm/:code
func ConfirmSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := svc.Confirm(c.Params("code"))
		if err != nil {
			return err
		}
		return c.JSON(toNoteResponse(note))
	}
}

// DELETE /api/sale/cancel/:code
func CancelSaleNoteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Cancel(c.Params("code")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "sale note cancelled"})
	}
}

// GET /api/sale
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sales, err := svc.All()
		if err != nil {
			return err
		}
		return c.JSON(toSaleResponses(sales))
	}
}

// GET /api/sale/employee/:id
func ListSalesByEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sales, err := svc.ByEmployee(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toSaleResponses(sales))
	}
}

// GET /api/sale/product/:id
func ListSalesByProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sales, err := svc.ByProduct(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toSaleResponses(sales))
	}
}

// DELETE /api/sale/:id
func DeleteSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "sale deleted"})
	}
}

func toSaleResponses(sales []models.Sale) []SaleResponse {
	resp := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		resp = append(resp, toSaleResponse(&sales[i]))
	}
	return resp
}
