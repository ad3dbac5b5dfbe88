package user

import (
	"padaria-backend/internal/apperr"
	"padaria-backend/internal/auth"
	"padaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterUserRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Phone:     u.Phone,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/user
func RegisterUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		u, err := svc.Create(RegisterRequest{
			Name:     body.Name,
			Phone:    body.Phone,
			Email:    body.Email,
			Password: body.Password,
			Role:     models.UserRole(body.Role),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToUserResponse(u))
	}
}

// POST /api/user/login
func LoginHandler(svc *Service, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		u, err := svc.Authenticate(body.Email, body.Password)
		if err != nil {
			return err
		}

		token, err := auth.GenerateToken(jwtSecret, u)
		if err != nil {
			return apperr.Server(err)
		}

		return c.JSON(fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
			"user":         ToUserResponse(u),
		})
	}
}

// GET /api/user
func ListUsersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.All()
		if err != nil {
			return err
		}

		resp := make([]UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, ToUserResponse(&users[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/user/:id
func GetUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(ToUserResponse(u))
	}
}

// GET /api/user/me
func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "user information missing")
		}

		u, err := svc.Get(userID)
		if err != nil {
			return err
		}
		return c.JSON(ToUserResponse(u))
	}
}

// PUT /api/user/:id
func UpdateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		patch := Patch{
			Name:     body.Name,
			Phone:    body.Phone,
			Email:    body.Email,
			Password: body.Password,
		}
		if body.Role != nil {
			role := models.UserRole(*body.Role)
			patch.Role = &role
		}

		u, err := svc.Update(c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(ToUserResponse(u))
	}
}

// DELETE /api/user/:id
func DeleteUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": "user deleted"})
	}
}
