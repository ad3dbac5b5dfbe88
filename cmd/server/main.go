package main

import (
	"errors"
	"log"
	"strings"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/auth"
	"padaria-backend/internal/config"
	"padaria-backend/internal/database"
	"padaria-backend/internal/ingredient"
	"padaria-backend/internal/models"
	"padaria-backend/internal/product"
	"padaria-backend/internal/report"
	"padaria-backend/internal/sale"
	"padaria-backend/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}

	userSvc := user.NewService(db)
	ingredientSvc := ingredient.NewService(db)
	productSvc := product.NewService(db)
	saleSvc := sale.NewService(db)
	reportSvc := report.NewService(db)

	if err := userSvc.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("admin bootstrap failed: ", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return c.Status(appErr.StatusCode()).JSON(fiber.Map{
					"error": appErr.Detail,
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Static("/product-images", cfg.ProductImagePath)

	api := app.Group("/api")

	// Public
	api.Post("/user", user.RegisterUserHandler(userSvc))
	api.Post("/user/login", user.LoginHandler(userSvc, cfg.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/user/me", user.MeHandler(userSvc))

	// Ingredients
	protected.Post("/ingredient", ingredient.CreateIngredientHandler(ingredientSvc))
	protected.Get("/ingredient", ingredient.ListIngredientsHandler(ingredientSvc))
	protected.Post("/ingredient/batch", ingredient.CreateIngredientBatchHandler(ingredientSvc))
	protected.Put("/ingredient/batch/:id", ingredient.UpdateIngredientBatchHandler(ingredientSvc))
	protected.Delete("/ingredient/batch/:id", ingredient.DeleteIngredientBatchHandler(ingredientSvc))
	protected.Get("/ingredient/:id", ingredient.GetIngredientHandler(ingredientSvc))
	protected.Put("/ingredient/:id", ingredient.UpdateIngredientHandler(ingredientSvc))
	protected.Delete("/ingredient/:id", ingredient.DeleteIngredientHandler(ingredientSvc))
	protected.Get("/ingredient/:id/batch", ingredient.ListIngredientBatchesHandler(ingredientSvc))

	// Products
	protected.Post("/product", product.CreateProductHandler(productSvc))
	protected.Get("/product", product.ListProductsHandler(productSvc))
	protected.Post("/product/batch", product.CreateProductBatchHandler(productSvc))
	protected.Put("/product/batch/:id", product.UpdateProductBatchHandler(productSvc))
	protected.Delete("/product/batch/:id", product.DeleteProductBatchHandler(productSvc))
	protected.Put("/product/portion/:id", product.UpdatePortionHandler(productSvc))
	protected.Delete("/product/portion/:id", product.DeletePortionHandler(productSvc))
	protected.Get("/product/:id", product.GetProductHandler(productSvc))
	protected.Put("/product/:id", product.UpdateProductHandler(productSvc))
	protected.Delete("/product/:id", product.DeleteProductHandler(productSvc))
	protected.Get("/product/:id/batch", product.ListProductBatchesHandler(productSvc))
	protected.Post("/product/:id/recipe", product.AddRecipeHandler(productSvc))

	// Sales
	protected.Post("/sale", sale.CreateSaleHandler(saleSvc))
	protected.Get("/sale", sale.ListSalesHandler(saleSvc))
	protected.Get("/sale/code/:code", sale.GetSaleNoteHandler(saleSvc))
	protected.Put("/sale/confirm/:code", sale.ConfirmSaleHandler(saleSvc))
	protected.Delete("/sale/cancel/:code", sale.CancelSaleNoteHandler(saleSvc))
	protected.Get("/sale/employee/:id", sale.ListSalesByEmployeeHandler(saleSvc))
	protected.Get("/sale/product/:id", sale.ListSalesByProductHandler(saleSvc))
	protected.Delete("/sale/:id", sale.DeleteSaleHandler(saleSvc))

	// Admin only
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Get("/user", user.ListUsersHandler(userSvc))
	adminRoutes.Get("/user/:id", user.GetUserHandler(userSvc))
	adminRoutes.Put("/user/:id", user.UpdateUserHandler(userSvc))
	adminRoutes.Delete("/user/:id", user.DeleteUserHandler(userSvc))

	adminRoutes.Get("/report/product", report.ProductReportHandler(reportSvc))

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
