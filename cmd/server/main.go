package main

import (
	"log"
	"strings"

	"retail-backend/internal/ai"
	"retail-backend/internal/auth"
	"retail-backend/internal/config"
	"retail-backend/internal/customer"
	"retail-backend/internal/database"
	"retail-backend/internal/inventory"
	"retail-backend/internal/models"
	"retail-backend/internal/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("Database initialization failed: ", err)
	}
	defer database.Close(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	predictorClient := ai.NewClient(cfg.PredictorURL, cfg.PredictorTimeout)
	exporter := ai.NewExporter(db, cfg.ReportsDir)
	pipeline := ai.NewPipeline(db, exporter, predictorClient)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Retail API is running")
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Catalog management (admin permissions)
	protected.Post("/inventory/add", auth.RequirePermission(models.ActionCreate), inventory.AddProductHandler(db))
	protected.Get("/inventory/all", auth.RequirePermission(models.ActionRead), inventory.ListProductsHandler(db))
	protected.Put("/inventory/:id", auth.RequirePermission(models.ActionUpdate), inventory.UpdateProductHandler(db))
	protected.Delete("/inventory/:id", auth.RequirePermission(models.ActionDelete), inventory.DeleteProductHandler(db))

	// Customer storefront
	protected.Get("/customer/products", auth.RequirePermission(models.ActionBrowseProduct), customer.BrowseProductsHandler(db))
	protected.Post("/customer/buy", auth.RequirePermission(models.ActionBuyProduct), customer.BuyProductHandler(db))

	// AI pipeline
	protected.Post("/ai/run", auth.RequirePermission(models.ActionApplyAI), ai.RunHandler(pipeline))
	protected.Get("/ai/predictions", auth.RequirePermission(models.ActionViewCharts), ai.ListPredictionsHandler(db))
	protected.Get("/ai/test", ai.TestHandler(predictorClient, cfg.SampleDataDir))

	// Reports
	protected.Get("/reports/sales", auth.RequirePermission(models.ActionViewCSV), reports.SalesReportHandler(db))

	if cfg.AISchedule != "" {
		scheduler, err := ai.StartScheduler(cfg.AISchedule, pipeline)
		if err != nil {
			log.Fatal("Could not start AI scheduler: ", err)
		}
		defer scheduler.Stop()
		log.Println("AI scheduler started with spec:", cfg.AISchedule)
	}

	log.Println("Server running on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
