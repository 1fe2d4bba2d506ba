package main

import (
	"log"

	"retail-backend/internal/config"
	"retail-backend/internal/database"
	"retail-backend/internal/optimizer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.LoadOptimizer()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("Database initialization failed: ", err)
	}
	defer database.Close(db)

	app := fiber.New(fiber.Config{
		// Allow large CSV uploads.
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"error":   e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Unexpected server error",
			})
		},
	})

	app.Use(cors.New())

	runner := optimizer.NewRunner(cfg.PredictorCmd, cfg.PredictorArgs, ".")

	api := app.Group("/api")
	api.Get("/health", optimizer.HealthHandler())
	api.Post("/predict", optimizer.PredictHandler(db, runner, cfg.UploadDir, cfg.PredictorTimeout))
	api.Get("/predictions", optimizer.ListPredictionsHandler(db))

	log.Println("Optimizer service running on port:", cfg.OptimizerPort)
	if err := app.Listen(":" + cfg.OptimizerPort); err != nil {
		log.Fatal(err)
	}
}
