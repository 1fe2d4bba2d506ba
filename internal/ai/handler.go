package ai

import (
	"encoding/json"
	"log"
	"path/filepath"
	"time"

	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// POST /api/ai/run (permission: apply_ai)
//
// Manual trigger: DB → CSV snapshot → predictor → save prediction.
func RunHandler(pipeline *Pipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log.Println("Manual AI trigger started")

		prediction, err := pipeline.Run(c.Context())
		if err != nil {
			log.Println("Error running AI manually:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"message":     "AI run completed successfully",
			"predictions": json.RawMessage(prediction.Predictions),
			"savedId":     prediction.ID,
		})
	}
}

type predictionItem struct {
	ID               uint            `json:"id"`
	SalesFileName    string          `json:"salesFileName,omitempty"`
	ProductsFileName string          `json:"productsFileName,omitempty"`
	Predictions      json.RawMessage `json:"predictions"`
	ChartData        json.RawMessage `json:"chartData"`
	CreatedAt        string          `json:"createdAt"`
}

// GET /api/ai/predictions (permission: view_charts)
func ListPredictionsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var predictions []models.Prediction
		if err := db.Order("created_at desc").Find(&predictions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error fetching predictions")
		}

		items := make([]predictionItem, 0, len(predictions))
		for _, p := range predictions {
			items = append(items, predictionItem{
				ID:               p.ID,
				SalesFileName:    p.SalesFileName,
				ProductsFileName: p.ProductsFileName,
				Predictions:      rawOrEmpty(p.Predictions),
				ChartData:        rawOrEmpty(p.ChartData),
				CreatedAt:        p.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(fiber.Map{"success": true, "data": items})
	}
}

// GET /api/ai/test
//
// Connectivity check: sends the bundled sample CSVs to the predictor.
func TestHandler(client *Client, sampleDataDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		salesCsv := filepath.Join(sampleDataDir, "sales.csv")
		productsCsv := filepath.Join(sampleDataDir, "products.csv")

		result, err := client.Predict(c.Context(), salesCsv, productsCsv)
		if err != nil {
			log.Println("AI connection failed:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to connect to AI Optimizer",
				"details": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"message":     "AI Optimizer connected successfully",
			"predictions": result.Predictions,
		})
	}
}

func rawOrEmpty(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(s)
}
