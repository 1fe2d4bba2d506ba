package optimizer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type predictJSONRequest struct {
	Sales    []map[string]string `json:"sales"`
	Products []map[string]string `json:"products"`
	Config   *PredictorConfig    `json:"config"`
}

// PredictHandler serves POST /api/predict in two modes: JSON bodies coming
// from the retail system API, and multipart CSV uploads.
func PredictHandler(db *gorm.DB, runner *Runner, uploadDir string, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return predictFromJSON(c, db, runner, timeout)
		}
		return predictFromUpload(c, db, runner, uploadDir, timeout)
	}
}

func predictFromJSON(c *fiber.Ctx, db *gorm.DB, runner *Runner, timeout time.Duration) error {
	var body predictJSONRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if body.Sales == nil || body.Products == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Please upload both sales.csv and products.csv OR send JSON data",
		})
	}

	cfg := DefaultPredictorConfig()
	if body.Config != nil {
		cfg = *body.Config
	}

	input := PredictorInput{Sales: body.Sales, Products: body.Products, Config: cfg}
	return runAndRespond(c, db, runner, timeout, input, "", "")
}

func predictFromUpload(c *fiber.Ctx, db *gorm.DB, runner *Runner, uploadDir string, timeout time.Duration) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Please upload both sales.csv and products.csv OR send JSON data",
		})
	}

	var files []*multipart.FileHeader
	for _, headers := range form.File {
		files = append(files, headers...)
	}
	if len(files) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Please upload both sales.csv and products.csv OR send JSON data",
		})
	}

	salesFile, productsFile := matchUploads(files)

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return serverError(c, "Server error while processing data", err)
	}

	salesPath := filepath.Join(uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(salesFile.Filename)))
	productsPath := filepath.Join(uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(productsFile.Filename)))
	defer cleanupFiles(salesPath, productsPath)

	if err := c.SaveFile(salesFile, salesPath); err != nil {
		return serverError(c, "Server error while processing data", err)
	}
	if err := c.SaveFile(productsFile, productsPath); err != nil {
		return serverError(c, "Server error while processing data", err)
	}

	salesData, err := parseCSVFile(salesPath)
	if err != nil {
		return serverError(c, "Failed to parse sales CSV", err)
	}
	productsData, err := parseCSVFile(productsPath)
	if err != nil {
		return serverError(c, "Failed to parse products CSV", err)
	}

	input := PredictorInput{Sales: salesData, Products: productsData, Config: DefaultPredictorConfig()}
	return runAndRespond(c, db, runner, timeout, input, salesFile.Filename, productsFile.Filename)
}

// matchUploads pairs the uploaded files by name; when the names give no
// hint, the first two files are taken in order.
func matchUploads(files []*multipart.FileHeader) (sales, products *multipart.FileHeader) {
	for _, f := range files {
		name := strings.ToLower(f.Filename)
		if sales == nil && strings.Contains(name, "sales") {
			sales = f
		} else if products == nil && strings.Contains(name, "product") {
			products = f
		}
	}
	if sales == nil || products == nil {
		sales, products = files[0], files[1]
	}
	return sales, products
}

func runAndRespond(c *fiber.Ctx, db *gorm.DB, runner *Runner, timeout time.Duration, input PredictorInput, salesFileName, productsFileName string) error {
	ctx, cancel := contextWithTimeout(c, timeout)
	defer cancel()

	output, err := runner.Run(ctx, input)
	if err != nil {
		log.Println("Predictor run failed:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Predictor run failed",
			"details": err.Error(),
		})
	}

	prediction := models.Prediction{
		SalesFileName:    salesFileName,
		ProductsFileName: productsFileName,
		Predictions:      string(output.Predictions),
		ChartData:        string(output.ChartData),
	}
	if err := db.Create(&prediction).Error; err != nil {
		return serverError(c, "Failed to save prediction", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Predictions generated successfully",
		"data": fiber.Map{
			"predictions": output.Predictions,
			"chart_data":  output.ChartData,
		},
		"savedId": prediction.ID,
	})
}

// ListPredictionsHandler serves GET /api/predictions, newest first.
func ListPredictionsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var predictions []models.Prediction
		if err := db.Order("created_at desc").Find(&predictions).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error fetching predictions",
			})
		}

		type item struct {
			ID               uint            `json:"id"`
			SalesFileName    string          `json:"salesFileName,omitempty"`
			ProductsFileName string          `json:"productsFileName,omitempty"`
			Predictions      json.RawMessage `json:"predictions"`
			ChartData        json.RawMessage `json:"chart_data"`
			CreatedAt        time.Time       `json:"createdAt"`
		}
		items := make([]item, 0, len(predictions))
		for _, p := range predictions {
			items = append(items, item{
				ID:               p.ID,
				SalesFileName:    p.SalesFileName,
				ProductsFileName: p.ProductsFileName,
				Predictions:      rawOrEmpty(p.Predictions),
				ChartData:        rawOrEmpty(p.ChartData),
				CreatedAt:        p.CreatedAt,
			})
		}

		return c.JSON(fiber.Map{"success": true, "data": items})
	}
}

// HealthHandler serves GET /api/health.
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Optimizer service is running",
			"time":    time.Now().Format(time.RFC3339),
		})
	}
}

func parseCSVFile(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV record: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[strings.TrimSpace(col)] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cleanupFiles(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Println("Could not remove upload:", err)
		}
	}
}

func contextWithTimeout(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), timeout)
}

func serverError(c *fiber.Ctx, msg string, err error) error {
	log.Println(msg+":", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   msg,
		"details": err.Error(),
	})
}

func rawOrEmpty(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(s)
}
