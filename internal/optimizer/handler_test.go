package optimizer

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"retail-backend/internal/database"
	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const echoPredictorScript = `cat >/dev/null; echo '{"predictions":[{"product":"Milk","action":"reorder"}],"chart_data":[{"x":1}]}'`

func newTestApp(t *testing.T, runner *Runner) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	app := fiber.New()
	app.Post("/api/predict", PredictHandler(db, runner, t.TempDir(), 10*time.Second))
	app.Get("/api/predictions", ListPredictionsHandler(db))
	app.Get("/api/health", HealthHandler())
	return app, db
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestParseCSV(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("Product,CurrentStock\nMilk,7\nBread,3\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]string{"Product": "Milk", "CurrentStock": "7"}, rows[0])
	assert.Equal(t, map[string]string{"Product": "Bread", "CurrentStock": "3"}, rows[1])
}

func TestPredictJSONMode(t *testing.T) {
	runner := NewRunner("sh", []string{"-c", echoPredictorScript}, "")
	app, db := newTestApp(t, runner)

	payload := `{"sales":[{"Product":"Milk","QuantitySold":"3"}],"products":[{"Product":"Milk","CurrentStock":"7"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["savedId"])

	var count int64
	require.NoError(t, db.Model(&models.Prediction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPredictJSONModeMissingTables(t *testing.T) {
	runner := NewRunner("sh", []string{"-c", echoPredictorScript}, "")
	app, _ := newTestApp(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"sales":[]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPredictMultipartMode(t *testing.T) {
	runner := NewRunner("sh", []string{"-c", echoPredictorScript}, "")
	app, db := newTestApp(t, runner)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("sales", "sales.csv")
	require.NoError(t, err)
	io.WriteString(part, "Date,Product,QuantitySold\n2026-08-20,Milk,3\n")
	part, err = w.CreateFormFile("products", "products.csv")
	require.NoError(t, err)
	io.WriteString(part, "Product,CurrentStock\nMilk,7\n")
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/predict", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.Equal(t, true, body["success"])

	var stored models.Prediction
	require.NoError(t, db.Order("id desc").First(&stored).Error)
	assert.Equal(t, "sales.csv", stored.SalesFileName)
	assert.Equal(t, "products.csv", stored.ProductsFileName)
	assert.JSONEq(t, `[{"product":"Milk","action":"reorder"}]`, stored.Predictions)
}

func TestPredictMultipartModeRequiresBothFiles(t *testing.T) {
	runner := NewRunner("sh", []string{"-c", echoPredictorScript}, "")
	app, _ := newTestApp(t, runner)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("sales", "sales.csv")
	require.NoError(t, err)
	io.WriteString(part, "Date,Product\n")
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/predict", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPredictFailingPredictorPersistsNothing(t *testing.T) {
	runner := NewRunner("sh", []string{"-c", `cat >/dev/null; exit 1`}, "")
	app, db := newTestApp(t, runner)

	payload := `{"sales":[],"products":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.Equal(t, false, body["success"])

	var count int64
	require.NoError(t, db.Model(&models.Prediction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestListPredictionsNewestFirst(t *testing.T) {
	app, db := newTestApp(t, NewRunner("cat", nil, ""))

	old := models.Prediction{Predictions: `[{"n":1}]`, ChartData: "[]", CreatedAt: time.Now().Add(-time.Hour)}
	recent := models.Prediction{Predictions: `[{"n":2}]`, ChartData: "[]", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/predictions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, float64(recent.ID), first["id"])
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, NewRunner("cat", nil, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeJSON(t, resp)["status"])
}
