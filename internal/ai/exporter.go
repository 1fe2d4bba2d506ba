package ai

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"retail-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Exporter dumps a point-in-time snapshot of the sale ledger and the product
// catalog as CSV files for the predictor. Every run writes into its own
// uuid-named subdirectory, so overlapping runs never share files.
type Exporter struct {
	db      *gorm.DB
	baseDir string
}

func NewExporter(db *gorm.DB, baseDir string) *Exporter {
	return &Exporter{db: db, baseDir: baseDir}
}

// Export writes sales.csv (last 7 days of the ledger) and products.csv
// (current catalog) and returns their paths.
func (e *Exporter) Export() (salesPath, productsPath string, err error) {
	runDir := filepath.Join(e.baseDir, uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create export dir: %w", err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	var sales []models.Sale
	if err := e.db.Where("date >= ?", weekAgo).Order("date asc").Find(&sales).Error; err != nil {
		return "", "", fmt.Errorf("load sales: %w", err)
	}

	salesPath = filepath.Join(runDir, "sales.csv")
	salesRows := make([][]string, 0, len(sales)+1)
	salesRows = append(salesRows, []string{"Date", "Product", "QuantitySold", "UnitPrice", "TotalPrice"})
	for _, s := range sales {
		salesRows = append(salesRows, []string{
			s.Date.Format("2006-01-02"),
			s.ProductName,
			strconv.Itoa(s.QuantitySold),
			formatFloat(s.UnitPrice),
			formatFloat(s.TotalPrice),
		})
	}
	if err := writeCSV(salesPath, salesRows); err != nil {
		return "", "", err
	}

	var products []models.Product
	if err := e.db.Order("name asc").Find(&products).Error; err != nil {
		return "", "", fmt.Errorf("load products: %w", err)
	}

	productsPath = filepath.Join(runDir, "products.csv")
	productRows := make([][]string, 0, len(products)+1)
	productRows = append(productRows, []string{"Product", "CurrentStock", "ExpiryDate", "Supplier", "Price"})
	for _, p := range products {
		productRows = append(productRows, []string{
			p.Name,
			strconv.Itoa(p.Quantity),
			p.ExpiryDate.Format("2006-01-02"),
			p.Supplier,
			formatFloat(p.Price),
		})
	}
	if err := writeCSV(productsPath, productRows); err != nil {
		return "", "", err
	}

	return salesPath, productsPath, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
