package ai

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"retail-backend/internal/database"
	"retail-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportSnapshot(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.Product{
		Name: "Milk", Quantity: 7, Price: 2.0,
		ExpiryDate: time.Date(2031, 1, 15, 0, 0, 0, 0, time.UTC), Supplier: "Acme",
	}).Error)

	require.NoError(t, db.Create(&models.Sale{
		ProductID: 1, ProductName: "Milk", CustomerID: 1,
		QuantitySold: 3, UnitPrice: 2.0, TotalPrice: 6.0,
		Date: time.Now().AddDate(0, 0, -1),
	}).Error)
	// Older than the 7-day window, must not be exported.
	require.NoError(t, db.Create(&models.Sale{
		ProductID: 1, ProductName: "Milk", CustomerID: 2,
		QuantitySold: 5, UnitPrice: 1.8, TotalPrice: 9.0,
		Date: time.Now().AddDate(0, 0, -30),
	}).Error)

	exporter := NewExporter(db, t.TempDir())
	salesPath, productsPath, err := exporter.Export()
	require.NoError(t, err)

	salesRows := readCSV(t, salesPath)
	require.Len(t, salesRows, 2)
	assert.Equal(t, []string{"Date", "Product", "QuantitySold", "UnitPrice", "TotalPrice"}, salesRows[0])
	assert.Equal(t, "Milk", salesRows[1][1])
	assert.Equal(t, "3", salesRows[1][2])
	assert.Equal(t, "2", salesRows[1][3])
	assert.Equal(t, "6", salesRows[1][4])

	productRows := readCSV(t, productsPath)
	require.Len(t, productRows, 2)
	assert.Equal(t, []string{"Product", "CurrentStock", "ExpiryDate", "Supplier", "Price"}, productRows[0])
	assert.Equal(t, []string{"Milk", "7", "2031-01-15", "Acme", "2"}, productRows[1])
}

func TestExportUsesPerRunDirectories(t *testing.T) {
	db := newTestDB(t)
	exporter := NewExporter(db, t.TempDir())

	firstSales, _, err := exporter.Export()
	require.NoError(t, err)
	secondSales, _, err := exporter.Export()
	require.NoError(t, err)

	// Overlapping runs must never write to the same files.
	assert.NotEqual(t, firstSales, secondSales)
	assert.NotEqual(t, filepath.Dir(firstSales), filepath.Dir(secondSales))
}
