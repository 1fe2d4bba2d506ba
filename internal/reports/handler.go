package reports

import (
	"fmt"
	"time"

	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GET /api/reports/sales?days=30 (permission: view_csv)
//
// Downloads the recent sale ledger as an XLSX workbook.
func SalesReportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "days must be positive")
		}
		since := time.Now().AddDate(0, 0, -days)

		var sales []models.Sale
		if err := db.Where("date >= ?", since).Order("date asc").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sales")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Sales"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Date", "Product", "Customer ID", "Quantity", "Unit Price", "Total Price"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		var total float64
		for row, s := range sales {
			values := []interface{}{
				s.Date.Format("2006-01-02"),
				s.ProductName,
				s.CustomerID,
				s.QuantitySold,
				s.UnitPrice,
				s.TotalPrice,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
			total += s.TotalPrice
		}

		totalRow := len(sales) + 2
		totalLabelCell, _ := excelize.CoordinatesToCellName(5, totalRow)
		totalValueCell, _ := excelize.CoordinatesToCellName(6, totalRow)
		f.SetCellValue(sheet, totalLabelCell, "Total")
		f.SetCellValue(sheet, totalValueCell, total)

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="sales-report-%s.xlsx"`, time.Now().Format("2006-01-02")))

		if err := f.Write(c.Response().BodyWriter()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not write report")
		}
		return nil
	}
}
