package inventory

import (
	"errors"
	"strings"
	"time"

	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	ExpiryDate    string  `json:"expiryDate"`
	Supplier      string  `json:"supplier"`
	Batch         string  `json:"batch"`
	BatchReceived string  `json:"batchReceived"`
	ShelfLifeDays *int    `json:"shelfLifeDays"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name"`
	Quantity      *int     `json:"quantity"`
	Price         *float64 `json:"price"`
	ExpiryDate    *string  `json:"expiryDate"`
	Supplier      *string  `json:"supplier"`
	Batch         *string  `json:"batch"`
	ShelfLifeDays *int     `json:"shelfLifeDays"`
}

// parseDate accepts plain dates and RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// POST /api/inventory/add (permission: create)
func AddProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Supplier = strings.TrimSpace(body.Supplier)

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		expiry, err := parseDate(body.ExpiryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Valid expiryDate is required")
		}
		if body.Supplier == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier is required")
		}
		if body.Quantity < 0 || body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity and price must not be negative")
		}

		p := models.Product{
			Name:          body.Name,
			Quantity:      body.Quantity,
			Price:         body.Price,
			ExpiryDate:    expiry,
			Supplier:      body.Supplier,
			Batch:         strings.TrimSpace(body.Batch),
			ShelfLifeDays: body.ShelfLifeDays,
		}
		if body.BatchReceived != "" {
			received, err := parseDate(body.BatchReceived)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid batchReceived format")
			}
			p.BatchReceived = &received
		}

		if err := db.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Product added successfully",
			"product": p,
		})
	}
}

// GET /api/inventory/all (permission: read)
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := db.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// PUT /api/inventory/:id (permission: update)
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var p models.Product
		if err := db.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load product")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ExpiryDate != nil {
			expiry, err := parseDate(*body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid expiryDate format")
			}
			p.ExpiryDate = expiry
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name must not be empty")
			}
			p.Name = name
		}
		if body.Supplier != nil {
			supplier := strings.TrimSpace(*body.Supplier)
			if supplier == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Supplier must not be empty")
			}
			p.Supplier = supplier
		}
		if body.Quantity != nil {
			if *body.Quantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Quantity must not be negative")
			}
			p.Quantity = *body.Quantity
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Price must not be negative")
			}
			p.Price = *body.Price
		}
		if body.Batch != nil {
			p.Batch = strings.TrimSpace(*body.Batch)
		}
		if body.ShelfLifeDays != nil {
			p.ShelfLifeDays = body.ShelfLifeDays
		}

		if err := db.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		return c.JSON(p)
	}
}

// DELETE /api/inventory/:id (permission: delete)
//
// Historical sales keep their own name/price snapshots, so deleting a
// product does not invalidate the ledger.
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		res := db.Delete(&models.Product{}, id)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		return c.JSON(fiber.Map{"message": "Product deleted successfully"})
	}
}
