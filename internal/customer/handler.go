package customer

import (
	"errors"
	"time"

	"retail-backend/internal/auth"
	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BuyRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// GET /api/customer/products (permission: browse_product)
//
// Only sellable products are listed: in stock and not expired.
func BrowseProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		err := db.
			Where("quantity > 0 AND expiry_date >= ?", time.Now()).
			Order("name asc").
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch products")
		}
		return c.JSON(products)
	}
}

// POST /api/customer/buy (permission: buy_product)
func BuyProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BuyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		customerID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token payload")
		}
		role, _ := auth.CallerRole(c)

		result, err := Purchase(db, role, customerID, body.ProductID, body.Quantity)
		if err != nil {
			return mapPurchaseError(err)
		}

		return c.JSON(fiber.Map{
			"message": "Product purchased successfully",
			"product": fiber.Map{
				"name":              result.Product.Name,
				"remainingQuantity": result.Product.Quantity,
			},
			"sale": result.Sale,
		})
	}
}

func mapPurchaseError(err error) error {
	switch {
	case errors.Is(err, ErrNotCustomer):
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: Only customers can buy products")
	case errors.Is(err, ErrInvalidRequest):
		return fiber.NewError(fiber.StatusBadRequest, "Missing productId or quantity")
	case errors.Is(err, ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	case errors.Is(err, ErrInsufficientStock):
		return fiber.NewError(fiber.StatusBadRequest, "Insufficient quantity")
	case errors.Is(err, ErrProductExpired):
		return fiber.NewError(fiber.StatusBadRequest, "Product has expired")
	case errors.Is(err, ErrIncompleteProduct):
		return fiber.NewError(fiber.StatusBadRequest, "Product missing supplier info. Contact admin.")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to purchase product")
	}
}
