package customer

import (
	"errors"
	"strings"
	"time"

	"retail-backend/internal/models"

	"gorm.io/gorm"
)

// Purchase failure variants. The HTTP boundary maps each to its status code;
// none of them is fatal to the process.
var (
	ErrNotCustomer       = errors.New("only customers can buy products")
	ErrInvalidRequest    = errors.New("missing productId or quantity")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient quantity")
	ErrProductExpired    = errors.New("product has expired")
	ErrIncompleteProduct = errors.New("product missing supplier info")
)

type PurchaseResult struct {
	Product models.Product
	Sale    models.Sale
}

// Purchase validates a buy request and, if every check passes, decrements
// stock and appends the sale inside one transaction. The decrement is a
// single conditional UPDATE (quantity >= requested), so two concurrent
// purchases can never jointly overdraw stock: the loser sees zero rows
// affected and fails with ErrInsufficientStock. A failed ledger write rolls
// the decrement back.
func Purchase(db *gorm.DB, callerRole models.Role, customerID, productID uint, quantity int) (*PurchaseResult, error) {
	if callerRole != models.RoleCustomer {
		return nil, ErrNotCustomer
	}
	if customerID == 0 || productID == 0 || quantity <= 0 {
		return nil, ErrInvalidRequest
	}

	var result PurchaseResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if p.Quantity < quantity {
			return ErrInsufficientStock
		}
		if p.ExpiryDate.Before(time.Now()) {
			return ErrProductExpired
		}
		if strings.TrimSpace(p.Supplier) == "" {
			return ErrIncompleteProduct
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", productID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent purchase drained the stock between the read
			// and the update.
			return ErrInsufficientStock
		}

		sale := models.Sale{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CustomerID:   customerID,
			QuantitySold: quantity,
			UnitPrice:    p.Price,
			TotalPrice:   p.Price * float64(quantity),
			Date:         time.Now(),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		if err := tx.First(&p, productID).Error; err != nil {
			return err
		}

		result = PurchaseResult{Product: p, Sale: sale}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
