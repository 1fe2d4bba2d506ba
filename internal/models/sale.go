package models

import "time"

// Sale is an append-only ledger entry. ProductName and UnitPrice are
// snapshots taken at purchase time so later catalog edits or deletes do not
// alter past sales.
type Sale struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"not null;index" json:"productId"`
	ProductName  string    `gorm:"size:100;not null" json:"productName"`
	CustomerID   uint      `gorm:"not null;index" json:"customerId"`
	QuantitySold int       `gorm:"not null" json:"quantitySold"`
	UnitPrice    float64   `gorm:"not null" json:"unitPrice"`
	TotalPrice   float64   `gorm:"not null" json:"totalPrice"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}
