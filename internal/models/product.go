package models

import "time"

type Product struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Quantity      int        `gorm:"not null;default:0" json:"quantity"` // current stock
	Price         float64    `gorm:"not null" json:"price"`
	ExpiryDate    time.Time  `gorm:"not null" json:"expiryDate"`
	Supplier      string     `gorm:"size:100;not null" json:"supplier"`
	Batch         string     `gorm:"size:50" json:"batch,omitempty"`
	BatchReceived *time.Time `json:"batchReceived,omitempty"`
	ShelfLifeDays *int       `json:"shelfLifeDays,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
