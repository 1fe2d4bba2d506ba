package models

import "time"

// Prediction stores one forecast run returned by the external predictor.
// Records are write-once; Predictions and ChartData hold the predictor's
// JSON arrays verbatim.
type Prediction struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SalesFileName    string    `gorm:"size:255" json:"salesFileName,omitempty"`
	ProductsFileName string    `gorm:"size:255" json:"productsFileName,omitempty"`
	Predictions      string    `gorm:"type:jsonb" json:"-"`
	ChartData        string    `gorm:"type:jsonb" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}
