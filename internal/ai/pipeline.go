package ai

import (
	"context"
	"fmt"
	"path/filepath"

	"retail-backend/internal/models"

	"gorm.io/gorm"
)

// Pipeline is the snapshot → predictor → persist flow. A failing run never
// mutates the catalog or the ledger; the Prediction row is written only
// after the predictor answered with a valid forecast.
type Pipeline struct {
	db       *gorm.DB
	exporter *Exporter
	client   *Client
}

func NewPipeline(db *gorm.DB, exporter *Exporter, client *Client) *Pipeline {
	return &Pipeline{db: db, exporter: exporter, client: client}
}

func (p *Pipeline) Run(ctx context.Context) (*models.Prediction, error) {
	salesPath, productsPath, err := p.exporter.Export()
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}

	result, err := p.client.Predict(ctx, salesPath, productsPath)
	if err != nil {
		return nil, err
	}

	prediction := models.Prediction{
		SalesFileName:    filepath.Base(salesPath),
		ProductsFileName: filepath.Base(productsPath),
		Predictions:      string(result.Predictions),
		ChartData:        string(result.ChartData),
	}
	if err := p.db.Create(&prediction).Error; err != nil {
		return nil, fmt.Errorf("save prediction: %w", err)
	}

	return &prediction, nil
}
