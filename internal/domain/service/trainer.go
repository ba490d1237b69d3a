package service

import (
	"context"

	"SalesCast/internal/domain/models"
)

// SequenceTrainer fits a window-to-scalar regressor on a window dataset.
type SequenceTrainer interface {
	Fit(ctx context.Context, ds models.WindowDataset, hp models.Hyperparams) (Predictor, error)
}

// Predictor is a fitted regressor over windows of normalized values.
type Predictor interface {
	Predict(window []float64) float64
	LossTrace() []float64
}
