package sequence

import (
	"fmt"

	"SalesCast/internal/domain/models"
)

// BuildWindows turns series into (window, next value) pairs.
// For len(series) = N and lookBack = L it returns exactly N-L pairs where
// pair i has input series[i:i+L] and target series[i+L]. Windows are copies;
// series is never mutated.
func BuildWindows(series []float64, lookBack int) (models.WindowDataset, error) {
	if lookBack < 1 {
		return models.WindowDataset{}, fmt.Errorf("%w: must be >= 1, got %d", models.ErrInvalidLookBack, lookBack)
	}
	n := len(series)
	if n <= lookBack {
		return models.WindowDataset{}, &models.InsufficientDataError{N: n, LookBack: lookBack}
	}

	pairs := n - lookBack
	ds := models.WindowDataset{
		LookBack: lookBack,
		Inputs:   make([][]float64, pairs),
		Targets:  make([]float64, pairs),
	}
	// one backing array for all windows
	buf := make([]float64, pairs*lookBack)
	for i := 0; i < pairs; i++ {
		w := buf[i*lookBack : (i+1)*lookBack : (i+1)*lookBack]
		copy(w, series[i:i+lookBack])
		ds.Inputs[i] = w
		ds.Targets[i] = series[i+lookBack]
	}
	return ds, nil
}
