package usecase

import (
	"fmt"

	"SalesCast/internal/domain/models"
)

const (
	actualLabel = "Actual Sales"
	trendsTitle = "Preco and Estoque Over Time"
	liveTitle   = "Live LSTM Forecast vs Actual"
)

func forecastChart(t *models.Table, m models.ForecastModel) *models.ForecastChart {
	col := t.Forecast(m)
	if !col.Present {
		return &models.ForecastChart{
			Model:   m,
			Warning: fmt.Sprintf("%s forecast column missing in CSV.", m),
		}
	}

	title := fmt.Sprintf("Actual vs %s Forecasted Sales", m)
	if m == models.ModelLive {
		title = liveTitle
	}
	return &models.ForecastChart{
		Model:     m,
		Available: true,
		Title:     title,
		Dates:     t.Dates,
		Actual:    &models.Series{Label: actualLabel, Values: present(t.Actual)},
		Forecast:  &models.Series{Label: m.Label(), Values: col.Values},
	}
}

func trendsChart(t *models.Table) *models.TrendsChart {
	return &models.TrendsChart{
		Title:      trendsTitle,
		Dates:      t.Dates,
		Price:      models.Series{Label: "Preco (Price)", Values: present(t.Price)},
		Stock:      models.Series{Label: "Estoque (Stock)", Values: present(t.Stock)},
		Provenance: t.Provenance,
	}
}

func present(xs []float64) []models.Optional {
	out := make([]models.Optional, len(xs))
	for i, x := range xs {
		out[i] = models.Some(x)
	}
	return out
}

func summarize(s *models.Session) *models.SessionSummary {
	sum := &models.SessionSummary{
		ID:         s.ID,
		Source:     s.Source,
		Rows:       s.Table.Len(),
		Columns:    s.Table.Columns(),
		Provenance: s.Table.Provenance,
		CreatedAt:  s.CreatedAt,
	}
	if n := len(s.Table.Dates); n > 0 {
		sum.From = s.Table.Dates[0]
		sum.To = s.Table.Dates[n-1]
	}
	return sum
}
