package models

import (
	"strings"
	"time"
)

// ForecastModel selects which forecast column is overlaid on actual sales.
type ForecastModel string

const (
	ModelARIMAX ForecastModel = "ARIMAX"
	ModelLSTM   ForecastModel = "LSTM"
	ModelLive   ForecastModel = "LIVE"
)

// ParseForecastModel is case-insensitive. Only the two selectable models are accepted.
func ParseForecastModel(s string) (ForecastModel, bool) {
	switch ForecastModel(strings.ToUpper(strings.TrimSpace(s))) {
	case ModelARIMAX:
		return ModelARIMAX, true
	case ModelLSTM:
		return ModelLSTM, true
	default:
		return "", false
	}
}

// Label is the legend text for the model's series.
func (m ForecastModel) Label() string {
	switch m {
	case ModelLive:
		return "Live LSTM Forecast"
	default:
		return string(m) + " Forecast"
	}
}

// WindowDataset holds (window, next value) pairs derived from a normalized series.
type WindowDataset struct {
	LookBack int         `json:"look_back"`
	Inputs   [][]float64 `json:"inputs"`
	Targets  []float64   `json:"targets"`
}

// Len returns the number of pairs.
func (d WindowDataset) Len() int { return len(d.Targets) }

// Hyperparams configure one live training run.
type Hyperparams struct {
	Epochs       int     `json:"epochs"`
	HiddenUnits  int     `json:"hidden_units"`
	LookBack     int     `json:"look_back"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	// Seed fixes parameter init and shuffling. Nil means a time-seeded,
	// non-reproducible run.
	Seed *int64 `json:"seed,omitempty"`
}

// TrainingRun describes a completed live training.
type TrainingRun struct {
	ID        string         `json:"run_id"`
	SessionID string         `json:"session_id"`
	Params    Hyperparams    `json:"params"`
	Loss      []float64      `json:"loss"`
	FinalLoss float64        `json:"final_loss"`
	Samples   int            `json:"samples"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Forecast  ForecastColumn `json:"forecast"`
}

// Session is the data context of one dashboard user: the loaded table and
// where it came from.
type Session struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Table     *Table    `json:"table"`
}
