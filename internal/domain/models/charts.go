package models

import "time"

// Series is one plotted line.
type Series struct {
	Label  string     `json:"label"`
	Values []Optional `json:"values"`
}

// ForecastChart is the actual-vs-forecast view for the selected model.
// When Available is false the forecast column is missing, Warning explains
// why, and no series are returned.
type ForecastChart struct {
	Model     ForecastModel `json:"model"`
	Available bool          `json:"available"`
	Warning   string        `json:"warning,omitempty"`
	Title     string        `json:"title,omitempty"`
	Dates     []time.Time   `json:"dates,omitempty"`
	Actual    *Series       `json:"actual,omitempty"`
	Forecast  *Series       `json:"forecast,omitempty"`
}

// TrendsChart is the price and stock view.
type TrendsChart struct {
	Title      string      `json:"title"`
	Dates      []time.Time `json:"dates"`
	Price      Series      `json:"price"`
	Stock      Series      `json:"stock"`
	Provenance Provenance  `json:"provenance"`
}

// SessionSummary describes a session's table without its rows.
type SessionSummary struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Rows       int        `json:"rows"`
	Columns    []string   `json:"columns"`
	From       time.Time  `json:"from"`
	To         time.Time  `json:"to"`
	Provenance Provenance `json:"provenance"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RawTable is a page of the raw table.
type RawTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// UploadPreview is the head of an uploaded file. Uploads never touch
// session state.
type UploadPreview struct {
	Filename string     `json:"filename"`
	Columns  []string   `json:"columns"`
	Rows     int        `json:"rows"`
	Head     [][]string `json:"head"`
}

// LiveTrainingResult is the outcome of a live training run with the chart
// comparing it to actual sales.
type LiveTrainingResult struct {
	Run   TrainingRun   `json:"run"`
	Chart ForecastChart `json:"chart"`
}
