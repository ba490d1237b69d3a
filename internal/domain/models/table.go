package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Optional is a float that is either present or explicitly absent.
// Absent values encode as JSON null, never as zero.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) Optional { return Optional{Value: v, Valid: true} }

// None returns an absent value.
func None() Optional { return Optional{} }

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// String renders the value for CSV/raw output; absent values are empty.
func (o Optional) String() string {
	if !o.Valid {
		return ""
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}

// ForecastColumn is a derived series aligned to the table by row index.
// When Present, len(Values) equals the table row count.
type ForecastColumn struct {
	Present bool       `json:"present"`
	Values  []Optional `json:"values,omitempty"`
}

// Count returns the number of present entries.
func (c ForecastColumn) Count() int {
	n := 0
	for _, v := range c.Values {
		if v.Valid {
			n++
		}
	}
	return n
}

// RawColumn is an input column the dashboard does not interpret.
type RawColumn struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Provenance records which columns were synthesized by the loader.
type Provenance struct {
	DateSynthesized  bool `json:"date_synthesized"`
	PriceSynthesized bool `json:"price_synthesized"`
	StockSynthesized bool `json:"stock_synthesized"`
}

// ColumnNames maps logical columns to their CSV header names.
type ColumnNames struct {
	Date   string `json:"date"`
	Actual string `json:"actual"`
	Arimax string `json:"arimax"`
	LSTM   string `json:"lstm"`
	Live   string `json:"live"`
	Price  string `json:"price"`
	Stock  string `json:"stock"`
}

// DefaultColumnNames returns the header names used by the sales export.
func DefaultColumnNames() ColumnNames {
	return ColumnNames{
		Date:   "date",
		Actual: "actual_sales",
		Arimax: "predicted_sales_arimax",
		LSTM:   "predicted_sales_lstm",
		Live:   "lstm_live_forecast",
		Price:  "preco",
		Stock:  "estoque",
	}
}

// Table is the daily time series: one row per period, dates strictly
// increasing at a one-day step. Rows are never removed; forecast columns
// are only added or replaced.
type Table struct {
	Names      ColumnNames    `json:"names"`
	Order      []string       `json:"order"` // header order as loaded, derived columns appended
	Dates      []time.Time    `json:"dates"`
	Actual     []float64      `json:"actual"`
	Price      []float64      `json:"price"`
	Stock      []float64      `json:"stock"`
	Arimax     ForecastColumn `json:"arimax"`
	LSTM       ForecastColumn `json:"lstm"`
	Live       ForecastColumn `json:"live"`
	Extras     []RawColumn    `json:"extras,omitempty"`
	Provenance Provenance     `json:"provenance"`
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Actual) }

// Forecast returns the column backing the given model.
func (t *Table) Forecast(m ForecastModel) ForecastColumn {
	switch m {
	case ModelARIMAX:
		return t.Arimax
	case ModelLSTM:
		return t.LSTM
	case ModelLive:
		return t.Live
	default:
		return ForecastColumn{}
	}
}

// Columns lists the available columns in display order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.Order))
	copy(out, t.Order)
	return out
}

// SetLive stores the live-trained column and registers its header.
func (t *Table) SetLive(col ForecastColumn) {
	t.Live = col
	t.appendOrder(t.Names.Live)
}

func (t *Table) appendOrder(name string) {
	for _, c := range t.Order {
		if c == name {
			return
		}
	}
	t.Order = append(t.Order, name)
}

// Header returns the raw-view header (same as Columns).
func (t *Table) Header() []string { return t.Columns() }

// Row renders row i as strings following Header order.
func (t *Table) Row(i int) []string {
	out := make([]string, 0, len(t.Order))
	for _, name := range t.Order {
		out = append(out, t.cell(name, i))
	}
	return out
}

func (t *Table) cell(name string, i int) string {
	switch name {
	case t.Names.Date:
		return t.Dates[i].Format("2006-01-02")
	case t.Names.Actual:
		return strconv.FormatFloat(t.Actual[i], 'f', -1, 64)
	case t.Names.Price:
		return strconv.FormatFloat(t.Price[i], 'f', -1, 64)
	case t.Names.Stock:
		return strconv.FormatFloat(t.Stock[i], 'f', -1, 64)
	case t.Names.Arimax:
		return optionalCell(t.Arimax, i)
	case t.Names.LSTM:
		return optionalCell(t.LSTM, i)
	case t.Names.Live:
		return optionalCell(t.Live, i)
	}
	for _, x := range t.Extras {
		if x.Name == name && i < len(x.Values) {
			return x.Values[i]
		}
	}
	return ""
}

func optionalCell(c ForecastColumn, i int) string {
	if !c.Present || i >= len(c.Values) {
		return ""
	}
	return c.Values[i].String()
}
