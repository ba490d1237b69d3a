package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/domain/repository"
	applogger "SalesCast/pkg/logger"
	"SalesCast/pkg/util"
)

// DefaultStartDate is where synthesized date ranges begin.
var DefaultStartDate = time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)

const (
	priceMin, priceMax = 50, 200
	stockMin, stockMax = 100, 500
)

type Config struct {
	Columns   models.ColumnNames
	StartDate time.Time
	// Seed drives synthesized price and stock columns. Nil seeds from the clock.
	Seed *int64
}

// Loader builds sales tables from CSV exports. Missing decoration columns
// are synthesized and flagged in the table's Provenance.
type Loader struct {
	cfg    Config
	logger *applogger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(cfg Config, logger *applogger.Logger) *Loader {
	if cfg.Columns == (models.ColumnNames{}) {
		cfg.Columns = models.DefaultColumnNames()
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = DefaultStartDate
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	return &Loader{cfg: cfg, logger: logger, rng: rand.New(rand.NewSource(seed))}
}

// LoadFile reads the table at path.
func (l *Loader) LoadFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.LoadError{Source: path, Err: models.ErrFileNotFound}
		}
		return nil, &models.LoadError{Source: path, Err: err}
	}
	defer f.Close()
	return l.Parse(path, f)
}

// Parse reads a table from r; name is used in errors and logs.
func (l *Loader) Parse(name string, r io.Reader) (*models.Table, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return nil, &models.LoadError{Source: name, Err: err}
	}
	t, err := l.Build(frame)
	if err != nil {
		return nil, &models.LoadError{Source: name, Err: err}
	}
	l.logger.Info("table loaded",
		applogger.String("source", name),
		applogger.Int("rows", t.Len()),
		applogger.Strings("columns", t.Order),
		applogger.Bool("date_synthesized", t.Provenance.DateSynthesized),
	)
	return t, nil
}

// Build interprets a frame as a sales table.
func (l *Loader) Build(f *Frame) (*models.Table, error) {
	names := l.cfg.Columns
	n := f.Len()

	actualCells, ok := f.Column(names.Actual)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrMissingColumn, names.Actual)
	}
	actual := make([]float64, n)
	for i, cell := range actualCells {
		v, present, err := util.ParseFloatCell(cell)
		if err != nil || !present {
			return nil, fmt.Errorf("%w: row %d: %s %q is not a number", models.ErrMalformed, i+2, names.Actual, cell)
		}
		actual[i] = v
	}

	t := &models.Table{
		Names:  names,
		Order:  append([]string(nil), f.Header...),
		Actual: actual,
	}

	t.Dates, t.Provenance.DateSynthesized = l.dates(f, n)
	if t.Provenance.DateSynthesized && f.Index(names.Date) < 0 {
		t.Order = append(t.Order, names.Date)
	}
	t.Price, t.Provenance.PriceSynthesized = l.decoration(f, names.Price, n, priceMin, priceMax)
	if t.Provenance.PriceSynthesized && f.Index(names.Price) < 0 {
		t.Order = append(t.Order, names.Price)
	}
	t.Stock, t.Provenance.StockSynthesized = l.decoration(f, names.Stock, n, stockMin, stockMax)
	if t.Provenance.StockSynthesized && f.Index(names.Stock) < 0 {
		t.Order = append(t.Order, names.Stock)
	}

	t.Arimax = forecastColumn(f, names.Arimax)
	t.LSTM = forecastColumn(f, names.LSTM)
	t.Live = forecastColumn(f, names.Live)

	known := map[string]bool{
		names.Date: true, names.Actual: true, names.Price: true, names.Stock: true,
		names.Arimax: true, names.LSTM: true, names.Live: true,
	}
	for _, h := range f.Header {
		if known[h] {
			continue
		}
		cells, _ := f.Column(h)
		t.Extras = append(t.Extras, models.RawColumn{Name: h, Values: cells})
	}
	return t, nil
}

// dates parses the date column when it forms a strictly daily sequence and
// otherwise synthesizes one from the configured start date.
func (l *Loader) dates(f *Frame, n int) ([]time.Time, bool) {
	cells, ok := f.Column(l.cfg.Columns.Date)
	if ok {
		parsed := make([]time.Time, n)
		for i, c := range cells {
			d, ok := util.ParseTime(c)
			if !ok {
				l.logger.Warn("unparseable date, synthesizing range",
					applogger.Int("row", i+2),
					applogger.String("value", c),
				)
				return util.DayRange(l.cfg.StartDate, n), true
			}
			parsed[i] = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		}
		if util.IsDaily(parsed) {
			return parsed, false
		}
		l.logger.Warn("dates are not a daily sequence, synthesizing range")
	}
	return util.DayRange(l.cfg.StartDate, n), true
}

// decoration parses a numeric column or fills it with uniform integers in [lo, hi).
func (l *Loader) decoration(f *Frame, name string, n, lo, hi int) ([]float64, bool) {
	if cells, ok := f.Column(name); ok {
		out := make([]float64, n)
		valid := true
		for i, c := range cells {
			v, present, err := util.ParseFloatCell(c)
			if err != nil || !present {
				valid = false
				break
			}
			out[i] = v
		}
		if valid {
			return out, false
		}
		l.logger.Warn("column has non-numeric cells, synthesizing", applogger.String("column", name))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(lo + l.rng.Intn(hi-lo))
	}
	return out, true
}

// forecastColumn parses an optional column; empty, NaN and non-numeric
// cells are absent.
func forecastColumn(f *Frame, name string) models.ForecastColumn {
	cells, ok := f.Column(name)
	if !ok {
		return models.ForecastColumn{}
	}
	col := models.ForecastColumn{Present: true, Values: make([]models.Optional, len(cells))}
	for i, c := range cells {
		if v, present, err := util.ParseFloatCell(c); err == nil && present {
			col.Values[i] = models.Some(v)
		}
	}
	return col
}

var _ repository.TableSource = (*Loader)(nil)
