package placeholder

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/services/loader"
	applogger "SalesCast/pkg/logger"
	"SalesCast/pkg/util"
)

const (
	DefaultSeed   int64 = 42
	DefaultStdDev       = 20.0
)

// Augmenter fills the LSTM forecast column of a sales CSV with the ARIMAX
// forecast plus Gaussian noise. The result is a stand-in column, not a
// model output.
type Augmenter struct {
	Source string // column read, predicted_sales_arimax by default
	Target string // column written, predicted_sales_lstm by default
	Seed   int64
	StdDev float64
	Logger *applogger.Logger
}

func New(names models.ColumnNames, seed int64, std float64, logger *applogger.Logger) *Augmenter {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Augmenter{Source: names.Arimax, Target: names.LSTM, Seed: seed, StdDev: std, Logger: logger}
}

// Augment adds or replaces the target column in f. Rows with an absent
// source value get an empty target cell.
func (a *Augmenter) Augment(f *loader.Frame) (int, error) {
	src := f.Index(a.Source)
	if src < 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrMissingColumn, a.Source)
	}
	dst := f.Index(a.Target)
	if dst < 0 {
		f.Header = append(f.Header, a.Target)
		dst = len(f.Header) - 1
	}

	rng := rand.New(rand.NewSource(a.Seed))
	written := 0
	for i, rec := range f.Records {
		if dst == len(rec) {
			rec = append(rec, "")
			f.Records[i] = rec
		}
		v, ok, err := util.ParseFloatCell(rec[src])
		if err != nil {
			return 0, fmt.Errorf("%w: row %d: %s %q is not a number", models.ErrMalformed, i+2, a.Source, rec[src])
		}
		if !ok {
			rec[dst] = ""
			continue
		}
		rec[dst] = strconv.FormatFloat(v+rng.NormFloat64()*a.StdDev, 'f', -1, 64)
		written++
	}
	return written, nil
}

// AugmentFile rewrites the CSV at path in place.
func (a *Augmenter) AugmentFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.LoadError{Source: path, Err: models.ErrFileNotFound}
		}
		return &models.LoadError{Source: path, Err: err}
	}
	f, err := loader.ReadFrame(bytes.NewReader(raw))
	if err != nil {
		return &models.LoadError{Source: path, Err: err}
	}
	n, err := a.Augment(f)
	if err != nil {
		return &models.LoadError{Source: path, Err: err}
	}

	var buf bytes.Buffer
	if err := loader.WriteFrame(&buf, f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.Logger.Info("placeholder column written",
		applogger.String("path", path),
		applogger.String("column", a.Target),
		applogger.Int("rows", f.Len()),
		applogger.Int("filled", n),
		applogger.Int64("seed", a.Seed),
	)
	return nil
}
