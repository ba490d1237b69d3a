package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"SalesCast/internal/domain/models"
	domsvc "SalesCast/internal/domain/service"
	applogger "SalesCast/pkg/logger"
)

const (
	DefaultBatchSize    = 16
	DefaultLearningRate = 0.001
)

// LSTMTrainer fits a single-layer LSTM with a dense scalar head using
// mean squared error, shuffled mini-batches and Adam.
type LSTMTrainer struct {
	batchSize    int
	learningRate float64
	logger       *applogger.Logger
	now          func() time.Time
}

type Option func(*LSTMTrainer)

func WithBatchSize(n int) Option {
	return func(t *LSTMTrainer) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

func WithLearningRate(lr float64) Option {
	return func(t *LSTMTrainer) {
		if lr > 0 {
			t.learningRate = lr
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(t *LSTMTrainer) {
		if l != nil {
			t.logger = l
		}
	}
}

func New(opts ...Option) *LSTMTrainer {
	t := &LSTMTrainer{
		batchSize:    DefaultBatchSize,
		learningRate: DefaultLearningRate,
		logger:       applogger.Nop(),
		now:          time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit implements service.SequenceTrainer.
func (t *LSTMTrainer) Fit(ctx context.Context, ds models.WindowDataset, hp models.Hyperparams) (domsvc.Predictor, error) {
	m, err := t.Train(ctx, ds, hp)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Train runs hp.Epochs passes over ds and returns the fitted model. Zero
// BatchSize or LearningRate fall back to the trainer's defaults. The context
// is checked between epochs.
func (t *LSTMTrainer) Train(ctx context.Context, ds models.WindowDataset, hp models.Hyperparams) (*Model, error) {
	if hp.BatchSize == 0 {
		hp.BatchSize = t.batchSize
	}
	if hp.LearningRate == 0 {
		hp.LearningRate = t.learningRate
	}
	if hp.LookBack == 0 {
		hp.LookBack = ds.LookBack
	}
	if err := validate(ds, hp); err != nil {
		return nil, err
	}

	seed := t.now().UnixNano()
	if hp.Seed != nil {
		seed = *hp.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	m := &Model{
		params: newParams(hp.HiddenUnits),
		hidden: hp.HiddenUnits,
		seed:   seed,
		loss:   make([]float64, 0, hp.Epochs),
	}
	initParams(m.params, hp.HiddenUnits, rng)

	grads := newParams(hp.HiddenUnits)
	opt := newAdam(hp.LearningRate, m.params)
	ws := newWorkspace(hp.HiddenUnits, ds.LookBack)
	n := ds.Len()
	start := time.Now()

	for epoch := 0; epoch < hp.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, &models.TrainingError{Reason: fmt.Sprintf("interrupted at epoch %d", epoch+1), Err: err}
		}
		perm := rng.Perm(n)
		var sse float64
		for lo := 0; lo < n; lo += hp.BatchSize {
			hi := min(lo+hp.BatchSize, n)
			sse += accumulate(m.params, ws, ds.Inputs, ds.Targets, perm[lo:hi], grads)
			opt.step(m.params, grads)
		}
		m.loss = append(m.loss, sse/float64(n))
		t.logger.Debug("epoch done",
			applogger.Int("epoch", epoch+1),
			applogger.Float64("loss", m.loss[epoch]),
		)
	}

	t.logger.Info("lstm fitted",
		applogger.Int("samples", n),
		applogger.Int("epochs", hp.Epochs),
		applogger.Int("hidden_units", hp.HiddenUnits),
		applogger.Int("look_back", ds.LookBack),
		applogger.Float64("final_loss", m.loss[len(m.loss)-1]),
		applogger.Duration("elapsed_ms", time.Since(start)),
	)
	return m, nil
}

func validate(ds models.WindowDataset, hp models.Hyperparams) error {
	switch {
	case hp.Epochs < 1:
		return &models.TrainingError{Reason: fmt.Sprintf("epochs must be >= 1, got %d", hp.Epochs)}
	case hp.HiddenUnits < 1:
		return &models.TrainingError{Reason: fmt.Sprintf("hidden units must be >= 1, got %d", hp.HiddenUnits)}
	case hp.BatchSize < 1:
		return &models.TrainingError{Reason: fmt.Sprintf("batch size must be >= 1, got %d", hp.BatchSize)}
	case hp.LearningRate <= 0:
		return &models.TrainingError{Reason: fmt.Sprintf("learning rate must be > 0, got %g", hp.LearningRate)}
	case ds.LookBack < 1:
		return &models.TrainingError{Reason: "dataset has no look-back", Err: models.ErrInvalidLookBack}
	case hp.LookBack != ds.LookBack:
		return &models.TrainingError{Reason: fmt.Sprintf("look-back %d does not match dataset windows of %d", hp.LookBack, ds.LookBack)}
	case ds.Len() == 0:
		return &models.TrainingError{Reason: "empty dataset", Err: &models.InsufficientDataError{N: 0, LookBack: ds.LookBack}}
	case len(ds.Inputs) != len(ds.Targets):
		return &models.TrainingError{Reason: fmt.Sprintf("%d windows for %d targets", len(ds.Inputs), len(ds.Targets))}
	}
	for i, w := range ds.Inputs {
		if len(w) != ds.LookBack {
			return &models.TrainingError{Reason: fmt.Sprintf("window %d has length %d, want %d", i, len(w), ds.LookBack)}
		}
	}
	return nil
}

// Model is a fitted LSTM regressor.
type Model struct {
	*params
	hidden int
	seed   int64
	loss   []float64
}

// Predict returns the model output for one window of normalized values.
func (m *Model) Predict(window []float64) float64 {
	if len(window) == 0 {
		return m.bd[0]
	}
	return forward(m.params, newWorkspace(m.hidden, len(window)), window)
}

// PredictAll evaluates every window of ds, in order.
func (m *Model) PredictAll(ds models.WindowDataset) []float64 {
	out := make([]float64, ds.Len())
	ws := newWorkspace(m.hidden, ds.LookBack)
	for i, w := range ds.Inputs {
		if len(w) != ds.LookBack {
			out[i] = m.Predict(w)
			continue
		}
		out[i] = forward(m.params, ws, w)
	}
	return out
}

// LossTrace returns the mean training loss of each epoch.
func (m *Model) LossTrace() []float64 {
	out := make([]float64, len(m.loss))
	copy(out, m.loss)
	return out
}

// Seed is the seed the run actually used.
func (m *Model) Seed() int64 { return m.seed }

var _ domsvc.SequenceTrainer = (*LSTMTrainer)(nil)
var _ domsvc.Predictor = (*Model)(nil)
