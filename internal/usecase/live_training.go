package usecase

import (
	"context"
	"errors"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	domsvc "SalesCast/internal/domain/service"
	"SalesCast/internal/services/sequence"
	applogger "SalesCast/pkg/logger"

	"github.com/google/uuid"
)

// LiveTraining fits a sequence model on a session's actual sales and merges
// the in-sample forecast back into the session table as the live column.
type LiveTraining struct {
	sessions     domrepo.SessionStore
	trainer      domsvc.SequenceTrainer
	archive      domrepo.RunArchive
	publisher    domrepo.RunPublisher
	metrics      domrepo.Metrics
	logger       *applogger.Logger
	batchSize    int
	learningRate float64
	now          func() time.Time
}

// LiveTrainingOption configures LiveTraining.
type LiveTrainingOption func(*LiveTraining)

// WithRunSinks sets where completed runs are archived and announced.
func WithRunSinks(archive domrepo.RunArchive, publisher domrepo.RunPublisher) LiveTrainingOption {
	return func(lt *LiveTraining) {
		if archive != nil {
			lt.archive = archive
		}
		if publisher != nil {
			lt.publisher = publisher
		}
	}
}

// WithTrainingDefaults sets the batch size and learning rate used when a
// request leaves them zero.
func WithTrainingDefaults(batchSize int, learningRate float64) LiveTrainingOption {
	return func(lt *LiveTraining) {
		lt.batchSize = batchSize
		lt.learningRate = learningRate
	}
}

func WithTrainingLogger(l *applogger.Logger) LiveTrainingOption {
	return func(lt *LiveTraining) {
		if l != nil {
			lt.logger = l
		}
	}
}

func NewLiveTraining(
	sessions domrepo.SessionStore,
	trainer domsvc.SequenceTrainer,
	metrics domrepo.Metrics,
	opts ...LiveTrainingOption,
) *LiveTraining {
	lt := &LiveTraining{
		sessions:  sessions,
		trainer:   trainer,
		archive:   noopArchive{},
		publisher: noopPublisher{},
		metrics:   metrics,
		logger:    applogger.Nop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(lt)
	}
	return lt
}

// Train runs one blocking training on the session's actual sales. With
// look-back L over N rows the live column is absent for rows 0..L-1 and
// present for rows L..N-1. N <= L fails with a TrainingError wrapping
// InsufficientDataError and leaves the session unchanged.
func (lt *LiveTraining) Train(ctx context.Context, sessionID string, hp models.Hyperparams) (*models.LiveTrainingResult, error) {
	sess, err := lt.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if hp.BatchSize == 0 {
		hp.BatchSize = lt.batchSize
	}
	if hp.LearningRate == 0 {
		hp.LearningRate = lt.learningRate
	}

	started := lt.now()
	col, loss, samples, err := lt.fit(ctx, sess.Table.Actual, hp)
	if err != nil {
		lt.metrics.RecordTrainingRun("failed")
		lt.metrics.RecordError(trainingErrorKind(err))
		lt.logger.Warn("live training failed",
			applogger.String("session_id", sessionID),
			applogger.Int("rows", sess.Table.Len()),
			applogger.Int("look_back", hp.LookBack),
			applogger.Error(err),
		)
		return nil, err
	}

	sess.Table.SetLive(col)
	sess.UpdatedAt = lt.now()
	if err := lt.sessions.Save(ctx, sess); err != nil {
		lt.metrics.RecordError("session_store")
		return nil, err
	}

	run := models.TrainingRun{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Params:    hp,
		Loss:      loss,
		Samples:   samples,
		StartedAt: started,
		Duration:  lt.now().Sub(started),
		Forecast:  col,
	}
	if len(loss) > 0 {
		run.FinalLoss = loss[len(loss)-1]
	}
	lt.record(ctx, &run, sess.Table)

	return &models.LiveTrainingResult{
		Run:   run,
		Chart: *forecastChart(sess.Table, models.ModelLive),
	}, nil
}

// fit scales series to [0,1], trains on every window and returns the
// inverted predictions aligned to the series.
func (lt *LiveTraining) fit(ctx context.Context, series []float64, hp models.Hyperparams) (models.ForecastColumn, []float64, int, error) {
	var scaler sequence.MinMaxScaler
	scaled, err := scaler.FitTransform(series)
	if err != nil {
		return models.ForecastColumn{}, nil, 0, &models.TrainingError{
			Reason: "no actual sales to train on",
			Err:    &models.InsufficientDataError{N: 0, LookBack: hp.LookBack},
		}
	}
	ds, err := sequence.BuildWindows(scaled, hp.LookBack)
	if err != nil {
		return models.ForecastColumn{}, nil, 0, &models.TrainingError{Reason: "build windows", Err: err}
	}

	model, err := lt.trainer.Fit(ctx, ds, hp)
	if err != nil {
		return models.ForecastColumn{}, nil, 0, err
	}

	values := make([]models.Optional, len(series))
	for i, w := range ds.Inputs {
		values[i+ds.LookBack] = models.Some(scaler.InverseOne(model.Predict(w)))
	}
	return models.ForecastColumn{Present: true, Values: values}, model.LossTrace(), ds.Len(), nil
}

// record archives and announces the run. Sink failures are logged and
// counted; the training result stands.
func (lt *LiveTraining) record(ctx context.Context, run *models.TrainingRun, t *models.Table) {
	if err := lt.archive.SaveRun(ctx, run, t); err != nil {
		lt.metrics.RecordError("archive")
		lt.logger.Error("archive run failed", applogger.String("run_id", run.ID), applogger.Error(err))
	}
	if err := lt.publisher.PublishRun(ctx, run); err != nil {
		lt.metrics.RecordError("publish")
		lt.logger.Error("publish run failed", applogger.String("run_id", run.ID), applogger.Error(err))
	}

	lt.metrics.RecordTrainingRun("ok")
	lt.metrics.RecordTrainingLoss(run.FinalLoss)
	lt.metrics.RecordLatency("train", run.Duration.Seconds())
	lt.logger.Info("live training done",
		applogger.String("session_id", run.SessionID),
		applogger.String("run_id", run.ID),
		applogger.Int("epochs", run.Params.Epochs),
		applogger.Int("hidden_units", run.Params.HiddenUnits),
		applogger.Int("look_back", run.Params.LookBack),
		applogger.Int("forecasted", run.Forecast.Count()),
		applogger.Float64("final_loss", run.FinalLoss),
		applogger.Duration("duration_ms", run.Duration),
	)
}

func trainingErrorKind(err error) string {
	var insufficient *models.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "training_interrupted"
	default:
		return "training"
	}
}

type noopArchive struct{}

func (noopArchive) SaveRun(context.Context, *models.TrainingRun, *models.Table) error { return nil }

type noopPublisher struct{}

func (noopPublisher) PublishRun(context.Context, *models.TrainingRun) error { return nil }
func (noopPublisher) Close() error                                          { return nil }
