package repository

import (
	"context"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	applogger "SalesCast/pkg/logger"
)

// MessagePublisher is the subset of the Kafka producer used here.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// TrainingCompleted is the event emitted after a live training run.
type TrainingCompleted struct {
	RunID       string    `json:"run_id"`
	SessionID   string    `json:"session_id"`
	Epochs      int       `json:"epochs"`
	HiddenUnits int       `json:"hidden_units"`
	LookBack    int       `json:"look_back"`
	Samples     int       `json:"samples"`
	FinalLoss   float64   `json:"final_loss"`
	Loss        []float64 `json:"loss"`
	Forecasted  int       `json:"forecasted"`
	DurationMs  int64     `json:"duration_ms"`
	StartedAt   time.Time `json:"started_at"`
}

// KafkaRunPublisher publishes TrainingCompleted events keyed by session id.
type KafkaRunPublisher struct {
	p     MessagePublisher
	topic string
	l     *applogger.Logger
}

func NewKafkaRunPublisher(p MessagePublisher, topic string) *KafkaRunPublisher {
	return &KafkaRunPublisher{p: p, topic: topic}
}

// SetLogger injects a structured logger.
func (k *KafkaRunPublisher) SetLogger(l *applogger.Logger) { k.l = l }

func (k *KafkaRunPublisher) PublishRun(ctx context.Context, run *models.TrainingRun) error {
	ev := TrainingCompleted{
		RunID:       run.ID,
		SessionID:   run.SessionID,
		Epochs:      run.Params.Epochs,
		HiddenUnits: run.Params.HiddenUnits,
		LookBack:    run.Params.LookBack,
		Samples:     run.Samples,
		FinalLoss:   run.FinalLoss,
		Loss:        run.Loss,
		Forecasted:  run.Forecast.Count(),
		DurationMs:  run.Duration.Milliseconds(),
		StartedAt:   run.StartedAt,
	}
	if err := k.p.Publish(ctx, k.topic, []byte(run.SessionID), ev); err != nil {
		if k.l != nil {
			k.l.Error("publish training.completed failed",
				applogger.String("topic", k.topic),
				applogger.String("run_id", run.ID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("publish run: %w", err)
	}
	return nil
}

func (k *KafkaRunPublisher) Close() error { return k.p.Close() }

var _ domrepo.RunPublisher = (*KafkaRunPublisher)(nil)
