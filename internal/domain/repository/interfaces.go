package repository

import (
	"context"
	"io"

	"SalesCast/internal/domain/models"
)

// TableSource loads the time series table from a path or a reader.
type TableSource interface {
	LoadFile(path string) (*models.Table, error)
	Parse(name string, r io.Reader) (*models.Table, error)
}

// SessionStore keeps per-user data contexts.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error) // models.ErrSessionNotFound when absent
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}

// RunArchive persists completed training runs.
type RunArchive interface {
	SaveRun(ctx context.Context, run *models.TrainingRun, table *models.Table) error
}

// RunPublisher announces completed training runs.
type RunPublisher interface {
	PublishRun(ctx context.Context, run *models.TrainingRun) error
	Close() error
}

type Metrics interface {
	RecordTrainingRun(status string)
	RecordTrainingLoss(loss float64)
	RecordRowsLoaded(source string, rows int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
