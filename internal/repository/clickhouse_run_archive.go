package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	pkgch "SalesCast/pkg/clickhouse"
	applogger "SalesCast/pkg/logger"
)

// RunArchiveSchema creates the archive tables.
var RunArchiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS training_runs (
        run_id       String,
        session_id   String,
        started_at   DateTime64(3),
        duration_ms  UInt64,
        epochs       UInt16,
        hidden_units UInt16,
        look_back    UInt16,
        samples      UInt32,
        final_loss   Float64
    ) ENGINE = MergeTree ORDER BY (started_at, run_id)`,
	`CREATE TABLE IF NOT EXISTS forecast_points (
        run_id   String,
        day      Date,
        actual   Float64,
        forecast Nullable(Float64)
    ) ENGINE = MergeTree ORDER BY (run_id, day)`,
}

// CHRunArchive implements RunArchive backed by ClickHouse.
type CHRunArchive struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHRunArchive(ch *pkgch.Client) *CHRunArchive {
	return &CHRunArchive{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHRunArchive) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHRunArchive) SaveRun(ctx context.Context, run *models.TrainingRun, table *models.Table) error {
	start := time.Now()
	const runQ = `
        INSERT INTO training_runs
            (run_id, session_id, started_at, duration_ms, epochs, hidden_units, look_back, samples, final_loss)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, runQ,
		run.ID, run.SessionID, run.StartedAt, uint64(run.Duration.Milliseconds()),
		uint16(run.Params.Epochs), uint16(run.Params.HiddenUnits), uint16(run.Params.LookBack),
		uint32(run.Samples), run.FinalLoss,
	); err != nil {
		s.logError("clickhouse save_run insert error", run, err)
		return fmt.Errorf("insert run: %w", err)
	}

	n, err := s.savePoints(ctx, run, table)
	if err != nil {
		s.logError("clickhouse save_run points error", run, err)
		return err
	}
	if s.l != nil {
		s.l.Info("clickhouse save_run ok",
			applogger.String("run_id", run.ID),
			applogger.Int("points", n),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHRunArchive) savePoints(ctx context.Context, run *models.TrainingRun, table *models.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecast_points (run_id, day, actual, forecast)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < table.Len(); i++ {
		var forecast *float64
		if i < len(run.Forecast.Values) && run.Forecast.Values[i].Valid {
			v := run.Forecast.Values[i].Value
			forecast = &v
		}
		if _, err := stmt.ExecContext(ctx, run.ID, table.Dates[i], table.Actual[i], forecast); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("append point %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return table.Len(), nil
}

func (s *CHRunArchive) logError(msg string, run *models.TrainingRun, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("run_id", run.ID),
		applogger.String("session_id", run.SessionID),
		applogger.Error(err),
	)
}

var _ domrepo.RunArchive = (*CHRunArchive)(nil)
