package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	"SalesCast/internal/services/loader"
	applogger "SalesCast/pkg/logger"

	"github.com/google/uuid"
)

// PreviewRows is how many rows an upload preview returns.
const PreviewRows = 5

// Dashboard serves the read side of the dashboard: opening a session on the
// configured CSV, the forecast and trend charts, and the raw table.
type Dashboard struct {
	source   domrepo.TableSource
	sessions domrepo.SessionStore
	metrics  domrepo.Metrics
	dataPath string
	logger   *applogger.Logger
	now      func() time.Time
}

func NewDashboard(
	source domrepo.TableSource,
	sessions domrepo.SessionStore,
	metrics domrepo.Metrics,
	dataPath string,
	logger *applogger.Logger,
) *Dashboard {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Dashboard{
		source:   source,
		sessions: sessions,
		metrics:  metrics,
		dataPath: dataPath,
		logger:   logger,
		now:      time.Now,
	}
}

// OpenSession loads the configured file into a new session. A missing or
// malformed file creates nothing.
func (d *Dashboard) OpenSession(ctx context.Context) (*models.SessionSummary, error) {
	start := d.now()
	t, err := d.source.LoadFile(d.dataPath)
	if err != nil {
		d.metrics.RecordError(loadErrorKind(err))
		d.logger.Error("load table failed", applogger.String("path", d.dataPath), applogger.Error(err))
		return nil, err
	}

	now := d.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		Source:    d.dataPath,
		CreatedAt: now,
		UpdatedAt: now,
		Table:     t,
	}
	if err := d.sessions.Save(ctx, sess); err != nil {
		d.metrics.RecordError("session_store")
		return nil, err
	}

	d.metrics.RecordRowsLoaded("file", t.Len())
	d.metrics.RecordLatency("open_session", d.now().Sub(start).Seconds())
	d.logger.Info("session opened",
		applogger.String("session_id", sess.ID),
		applogger.Int("rows", t.Len()),
		applogger.Bool("date_synthesized", t.Provenance.DateSynthesized),
	)
	return summarize(sess), nil
}

// Summary describes the session's table and its available columns.
func (d *Dashboard) Summary(ctx context.Context, id string) (*models.SessionSummary, error) {
	sess, err := d.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(sess), nil
}

// ForecastChart overlays the selected model's column on actual sales. A
// missing column is not an error: the chart comes back unavailable with a
// warning and no series.
func (d *Dashboard) ForecastChart(ctx context.Context, id string, m models.ForecastModel) (*models.ForecastChart, error) {
	sess, err := d.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	chart := forecastChart(sess.Table, m)
	if !chart.Available {
		d.logger.Warn("forecast column missing",
			applogger.String("session_id", id),
			applogger.String("model", string(m)),
		)
	}
	return chart, nil
}

func (d *Dashboard) Trends(ctx context.Context, id string) (*models.TrendsChart, error) {
	sess, err := d.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return trendsChart(sess.Table), nil
}

// RawTable returns rows [offset, offset+limit) and the total row count.
func (d *Dashboard) RawTable(ctx context.Context, id string, offset, limit int) (*models.RawTable, int, error) {
	sess, err := d.sessions.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	t := sess.Table
	total := t.Len()
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	rows := make([][]string, 0, end-offset)
	for i := offset; i < end; i++ {
		rows = append(rows, t.Row(i))
	}
	return &models.RawTable{Header: t.Header(), Rows: rows}, total, nil
}

func (d *Dashboard) CloseSession(ctx context.Context, id string) error {
	if _, err := d.sessions.Get(ctx, id); err != nil {
		return err
	}
	if err := d.sessions.Delete(ctx, id); err != nil {
		return err
	}
	d.logger.Info("session closed", applogger.String("session_id", id))
	return nil
}

// PreviewUpload reads an uploaded CSV and returns its head. It never
// touches session state.
func (d *Dashboard) PreviewUpload(filename string, r io.Reader) (*models.UploadPreview, error) {
	f, err := loader.ReadFrame(r)
	if err != nil {
		d.metrics.RecordError("upload_malformed")
		d.logger.Warn("upload rejected", applogger.String("filename", filename), applogger.Error(err))
		return nil, &models.LoadError{Source: filename, Err: err}
	}
	d.metrics.RecordRowsLoaded("upload", f.Len())
	return &models.UploadPreview{
		Filename: filename,
		Columns:  append([]string(nil), f.Header...),
		Rows:     f.Len(),
		Head:     f.Head(PreviewRows),
	}, nil
}

func loadErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, models.ErrMissingColumn), errors.Is(err, models.ErrMalformed):
		return "malformed_file"
	default:
		return "load"
	}
}
