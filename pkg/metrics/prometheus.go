package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	trainingRuns *prometheus.CounterVec
	trainingLoss prometheus.Histogram
	rowsLoaded   *prometheus.CounterVec
	tableRows    prometheus.Gauge
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on reg (the default registry when nil).
// A second recorder on the same registry shares the first one's series.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Recorder{
		trainingRuns: Reuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salescast_training_runs_total",
				Help: "Live training runs by outcome",
			},
			[]string{"status"},
		)),
		trainingLoss: Reuse(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "salescast_training_final_loss",
				Help:    "Final epoch loss (MSE on normalized sales) of live runs",
				Buckets: prometheus.ExponentialBuckets(1e-4, 4, 8),
			},
		)),
		rowsLoaded: Reuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salescast_rows_loaded_total",
				Help: "Rows read from sales tables",
			},
			[]string{"source"},
		)),
		tableRows: Reuse(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "salescast_last_table_rows",
				Help: "Row count of the most recently loaded table",
			},
		)),
		errorsTotal: Reuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salescast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		)),
		latency: Reuse(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "salescast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)),
	}
}

// RecordTrainingRun counts a run by status (ok, rejected, failed).
func (r *Recorder) RecordTrainingRun(status string) {
	r.trainingRuns.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordTrainingLoss(loss float64) {
	r.trainingLoss.Observe(loss)
}

// RecordRowsLoaded records a loaded table; source is "file" or "upload".
func (r *Recorder) RecordRowsLoaded(source string, rows int) {
	r.rowsLoaded.WithLabelValues(source).Add(float64(rows))
	r.tableRows.Set(float64(rows))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
