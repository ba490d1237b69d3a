package metrics

import (
	pkgmetrics "SalesCast/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics holds per-endpoint latency and error vectors.
type DashboardMetrics struct {
	Latency *prometheus.HistogramVec
	Errors  *prometheus.CounterVec
}

// NewDashboardMetrics registers the vectors on reg, the default registry
// when nil.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DashboardMetrics{
		Latency: pkgmetrics.Reuse(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "salescast",
				Subsystem: "dashboard",
				Name:      "latency_seconds",
				Help:      "Latency of dashboard endpoints",
				Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5, 15, 60, 180},
			},
			[]string{"endpoint"},
		)),
		Errors: pkgmetrics.Reuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "salescast",
				Subsystem: "dashboard",
				Name:      "errors_total",
				Help:      "Errors by dashboard endpoint and code",
			},
			[]string{"endpoint", "code"},
		)),
	}
}
