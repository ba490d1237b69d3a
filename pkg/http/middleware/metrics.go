package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	applogger "SalesCast/pkg/logger"
	pkgmetrics "SalesCast/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Training requests block for the whole run, so the upper buckets reach minutes.
var durationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30, 60, 120, 300}

// HTTPMetrics holds per-route request collectors.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
	size     *prometheus.HistogramVec
}

// NewHTTPMetrics registers the collectors on reg. Collectors already
// registered by an earlier server are reused.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &HTTPMetrics{
		requests: pkgmetrics.Reuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salescast",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"})),
		duration: pkgmetrics.Reuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salescast",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   durationBuckets,
		}, []string{"route", "method", "class"})),
		inFlight: pkgmetrics.Reuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "salescast",
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}, []string{"route", "method"})),
		size: pkgmetrics.Reuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salescast",
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"route", "method"})),
	}
}

type routeKey struct{}

// RouteContext stores the matched echo route template on the request context
// so net/http middleware can label by route instead of raw path.
func RouteContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p := c.Path(); p != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(context.WithValue(req.Context(), routeKey{}, p)))
			}
			return next(c)
		}
	}
}

// Middleware records request metrics. 5xx responses are logged as errors
// and requests slower than slow as warnings.
func (m *HTTPMetrics) Middleware(l *applogger.Logger, slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, method := routeLabel(r), r.Method
			inFlight := m.inFlight.WithLabelValues(route, method)
			inFlight.Inc()
			defer inFlight.Dec()

			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			took := time.Since(start)

			m.requests.WithLabelValues(route, method, strconv.Itoa(rw.status)).Inc()
			m.duration.WithLabelValues(route, method, statusClass(rw.status)).Observe(took.Seconds())
			m.size.WithLabelValues(route, method).Observe(float64(rw.written))

			if l == nil {
				return
			}
			fields := []applogger.Field{
				applogger.String("route", route),
				applogger.String("method", method),
				applogger.Int("status", rw.status),
				applogger.Duration("duration", took),
				applogger.Int("bytes", rw.written),
			}
			switch {
			case rw.status >= http.StatusInternalServerError:
				l.Error("http request failed", fields...)
			case slow > 0 && took >= slow:
				l.Warn("http request slow", fields...)
			}
		})
	}
}

type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// routeLabel prefers the route template set by RouteContext. Unmatched
// requests share one label.
func routeLabel(r *http.Request) string {
	if s, ok := r.Context().Value(routeKey{}).(string); ok && s != "" {
		return s
	}
	return "unmatched"
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return strconv.Itoa(code/100) + "xx"
}
