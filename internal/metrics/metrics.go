package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeNoData  = "no_data"
	OutcomeFailure = "failure"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RefreshTotal          *prometheus.CounterVec
	RefreshDuration       prometheus.Histogram
	ProviderRequestsTotal *prometheus.CounterVec
	FallbackDepth         prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		RefreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_refresh_total",
				Help: "Total number of rate cache refresh attempts",
			},
			[]string{"outcome"},
		),
		RefreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_refresh_duration_seconds",
				Help:    "Duration of full rate cache refreshes in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ProviderRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_requests_total",
				Help: "Total number of single-day provider lookups",
			},
			[]string{"outcome"},
		),
		FallbackDepth: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fallback_depth_days",
				Help:    "Number of days walked backward before a rate was found",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7},
			},
		),
	}
}

// The observe helpers are nil-safe so components can run without a
// collector wired in (tests).

func (m *Metrics) ObserveRefresh(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(outcome).Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CountProviderRequest(outcome string) {
	if m == nil {
		return
	}
	m.ProviderRequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFallbackDepth(days int) {
	if m == nil {
		return
	}
	m.FallbackDepth.Observe(float64(days))
}

// Middleware records request counts and durations per path/method.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.HTTPRequestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(ww.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(time.Since(start).Seconds())
	})
}
