// Package metrics exposes Prometheus collectors for the HTTP server, the
// ephemeris provider, scans and refresh runs.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-skywatch/internal/ephem"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skywatch_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	ephemerisFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_ephemeris_fetches_total",
			Help: "Ephemeris fetches by provider and result.",
		},
		[]string{"provider", "result"},
	)

	ephemerisFetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skywatch_ephemeris_fetch_duration_seconds",
			Help:    "Ephemeris fetch duration in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	ephemerisSamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_ephemeris_samples_total",
			Help: "Ephemeris samples received by provider.",
		},
		[]string{"provider"},
	)

	scanDaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_scan_days_total",
			Help: "Dates judged by visibility scans, by outcome.",
		},
		[]string{"outcome"},
	)

	refreshRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_refresh_runs_total",
			Help: "Refresh runs by result.",
		},
		[]string{"result"},
	)

	refreshSamples = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skywatch_refresh_last_samples",
			Help: "Samples stored by the last refresh run.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(ephemerisFetchesTotal)
	prometheus.MustRegister(ephemerisFetchSeconds)
	prometheus.MustRegister(ephemerisSamplesTotal)
	prometheus.MustRegister(scanDaysTotal)
	prometheus.MustRegister(refreshRunsTotal)
	prometheus.MustRegister(refreshSamples)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// knownRoutes are reported under their own path label; anything else is
// "other" to bound label cardinality.
var knownRoutes = map[string]bool{
	"/":                         true,
	"/healthz":                  true,
	"/metrics":                  true,
	"/api/v1/visibility":        true,
	"/api/v1/scan":              true,
	"/api/v1/scans":             true,
	"/api/v1/approach":          true,
	"/api/v1/meteor_showers":    true,
	"/api/v1/shower_visibility": true,
	"/api/v1/oppositions":       true,
	"/api/v1/sun":               true,
	"/api/v1/moon":              true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}

// ObserveScanDay counts one judged date. outcome is "visible",
// "not_visible" or "error".
func ObserveScanDay(outcome string) {
	scanDaysTotal.WithLabelValues(outcome).Inc()
}

// ObserveRefresh records the result of a refresh run.
func ObserveRefresh(samples int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	refreshRunsTotal.WithLabelValues(result).Inc()
	refreshSamples.Set(float64(samples))
}

// instrumentedProvider counts and times the fetches of a wrapped provider.
type instrumentedProvider struct {
	next ephem.Provider
}

// InstrumentProvider wraps p so every Fetch is recorded.
func InstrumentProvider(p ephem.Provider) ephem.Provider {
	return instrumentedProvider{next: p}
}

func (p instrumentedProvider) Name() string { return p.next.Name() }

func (p instrumentedProvider) Fetch(ctx context.Context, body ephem.Body, start time.Time, days int) ([]ephem.Sample, error) {
	name := p.next.Name()
	t0 := time.Now()
	samples, err := p.next.Fetch(ctx, body, start, days)
	ephemerisFetchSeconds.WithLabelValues(name).Observe(time.Since(t0).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	ephemerisFetchesTotal.WithLabelValues(name, result).Inc()
	ephemerisSamplesTotal.WithLabelValues(name).Add(float64(len(samples)))
	return samples, err
}
