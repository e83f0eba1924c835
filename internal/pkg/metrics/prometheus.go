package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagsentry",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tagsentry",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// Scan metrics
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagsentry",
			Subsystem: "scan",
			Name:      "jobs_total",
			Help:      "Total number of scan jobs by terminal status",
		},
		[]string{"status"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tagsentry",
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Duration of a full account scan in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	resourcesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tagsentry",
			Subsystem: "scan",
			Name:      "resources_scanned_total",
			Help:      "Total number of resources processed by scans",
		},
	)

	violationsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagsentry",
			Subsystem: "compliance",
			Name:      "violations_detected_total",
			Help:      "Total number of tag policy violations detected",
		},
		[]string{"severity"},
	)

	resourcesReconciled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tagsentry",
			Subsystem: "reconcile",
			Name:      "resources_deleted_total",
			Help:      "Total number of out-of-scope resources deleted by reconciliation",
		},
	)
)

// RecordScanJob records a terminal scan job outcome
func RecordScanJob(status string, duration time.Duration, resources int) {
	scansTotal.WithLabelValues(status).Inc()
	scanDuration.Observe(duration.Seconds())
	resourcesScanned.Add(float64(resources))
}

// RecordViolation records a detected violation
func RecordViolation(severity string) {
	violationsDetected.WithLabelValues(severity).Inc()
}

// RecordReconciledResources records resources removed by reconciliation
func RecordReconciledResources(count int) {
	resourcesReconciled.Add(float64(count))
}

// Middleware instruments HTTP requests
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the prometheus metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
