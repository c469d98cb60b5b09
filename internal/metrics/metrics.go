// Package metrics provides Prometheus metrics for the Doja API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doja_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doja_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Upload store metrics
	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doja_upload_bytes_total",
			Help: "Total bytes written through upload endpoints",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doja_uploads_total",
			Help: "Total number of upload operations",
		},
		[]string{"status"},
	)

	storeFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doja_store_files",
			Help: "Number of files in the upload root",
		},
	)

	storeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doja_store_bytes",
			Help: "Total bytes held by the upload root",
		},
	)

	// Command interpreter metrics
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doja_commands_total",
			Help: "Total interpreted commands",
		},
		[]string{"verb", "status"},
	)

	// Search proxy metrics
	searchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doja_search_requests_total",
			Help: "Total search proxy requests",
		},
		[]string{"status"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "doja_search_duration_seconds",
			Help:    "Upstream search request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Auth metrics
	authRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doja_auth_rejections_total",
			Help: "Total requests rejected by the access-key check",
		},
	)

	// SSE metrics
	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doja_sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	sseEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doja_sse_events_total",
			Help: "Total SSE events published",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpload records an upload operation.
func RecordUpload(bytes int64, success bool) {
	uploadBytesTotal.Add(float64(bytes))
	status := "success"
	if !success {
		status = "error"
	}
	uploadsTotal.WithLabelValues(status).Inc()
}

// SetStoreUsage sets the current upload-root file count and byte usage.
func SetStoreUsage(files int, bytes int64) {
	storeFiles.Set(float64(files))
	storeBytes.Set(float64(bytes))
}

// RecordCommand records an interpreted command.
func RecordCommand(verb, status string) {
	commandsTotal.WithLabelValues(verb, status).Inc()
}

// RecordSearch records a search proxy request.
func RecordSearch(duration time.Duration, success bool) {
	searchDuration.Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	searchRequestsTotal.WithLabelValues(status).Inc()
}

// RecordAuthRejection records an access-key rejection.
func RecordAuthRejection() {
	authRejectionsTotal.Inc()
}

// SetSSEConnectionsActive sets the number of active SSE connections.
func SetSSEConnectionsActive(count int64) {
	sseConnectionsActive.Set(float64(count))
}

// RecordSSEEvent records an SSE event publication.
func RecordSSEEvent(eventType string) {
	sseEventsTotal.WithLabelValues(eventType).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
