// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled HTTP requests.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groqrelay_requests_total",
			Help: "Total number of HTTP requests handled by the relay.",
		},
		[]string{"path", "method", "status_code"},
	)

	// RequestDurationSeconds measures HTTP latency. Streaming completions run
	// for the lifetime of the stream, hence the wide upper buckets.
	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groqrelay_request_duration_seconds",
			Help:    "HTTP request latency for the relay in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"path", "method"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		RequestsTotal.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Inc()
		RequestDurationSeconds.
			WithLabelValues(r.URL.Path, r.Method).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher for streaming support.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
