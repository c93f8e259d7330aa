package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Conversion metrics
	conversionsTotal   *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	actionsTotal       prometheus.Counter

	// Library metrics
	libraryOperationsTotal *prometheus.CounterVec
	libraryEntries         prometheus.Gauge

	authRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siliconv_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "siliconv_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "siliconv_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siliconv_conversions_total",
				Help: "Total number of replay conversions by source format",
			},
			[]string{"source_format", "status"},
		),

		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "siliconv_conversion_duration_seconds",
				Help:    "Replay conversion duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source_format"},
		),

		actionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "siliconv_actions_converted_total",
				Help: "Total number of actions read from converted replays",
			},
		),

		libraryOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siliconv_library_operations_total",
				Help: "Total number of library operations",
			},
			[]string{"operation", "status"},
		),

		libraryEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "siliconv_library_entries",
				Help: "Number of replays stored in the library",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siliconv_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}
}

func statusLabel(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordConversion records a decode of a replay in sourceFormat. Failed
// decodes are labelled "unknown" since the format is not known.
func (m *Metrics) RecordConversion(sourceFormat string, success bool, actions int, duration time.Duration) {
	m.conversionsTotal.WithLabelValues(sourceFormat, statusLabel(success)).Inc()
	m.conversionDuration.WithLabelValues(sourceFormat).Observe(duration.Seconds())
	if success {
		m.actionsTotal.Add(float64(actions))
	}
}

// RecordLibraryOperation records a library operation
func (m *Metrics) RecordLibraryOperation(operation string, success bool) {
	m.libraryOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
}

// SetLibraryEntries updates the library size gauge
func (m *Metrics) SetLibraryEntries(n int) {
	m.libraryEntries.Set(float64(n))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequestsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
