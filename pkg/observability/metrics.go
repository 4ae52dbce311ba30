package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Gateway metrics
	GatewayOperationsTotal   *prometheus.CounterVec
	GatewayOperationDuration *prometheus.HistogramVec
	GatewayErrorsTotal       *prometheus.CounterVec

	// Authorization metrics
	PermissionDenialsTotal *prometheus.CounterVec

	// Booking metrics
	BookingTransitionsTotal *prometheus.CounterVec
	BookingConflictsTotal   prometheus.Counter

	// Impersonation metrics
	GhostSessionsStarted prometheus.Counter
	GhostSessionsActive  prometheus.Gauge

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Redis metrics
	RedisConnectionsActive prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reserva_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reserva_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reserva_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reserva_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		// Gateway metrics
		GatewayOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reserva_gateway_operations_total",
				Help: "Total number of data gateway operations",
			},
			[]string{"entity", "operation", "status"},
		),
		GatewayOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reserva_gateway_operation_duration_seconds",
				Help:    "Data gateway operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		GatewayErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reserva_gateway_errors_total",
				Help: "Total number of data gateway errors",
			},
			[]string{"entity", "operation", "error_type"},
		),

		// Authorization metrics
		PermissionDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reserva_permission_denials_total",
				Help: "Total number of capability checks that denied",
			},
			[]string{"capability", "tier"},
		),

		// Booking metrics
		BookingTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reserva_booking_transitions_total",
				Help: "Total number of booking status transitions",
			},
			[]string{"from", "to"},
		),
		BookingConflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reserva_booking_conflicts_total",
				Help: "Total number of optimistic version conflicts on bookings",
			},
		),

		// Impersonation metrics
		GhostSessionsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reserva_ghost_sessions_started_total",
				Help: "Total number of impersonation sessions started",
			},
		),
		GhostSessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "reserva_ghost_sessions_active",
				Help: "Number of currently live impersonation sessions",
			},
		),

		// Notification metrics
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reserva_notifications_total",
				Help: "Total number of notification deliveries",
			},
			[]string{"sink", "status"},
		),

		// Database metrics
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "reserva_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "reserva_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		// Redis metrics
		RedisConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "reserva_redis_connections_active",
				Help: "Number of active Redis connections",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSize,
		m.HTTPResponseSize,
		m.GatewayOperationsTotal,
		m.GatewayOperationDuration,
		m.GatewayErrorsTotal,
		m.PermissionDenialsTotal,
		m.BookingTransitionsTotal,
		m.BookingConflictsTotal,
		m.GhostSessionsStarted,
		m.GhostSessionsActive,
		m.NotificationsTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.RedisConnectionsActive,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Record request size
			if r.ContentLength > 0 {
				metrics.HTTPRequestSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(r.ContentLength))
			}

			// Serve the request
			next.ServeHTTP(rw, r)

			// Record metrics
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
