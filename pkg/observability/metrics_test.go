package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	t.Run("creates and registers all metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		if metrics == nil {
			t.Fatal("NewMetrics returned nil")
		}

		// Verify HTTP metrics are initialized
		if metrics.HTTPRequestsTotal == nil {
			t.Error("HTTPRequestsTotal is nil")
		}
		if metrics.HTTPRequestDuration == nil {
			t.Error("HTTPRequestDuration is nil")
		}
		if metrics.HTTPRequestSize == nil {
			t.Error("HTTPRequestSize is nil")
		}
		if metrics.HTTPResponseSize == nil {
			t.Error("HTTPResponseSize is nil")
		}

		// Verify gateway metrics are initialized
		if metrics.GatewayOperationsTotal == nil {
			t.Error("GatewayOperationsTotal is nil")
		}
		if metrics.GatewayOperationDuration == nil {
			t.Error("GatewayOperationDuration is nil")
		}
		if metrics.GatewayErrorsTotal == nil {
			t.Error("GatewayErrorsTotal is nil")
		}

		// Verify authorization and booking metrics are initialized
		if metrics.PermissionDenialsTotal == nil {
			t.Error("PermissionDenialsTotal is nil")
		}
		if metrics.BookingTransitionsTotal == nil {
			t.Error("BookingTransitionsTotal is nil")
		}
		if metrics.BookingConflictsTotal == nil {
			t.Error("BookingConflictsTotal is nil")
		}

		// Verify impersonation metrics are initialized
		if metrics.GhostSessionsStarted == nil {
			t.Error("GhostSessionsStarted is nil")
		}
		if metrics.GhostSessionsActive == nil {
			t.Error("GhostSessionsActive is nil")
		}

		// Verify notification metrics are initialized
		if metrics.NotificationsTotal == nil {
			t.Error("NotificationsTotal is nil")
		}

		// Verify connection metrics are initialized
		if metrics.DBConnectionsActive == nil {
			t.Error("DBConnectionsActive is nil")
		}
		if metrics.DBConnectionsIdle == nil {
			t.Error("DBConnectionsIdle is nil")
		}
		if metrics.RedisConnectionsActive == nil {
			t.Error("RedisConnectionsActive is nil")
		}
	})

	t.Run("metrics are registered with registry", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		// Initialize some metrics to make them appear in Gather()
		metrics.HTTPRequestsTotal.WithLabelValues("GET", "/test", "200").Add(0)
		metrics.GatewayOperationsTotal.WithLabelValues("booking", "create", "success").Add(0)
		metrics.PermissionDenialsTotal.WithLabelValues("mutateBookings", "starter").Add(0)
		metrics.BookingTransitionsTotal.WithLabelValues("pending", "confirmed").Add(0)
		metrics.DBConnectionsActive.Set(0)
		metrics.RedisConnectionsActive.Set(0)
		metrics.GhostSessionsActive.Set(0)

		// Gather metrics from registry to verify registration
		families, err := registry.Gather()
		if err != nil {
			t.Fatalf("Failed to gather metrics: %v", err)
		}

		if len(families) == 0 {
			t.Error("No metrics registered in registry")
		}

		// Verify some key metrics are present
		metricNames := make(map[string]bool)
		for _, family := range families {
			metricNames[family.GetName()] = true
		}

		expectedMetrics := []string{
			"reserva_http_requests_total",
			"reserva_gateway_operations_total",
			"reserva_permission_denials_total",
			"reserva_booking_transitions_total",
			"reserva_db_connections_active",
			"reserva_redis_connections_active",
			"reserva_ghost_sessions_active",
		}

		for _, name := range expectedMetrics {
			if !metricNames[name] {
				t.Errorf("Expected metric %s not found in registry", name)
			}
		}
	})

	t.Run("panics on duplicate registration", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)

		// Attempting to register again should panic
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic on duplicate registration, but didn't panic")
			}
		}()

		NewMetrics(registry)
	})
}

func TestMetrics_HTTPMetrics(t *testing.T) {
	t.Run("increment HTTP request counter", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/test", "200").Inc()

		count := testutil.CollectAndCount(metrics.HTTPRequestsTotal)
		if count != 1 {
			t.Errorf("Expected 1 metric, got %d", count)
		}

		// Verify the value
		expected := `
# HELP reserva_http_requests_total Total number of HTTP requests
# TYPE reserva_http_requests_total counter
reserva_http_requests_total{method="GET",path="/api/test",status="200"} 1
`
		if err := testutil.CollectAndCompare(metrics.HTTPRequestsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})

	t.Run("observe HTTP request duration", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.HTTPRequestDuration.WithLabelValues("POST", "/api/create").Observe(0.5)
		metrics.HTTPRequestDuration.WithLabelValues("POST", "/api/create").Observe(1.5)

		count := testutil.CollectAndCount(metrics.HTTPRequestDuration)
		if count != 1 {
			t.Errorf("Expected 1 metric family, got %d", count)
		}
	})

	t.Run("observe HTTP response size", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.HTTPResponseSize.WithLabelValues("GET", "/api/data").Observe(4096)

		count := testutil.CollectAndCount(metrics.HTTPResponseSize)
		if count != 1 {
			t.Errorf("Expected 1 metric family, got %d", count)
		}
	})
}

func TestMetrics_GatewayMetrics(t *testing.T) {
	t.Run("record gateway operations", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.GatewayOperationsTotal.WithLabelValues("booking", "create", "success").Inc()
		metrics.GatewayOperationsTotal.WithLabelValues("stock_item", "update", "success").Inc()

		expected := `
# HELP reserva_gateway_operations_total Total number of data gateway operations
# TYPE reserva_gateway_operations_total counter
reserva_gateway_operations_total{entity="booking",operation="create",status="success"} 1
reserva_gateway_operations_total{entity="stock_item",operation="update",status="success"} 1
`
		if err := testutil.CollectAndCompare(metrics.GatewayOperationsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})

	t.Run("observe gateway operation duration", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.GatewayOperationDuration.WithLabelValues("booking", "list").Observe(0.01)

		count := testutil.CollectAndCount(metrics.GatewayOperationDuration)
		if count != 1 {
			t.Errorf("Expected 1 metric family, got %d", count)
		}
	})

	t.Run("record gateway errors", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.GatewayErrorsTotal.WithLabelValues("booking", "update", "conflict").Inc()

		expected := `
# HELP reserva_gateway_errors_total Total number of data gateway errors
# TYPE reserva_gateway_errors_total counter
reserva_gateway_errors_total{entity="booking",error_type="conflict",operation="update"} 1
`
		if err := testutil.CollectAndCompare(metrics.GatewayErrorsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})
}

func TestMetrics_AuthorizationMetrics(t *testing.T) {
	t.Run("record permission denials by capability and tier", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.PermissionDenialsTotal.WithLabelValues("mutateBookings", "starter").Inc()
		metrics.PermissionDenialsTotal.WithLabelValues("exportCallLogs", "pro").Inc()

		expected := `
# HELP reserva_permission_denials_total Total number of capability checks that denied
# TYPE reserva_permission_denials_total counter
reserva_permission_denials_total{capability="exportCallLogs",tier="pro"} 1
reserva_permission_denials_total{capability="mutateBookings",tier="starter"} 1
`
		if err := testutil.CollectAndCompare(metrics.PermissionDenialsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})
}

func TestMetrics_BookingMetrics(t *testing.T) {
	t.Run("record booking transitions", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.BookingTransitionsTotal.WithLabelValues("pending", "confirmed").Inc()
		metrics.BookingTransitionsTotal.WithLabelValues("confirmed", "cancelled").Inc()

		expected := `
# HELP reserva_booking_transitions_total Total number of booking status transitions
# TYPE reserva_booking_transitions_total counter
reserva_booking_transitions_total{from="confirmed",to="cancelled"} 1
reserva_booking_transitions_total{from="pending",to="confirmed"} 1
`
		if err := testutil.CollectAndCompare(metrics.BookingTransitionsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})

	t.Run("record version conflicts", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.BookingConflictsTotal.Inc()
		metrics.BookingConflictsTotal.Inc()

		expected := `
# HELP reserva_booking_conflicts_total Total number of optimistic version conflicts on bookings
# TYPE reserva_booking_conflicts_total counter
reserva_booking_conflicts_total 2
`
		if err := testutil.CollectAndCompare(metrics.BookingConflictsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})
}

func TestMetrics_ImpersonationMetrics(t *testing.T) {
	t.Run("track ghost sessions", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.GhostSessionsStarted.Inc()
		metrics.GhostSessionsActive.Set(3)

		expected := `
# HELP reserva_ghost_sessions_started_total Total number of impersonation sessions started
# TYPE reserva_ghost_sessions_started_total counter
reserva_ghost_sessions_started_total 1
`
		if err := testutil.CollectAndCompare(metrics.GhostSessionsStarted, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}

		expected = `
# HELP reserva_ghost_sessions_active Number of currently live impersonation sessions
# TYPE reserva_ghost_sessions_active gauge
reserva_ghost_sessions_active 3
`
		if err := testutil.CollectAndCompare(metrics.GhostSessionsActive, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})
}

func TestMetrics_NotificationMetrics(t *testing.T) {
	t.Run("record notification deliveries by sink and status", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.NotificationsTotal.WithLabelValues("webhook", "success").Inc()
		metrics.NotificationsTotal.WithLabelValues("webhook", "failure").Inc()
		metrics.NotificationsTotal.WithLabelValues("email", "success").Inc()

		expected := `
# HELP reserva_notifications_total Total number of notification deliveries
# TYPE reserva_notifications_total counter
reserva_notifications_total{sink="email",status="success"} 1
reserva_notifications_total{sink="webhook",status="failure"} 1
reserva_notifications_total{sink="webhook",status="success"} 1
`
		if err := testutil.CollectAndCompare(metrics.NotificationsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})
}

func TestMetrics_ConnectionMetrics(t *testing.T) {
	t.Run("set database connections", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.DBConnectionsActive.Set(10)
		metrics.DBConnectionsIdle.Set(5)

		// Test increment and decrement
		metrics.DBConnectionsActive.Inc()
		metrics.DBConnectionsIdle.Dec()

		expected := `
# HELP reserva_db_connections_active Number of active database connections
# TYPE reserva_db_connections_active gauge
reserva_db_connections_active 11
`
		if err := testutil.CollectAndCompare(metrics.DBConnectionsActive, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})

	t.Run("set redis connections", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.RedisConnectionsActive.Set(8)

		expected := `
# HELP reserva_redis_connections_active Number of active Redis connections
# TYPE reserva_redis_connections_active gauge
reserva_redis_connections_active 8
`
		if err := testutil.CollectAndCompare(metrics.RedisConnectionsActive, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})
}

func TestResponseWriter(t *testing.T) {
	t.Run("captures status code", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := &responseWriter{
			ResponseWriter: recorder,
			statusCode:     http.StatusOK,
		}

		rw.WriteHeader(http.StatusCreated)

		if rw.statusCode != http.StatusCreated {
			t.Errorf("Expected status code %d, got %d", http.StatusCreated, rw.statusCode)
		}

		if recorder.Code != http.StatusCreated {
			t.Errorf("Expected recorder status code %d, got %d", http.StatusCreated, recorder.Code)
		}
	})

	t.Run("captures bytes written", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := &responseWriter{
			ResponseWriter: recorder,
			statusCode:     http.StatusOK,
		}

		data := []byte("Hello, World!")
		n, err := rw.Write(data)

		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}

		if n != len(data) {
			t.Errorf("Expected %d bytes written, got %d", len(data), n)
		}

		if rw.bytesWritten != len(data) {
			t.Errorf("Expected %d bytes tracked, got %d", len(data), rw.bytesWritten)
		}
	})

	t.Run("accumulates bytes across multiple writes", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := &responseWriter{
			ResponseWriter: recorder,
			statusCode:     http.StatusOK,
		}

		rw.Write([]byte("Hello, "))
		rw.Write([]byte("World!"))

		expected := len("Hello, ") + len("World!")
		if rw.bytesWritten != expected {
			t.Errorf("Expected %d bytes written, got %d", expected, rw.bytesWritten)
		}
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("records HTTP metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		middleware := HTTPMetricsMiddleware(metrics)
		wrappedHandler := middleware(handler)

		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		wrappedHandler.ServeHTTP(rec, req)

		// Verify counter was incremented
		expected := `
# HELP reserva_http_requests_total Total number of HTTP requests
# TYPE reserva_http_requests_total counter
reserva_http_requests_total{method="GET",path="/test",status="200"} 1
`
		if err := testutil.CollectAndCompare(metrics.HTTPRequestsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected counter value: %v", err)
		}

		// Verify duration was recorded
		count := testutil.CollectAndCount(metrics.HTTPRequestDuration)
		if count != 1 {
			t.Errorf("Expected 1 duration metric, got %d", count)
		}

		// Verify response size was recorded
		count = testutil.CollectAndCount(metrics.HTTPResponseSize)
		if count != 1 {
			t.Errorf("Expected 1 response size metric, got %d", count)
		}
	})

	t.Run("records different status codes", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		testCases := []struct {
			statusCode int
			path       string
		}{
			{http.StatusOK, "/ok"},
			{http.StatusNotFound, "/notfound"},
			{http.StatusInternalServerError, "/error"},
		}

		middleware := HTTPMetricsMiddleware(metrics)

		for _, tc := range testCases {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			})

			wrappedHandler := middleware(handler)
			req := httptest.NewRequest("GET", tc.path, nil)
			rec := httptest.NewRecorder()

			wrappedHandler.ServeHTTP(rec, req)
		}

		// Verify all status codes were recorded
		count := testutil.CollectAndCount(metrics.HTTPRequestsTotal)
		if count != 3 {
			t.Errorf("Expected 3 metrics, got %d", count)
		}
	})

	t.Run("records request size with content length", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		middleware := HTTPMetricsMiddleware(metrics)
		wrappedHandler := middleware(handler)

		body := strings.NewReader("test body content")
		req := httptest.NewRequest("POST", "/upload", body)
		req.ContentLength = int64(body.Len())
		rec := httptest.NewRecorder()

		wrappedHandler.ServeHTTP(rec, req)

		// Verify request size was recorded
		count := testutil.CollectAndCount(metrics.HTTPRequestSize)
		if count != 1 {
			t.Errorf("Expected 1 request size metric, got %d", count)
		}
	})

	t.Run("skips request size when content length is 0", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		middleware := HTTPMetricsMiddleware(metrics)
		wrappedHandler := middleware(handler)

		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		wrappedHandler.ServeHTTP(rec, req)

		// Request size should not be recorded for GET without body
		count := testutil.CollectAndCount(metrics.HTTPRequestSize)
		if count != 0 {
			t.Errorf("Expected 0 request size metrics, got %d", count)
		}
	})

	t.Run("measures request duration", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(10 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		})

		middleware := HTTPMetricsMiddleware(metrics)
		wrappedHandler := middleware(handler)

		req := httptest.NewRequest("GET", "/slow", nil)
		rec := httptest.NewRecorder()

		start := time.Now()
		wrappedHandler.ServeHTTP(rec, req)
		elapsed := time.Since(start)

		if elapsed < 10*time.Millisecond {
			t.Error("Expected handler to take at least 10ms")
		}

		// Verify duration was recorded
		count := testutil.CollectAndCount(metrics.HTTPRequestDuration)
		if count != 1 {
			t.Errorf("Expected 1 duration metric, got %d", count)
		}
	})

	t.Run("handles multiple requests", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		middleware := HTTPMetricsMiddleware(metrics)
		wrappedHandler := middleware(handler)

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			rec := httptest.NewRecorder()
			wrappedHandler.ServeHTTP(rec, req)
		}

		expected := `
# HELP reserva_http_requests_total Total number of HTTP requests
# TYPE reserva_http_requests_total counter
reserva_http_requests_total{method="GET",path="/test",status="200"} 5
`
		if err := testutil.CollectAndCompare(metrics.HTTPRequestsTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected counter value: %v", err)
		}
	})
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	t.Run("registers metrics endpoint", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		// Set some metric values
		metrics.GhostSessionsActive.Set(2)
		metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api", "200").Inc()

		mux := http.NewServeMux()
		RegisterMetricsEndpoint(mux, registry)

		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, rec.Code)
		}

		body := rec.Body.String()

		// Verify metrics are exposed
		if !strings.Contains(body, "reserva_ghost_sessions_active 2") {
			t.Error("Expected reserva_ghost_sessions_active value to be 2")
		}

		if !strings.Contains(body, "reserva_http_requests_total") {
			t.Error("Expected reserva_http_requests_total in metrics output")
		}
	})

	t.Run("metrics endpoint returns prometheus format", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)

		mux := http.NewServeMux()
		RegisterMetricsEndpoint(mux, registry)

		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		contentType := rec.Header().Get("Content-Type")
		if !strings.Contains(contentType, "text/plain") {
			t.Errorf("Expected Content-Type to contain text/plain, got %s", contentType)
		}

		body := rec.Body.String()

		// Verify Prometheus format markers
		if !strings.Contains(body, "# HELP") {
			t.Error("Expected # HELP lines in output")
		}

		if !strings.Contains(body, "# TYPE") {
			t.Error("Expected # TYPE lines in output")
		}
	})

	t.Run("metrics endpoint only responds to /metrics path", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)

		mux := http.NewServeMux()
		RegisterMetricsEndpoint(mux, registry)

		req := httptest.NewRequest("GET", "/other", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status code %d for non-metrics path, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestMetrics_Integration(t *testing.T) {
	t.Run("full workflow with middleware and exposition", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		// Create an application handler
		appHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"bookings":[]}`))
		})

		// Wrap with metrics middleware
		middleware := HTTPMetricsMiddleware(metrics)
		wrappedHandler := middleware(appHandler)

		// Create mux and register both app and metrics endpoints
		mux := http.NewServeMux()
		mux.Handle("/api/v1/bookings", wrappedHandler)
		RegisterMetricsEndpoint(mux, registry)

		// Make a request to the app
		req := httptest.NewRequest("GET", "/api/v1/bookings", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, rec.Code)
		}

		// Fetch metrics
		metricsReq := httptest.NewRequest("GET", "/metrics", nil)
		metricsRec := httptest.NewRecorder()
		mux.ServeHTTP(metricsRec, metricsReq)

		if metricsRec.Code != http.StatusOK {
			t.Errorf("Expected metrics status code %d, got %d", http.StatusOK, metricsRec.Code)
		}

		body := metricsRec.Body.String()

		// Verify the app request was recorded in metrics
		if !strings.Contains(body, "reserva_http_requests_total") {
			t.Error("Expected reserva_http_requests_total in metrics")
		}

		if !strings.Contains(body, `method="GET"`) {
			t.Error("Expected GET method label in metrics")
		}

		if !strings.Contains(body, `path="/api/v1/bookings"`) {
			t.Error("Expected /api/v1/bookings path label in metrics")
		}

		if !strings.Contains(body, `status="200"`) {
			t.Error("Expected 200 status label in metrics")
		}
	})

	t.Run("records multiple label combinations", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		// Record multiple gateway operations
		metrics.GatewayOperationsTotal.WithLabelValues("booking", "create", "success").Add(10)
		metrics.GatewayOperationsTotal.WithLabelValues("booking", "update", "success").Add(5)
		metrics.GatewayOperationsTotal.WithLabelValues("promo", "list", "success").Add(20)
		metrics.GatewayOperationsTotal.WithLabelValues("booking", "update", "error").Add(2)

		mux := http.NewServeMux()
		RegisterMetricsEndpoint(mux, registry)

		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		body := rec.Body.String()

		// Verify all label combinations are present
		expectedPatterns := []string{
			`reserva_gateway_operations_total{entity="booking",operation="create",status="success"} 10`,
			`reserva_gateway_operations_total{entity="booking",operation="update",status="success"} 5`,
			`reserva_gateway_operations_total{entity="promo",operation="list",status="success"} 20`,
			`reserva_gateway_operations_total{entity="booking",operation="update",status="error"} 2`,
		}

		for _, pattern := range expectedPatterns {
			if !strings.Contains(body, pattern) {
				t.Errorf("Expected pattern %q not found in metrics output", pattern)
			}
		}
	})
}

func BenchmarkHTTPMetricsMiddleware(b *testing.B) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	middleware := HTTPMetricsMiddleware(metrics)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest("GET", "/test", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		wrappedHandler.ServeHTTP(rec, req)
	}
}

func BenchmarkMetricsCollection(b *testing.B) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		metrics.HTTPRequestsTotal.WithLabelValues("GET", "/test", "200").Inc()
		metrics.HTTPRequestDuration.WithLabelValues("GET", "/test").Observe(0.1)
		metrics.GatewayOperationsTotal.WithLabelValues("booking", "list", "success").Inc()
		metrics.BookingTransitionsTotal.WithLabelValues("pending", "confirmed").Inc()
	}
}
