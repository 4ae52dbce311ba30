// Package observability provides structured logging, Prometheus metrics, and health checks.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health probes, panic recovery, and graceful shutdown.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.LevelInfo)
//	logger.Info("Server started", "port", 8080)
//
// Context-aware logging:
//
//	logger.WithField("request_id", reqID).Error("Request failed", err)
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/bookings", "200").Inc()
//	metrics.BookingTransitionsTotal.WithLabelValues("pending", "confirmed").Inc()
//
// Gauges:
//
//	metrics.GhostSessionsActive.Set(float64(activeSessions))
//	metrics.DBConnectionsActive.Set(float64(db.Stats().InUse))
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	status := checker.Check(ctx)
//
// The checker exposes liveness and readiness probes over Postgres and Redis.
// Redis being down degrades the service rather than failing readiness, since
// only impersonation sessions depend on it.
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/middleware: Request logging middleware
package observability
