// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	RESERVA_HOST="0.0.0.0"
//	RESERVA_PORT="8080"
//	RESERVA_HEALTH_PORT="9090"
//	RESERVA_READ_TIMEOUT="15s"
//	RESERVA_WRITE_TIMEOUT="15s"
//
// Database settings:
//
//	RESERVA_POSTGRES_URL="postgres://localhost/reserva"
//	RESERVA_POSTGRES_MAX_CONNS="25"
//
// Redis settings (ghost sessions):
//
//	RESERVA_REDIS_URL="localhost:6379"
//	RESERVA_REDIS_POOL_SIZE="10"
//	RESERVA_GHOST_SESSION_TTL="30m"
//
// Notification settings:
//
//	RESERVA_WEBHOOK_URL="https://hooks.example.com/reserva"
//	RESERVA_WEBHOOK_SECRET="..."
//	RESERVA_EMAIL_ENABLED="true"
//
// Retention settings:
//
//	RESERVA_CALL_LOG_MAX_AGE="2160h"
//	RESERVA_PURGE_SCHEDULE="0 4 * * *"
//
// Observability settings:
//
//	RESERVA_LOG_LEVEL="info"  # debug, info, warn, error
//	RESERVA_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/observability: Uses observability configuration
//   - pkg/impersonation: Uses ghost session configuration
package config
