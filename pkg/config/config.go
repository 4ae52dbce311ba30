package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reservahq/reserva/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Auth configuration (principal bearer tokens)
	Auth AuthConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (ghost sessions, rate limiting)
	Redis RedisConfig

	// Impersonation configuration
	Impersonation ImpersonationConfig

	// Notification configuration
	Notifications NotificationConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Retention configuration
	Retention RetentionConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AuthConfig holds principal bearer token settings
type AuthConfig struct {
	// TokenSecret signs and verifies principal bearer tokens
	TokenSecret string
}

// DatabaseConfig holds postgres settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig holds redis settings
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// ImpersonationConfig holds ghost session settings
type ImpersonationConfig struct {
	SessionTTL time.Duration
}

// NotificationConfig holds outbound notification settings
type NotificationConfig struct {
	WebhookURL    string
	WebhookSecret string
	EmailEnabled  bool
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Distributed shares counters through Redis so limits hold across
	// instances. When false, each instance keeps its own in-memory buckets.
	Distributed bool
}

// RetentionConfig holds data retention settings
type RetentionConfig struct {
	// CallLogMaxAge bounds how long intake call records are kept
	CallLogMaxAge time.Duration
	// PurgeSchedule is a cron expression for the retention job
	PurgeSchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Auth:          loadAuthConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		Impersonation: loadImpersonationConfig(),
		Notifications: loadNotificationConfig(),
		RateLimit:     loadRateLimitConfig(),
		Retention:     loadRetentionConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("RESERVA_HOST", "0.0.0.0"),
		Port:            getEnv("RESERVA_PORT", "8080"),
		ReadTimeout:     getEnvDuration("RESERVA_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("RESERVA_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("RESERVA_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("RESERVA_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("RESERVA_HEALTH_PORT", "9090"),
	}
}

// loadAuthConfig loads auth configuration from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		TokenSecret: getEnv("RESERVA_AUTH_SECRET", ""),
	}
}

// loadDatabaseConfig loads postgres configuration from environment
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:          getEnv("RESERVA_POSTGRES_URL", ""),
		MaxOpenConns: getEnvInt("RESERVA_POSTGRES_MAX_CONNS", 25),
		MaxIdleConns: getEnvInt("RESERVA_POSTGRES_IDLE_CONNS", 5),
		ConnLifetime: getEnvDuration("RESERVA_POSTGRES_CONN_LIFETIME", 30*time.Minute),
	}
}

// loadRedisConfig loads redis configuration from environment
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:      getEnv("RESERVA_REDIS_URL", "localhost:6379"),
		Password: getEnv("RESERVA_REDIS_PASSWORD", ""),
		DB:       getEnvInt("RESERVA_REDIS_DB", 0),
		PoolSize: getEnvInt("RESERVA_REDIS_POOL_SIZE", 10),
	}
}

// loadImpersonationConfig loads ghost session configuration from environment
func loadImpersonationConfig() ImpersonationConfig {
	return ImpersonationConfig{
		SessionTTL: getEnvDuration("RESERVA_GHOST_SESSION_TTL", 30*time.Minute),
	}
}

// loadNotificationConfig loads notification configuration from environment
func loadNotificationConfig() NotificationConfig {
	return NotificationConfig{
		WebhookURL:    getEnv("RESERVA_WEBHOOK_URL", ""),
		WebhookSecret: getEnv("RESERVA_WEBHOOK_SECRET", ""),
		EmailEnabled:  getEnvBool("RESERVA_EMAIL_ENABLED", true),
	}
}

// loadRateLimitConfig loads rate limiting configuration from environment
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Distributed: getEnvBool("RESERVA_RATE_LIMIT_DISTRIBUTED", true),
	}
}

// loadRetentionConfig loads retention configuration from environment
func loadRetentionConfig() RetentionConfig {
	return RetentionConfig{
		CallLogMaxAge: getEnvDuration("RESERVA_CALL_LOG_MAX_AGE", 90*24*time.Hour),
		PurgeSchedule: getEnv("RESERVA_PURGE_SCHEDULE", "0 4 * * *"),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("RESERVA_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("RESERVA_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth token secret is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("redis URL is required")
	}

	if c.Impersonation.SessionTTL <= 0 {
		return fmt.Errorf("ghost session TTL must be positive")
	}
	if c.Retention.CallLogMaxAge <= 0 {
		return fmt.Errorf("call log retention must be positive")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
