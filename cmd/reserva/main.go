package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/reservahq/reserva/pkg/api"
	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/calllogs"
	"github.com/reservahq/reserva/pkg/config"
	"github.com/reservahq/reserva/pkg/gateway"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/impersonation"
	"github.com/reservahq/reserva/pkg/middleware"
	"github.com/reservahq/reserva/pkg/notify"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/promos"
	"github.com/reservahq/reserva/pkg/stock"
	"github.com/reservahq/reserva/pkg/tenants"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reserva: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Data gateway, with per-operation metrics when enabled.
	gw := gateway.New(db)
	var (
		bookingStore bookings.Store = gw.Bookings
		stockStore   stock.Store    = gw.Stock
		promoStore   promos.Store   = gw.Promos
		callLogStore calllogs.Store = gw.CallLogs
	)
	if metrics != nil {
		bookingStore = gateway.InstrumentBookings(gw.Bookings, metrics)
		stockStore = gateway.InstrumentStock(gw.Stock, metrics)
		promoStore = gateway.InstrumentPromos(gw.Promos, metrics)
		callLogStore = gateway.InstrumentCallLogs(gw.CallLogs, metrics)
	}

	tenantService := tenants.NewPostgresService(db)
	ghosts := impersonation.NewManager(redisClient, tenantService, cfg.Impersonation.SessionTTL)

	authenticator, err := identity.NewTokenAuthenticator(cfg.Auth.TokenSecret)
	if err != nil {
		return err
	}
	resolver := identity.NewResolver(tenantService, ghosts)

	// Outbound notifications. With no sinks configured the engine simply
	// skips notification.
	var notifier bookings.Notifier
	var sinks []notify.Sink
	if cfg.Notifications.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notifications.WebhookURL, cfg.Notifications.WebhookSecret))
	}
	if cfg.Notifications.EmailEnabled {
		sinks = append(sinks, notify.NewEmailSink(logger))
	}
	if len(sinks) > 0 {
		dispatcher := notify.NewDispatcher(logger, sinks...)
		if metrics != nil {
			dispatcher.SetMetrics(metrics)
		}
		notifier = notify.NewBookingNotifier(dispatcher)
	}

	engine := bookings.NewEngine(bookingStore, notifier, logger)
	if metrics != nil {
		engine.SetMetrics(metrics)
	}

	callLogService := calllogs.NewService(callLogStore)

	auditLogger, err := audit.NewDBLogger(db)
	if err != nil {
		return fmt.Errorf("failed to initialize audit logger: %w", err)
	}

	var rateLimiter api.RateLimiter = middleware.NewRateLimitMiddleware()
	if cfg.RateLimit.Distributed {
		rateLimiter = middleware.NewDistributedRateLimitMiddleware(redisClient)
	}

	server := api.NewServer(api.Deps{
		Logger:        logger,
		Metrics:       metrics,
		Tenants:       tenantService,
		Bookings:      engine,
		Stock:         stock.NewService(stockStore),
		Promos:        promos.NewService(promoStore),
		CallLogs:      callLogService,
		Ghosts:        ghosts,
		Authenticator: authenticator,
		Resolver:      resolver,
		AuditLogger:   auditLogger,
		RateLimiter:   rateLimiter,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	jobs := startJobs(cfg, logger, metrics, ghosts, callLogService, db, redisClient)

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		jobStop := jobs.Stop()
		select {
		case <-jobStop.Done():
		case <-ctx.Done():
		}
		return nil
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return auditLogger.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return redisClient.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return db.Close()
	})

	go func() {
		logger.Infof("health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		logger.Infof("API server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("API server failed")
			os.Exit(1)
		}
	}()

	return shutdown.WaitForShutdown()
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// startJobs schedules the background jobs: call log retention on the
// configured cron expression, plus a periodic gauge sweep when metrics are on.
func startJobs(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics,
	ghosts *impersonation.Manager, callLogs *calllogs.Service, db *sql.DB, redisClient *redis.Client) *cron.Cron {

	c := cron.New()

	if _, err := c.AddFunc(cfg.Retention.PurgeSchedule, func() {
		defer observability.RecoverPanic(logger, "call log purge")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-cfg.Retention.CallLogMaxAge)
		removed, err := callLogs.PurgeOlderThan(ctx, cutoff)
		if err != nil {
			logger.WithError(err).Error("call log purge failed")
			return
		}
		logger.WithFields(map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("call log purge complete")
	}); err != nil {
		logger.WithError(err).Errorf("invalid purge schedule %q, retention job disabled", cfg.Retention.PurgeSchedule)
	}

	if metrics != nil {
		c.AddFunc("@every 30s", func() {
			defer observability.RecoverPanic(logger, "gauge sweep")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if count, err := ghosts.ActiveCount(ctx); err == nil {
				metrics.GhostSessionsActive.Set(float64(count))
			}
			stats := db.Stats()
			metrics.DBConnectionsActive.Set(float64(stats.InUse))
			metrics.DBConnectionsIdle.Set(float64(stats.Idle))
			metrics.RedisConnectionsActive.Set(float64(redisClient.PoolStats().TotalConns))
		})
	}

	c.Start()
	return c
}
