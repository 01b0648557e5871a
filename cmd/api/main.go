package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/brightsmile-dental/clinic-api/internal/api/router"
	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/availability"
	"github.com/brightsmile-dental/clinic-api/internal/blackouts"
	"github.com/brightsmile-dental/clinic-api/internal/booking"
	appconfig "github.com/brightsmile-dental/clinic-api/internal/config"
	"github.com/brightsmile-dental/clinic-api/internal/observability/metrics"
	"github.com/brightsmile-dental/clinic-api/internal/staff"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

func main() {
	// Load .env file if present; production reads the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting clinic booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "tz", cfg.ClinicTimezone, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	apts := appointments.NewPostgresRepository(pool)
	blks := blackouts.NewPostgresRepository(pool)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Availability engine polls the feeds in the background.
	engine := availability.NewEngine(apts, blks, logger, bookingMetrics, cfg.AvailabilityPollInterval, loc)
	go engine.Run(ctx)

	// Staff access gate
	devices := staff.NewDeviceStore(rdb)
	gate := staff.NewGate(cfg.StaffUsername, cfg.StaffPassword, cfg.StaffTokenSecret,
		cfg.StaffSessionTTL, cfg.RememberDeviceTTL, devices, logger)

	// Services and handlers
	bookingService := booking.NewService(apts, engine, logger, bookingMetrics, cfg.BookingWindowDays, loc)

	routerCfg := &router.Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(engine, logger, cfg.BookingWindowDays),
		BookingHandler:      booking.NewHandler(bookingService, logger),
		StaffHandler:        staff.NewHandler(apts, blks, gate, devices, logger),
		StatsHandler:        staff.NewStatsHandler(staff.NewStatsRepository(pool), registry, loc, cfg.DashboardPollInterval, logger),
		StaffGate:           gate,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	stop()

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
