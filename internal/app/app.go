// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/mferrari98/cont-portal/internal/buildinfo"
	"github.com/mferrari98/cont-portal/internal/cache"
	"github.com/mferrari98/cont-portal/internal/config"
	domerrors "github.com/mferrari98/cont-portal/internal/errors"
	"github.com/mferrari98/cont-portal/internal/logger"
	"github.com/mferrari98/cont-portal/internal/metrics"
	"github.com/mferrari98/cont-portal/internal/sentry"
	"github.com/mferrari98/cont-portal/internal/source"
	"github.com/mferrari98/cont-portal/internal/timeouts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg         *config.Config
	logger      *logger.Logger
	logShutdown logger.ShutdownFunc
	metrics     *metrics.Metrics
	registry    *prometheus.Registry
	source      source.Source
	cache       *cache.Manager
	server      *http.Server
	wg          sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log, logShutdown := logger.NewWithOptions(logger.Options{
		Level:               cfg.LogLevel,
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})

	log = log.WithField("service", "cont-portal")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger to enable context value extraction (request id,
	// client ip) via ContextHandler in package-level slog.*Context() calls.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterstackToken != "" {
		log.WithField("endpoint", cfg.BetterstackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:   cfg.SentryToken,
		Host:    cfg.SentryHost,
		Release: "cont-portal@" + buildinfo.Release(),
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if sentry.IsEnabled() {
		log.WithField("host", cfg.SentryHost).Info("Error tracking enabled")
	}

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	src, err := buildSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	log.WithField("backend", src.Name()).
		WithField("ref", src.Ref()).
		Info("Directory source configured")

	directoryCache := cache.New(src, log, m)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(m))

	app := &Application{
		cfg:         cfg,
		logger:      log,
		logShutdown: logShutdown,
		metrics:     m,
		registry:    registry,
		source:      src,
		cache:       directoryCache,
	}

	router.GET("/", app.serviceInfo)
	router.HEAD("/", app.serviceInfo)
	router.GET("/healthz", app.livenessCheck)
	router.HEAD("/healthz", app.livenessCheck)
	router.GET("/readyz", app.readinessCheck)
	router.HEAD("/readyz", app.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsAuthEnabled, cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.GET("/directory", app.getDirectory)
	api.POST("/directory/reload", app.reloadDirectory)
	api.GET("/search", app.searchDirectory)

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: timeouts.ServerHTTPRead,
		ReadTimeout:       timeouts.ServerHTTPRead,
		WriteTimeout:      timeouts.ServerHTTPWrite,
		IdleTimeout:       timeouts.ServerHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// buildSource constructs the directory source backend selected by the
// configuration. Validate guarantees exactly one backend is configured.
func buildSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch {
	case cfg.SourceURL != "":
		return source.NewHTTPSource(cfg.SourceURL, timeouts.SourceFetch, cfg.FetchMaxRetries), nil
	case cfg.SourcePath != "":
		return source.NewFileSource(cfg.SourcePath), nil
	default:
		return source.NewObjectSource(ctx, source.ObjectConfig{
			Endpoint:    cfg.SourceS3Endpoint,
			Region:      cfg.SourceS3Region,
			AccessKeyID: cfg.SourceS3AccessKeyID,
			SecretKey:   cfg.SourceS3SecretAccessKey,
			Bucket:      cfg.SourceS3Bucket,
			Key:         cfg.SourceS3Key,
		})
	}
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Receive SIGINT/SIGTERM
//  2. Cancel context to stop the refresh loop and any pending warm load
//  3. Wait for background goroutines to finish
//  4. Stop the HTTP server and flush buffered telemetry
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // Ensure context is always canceled

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()
	a.cache.StopRefresh()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts the warm load and, when enabled, the
// periodic refresh loop.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.warmLoad(ctx)
	})

	if a.cfg.RefreshEnabled() {
		a.cache.StartRefresh(ctx, a.cfg.RefreshInterval)
	}
}

// warmLoad fetches and parses the directory once at startup so the first
// request does not pay for the load. Failure is logged and reported,
// never fatal: the service starts degraded and loads on demand instead.
func (a *Application) warmLoad(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, timeouts.WarmLoad)
	defer cancel()

	snap, err := a.cache.Snapshot(loadCtx)
	if err != nil {
		a.logger.WithError(err).
			WithField("kind", domerrors.Kind(err)).
			Warn("Directory warm load failed")
		sentry.CaptureException(err)
		return
	}

	a.logger.WithField("records", len(snap.Records)).
		WithField("stamp", snap.Stamp).
		Info("Directory warm load complete")
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server and flushes buffered telemetry.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.GracefulShutdown)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if sentry.IsEnabled() && !sentry.Flush(timeouts.SentryFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	if err := a.logShutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
