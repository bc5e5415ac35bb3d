// Package main is the entry point for the quote service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/adapters/events"
	"github.com/jsamuelsen/quotedesk/internal/adapters/flags"
	"github.com/jsamuelsen/quotedesk/internal/adapters/history"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotedesk/internal/adapters/notify"
	"github.com/jsamuelsen/quotedesk/internal/adapters/render"
	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
	"github.com/jsamuelsen/quotedesk/internal/platform/telemetry"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load .env and configuration, then validate (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	taxRate, err := decimal.NewFromString(cfg.Quote.DefaultTaxRate)
	if err != nil {
		return fmt.Errorf("invalid quote.default_tax_rate: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
		slog.String("view_tracking", cfg.ViewTracking.Mode),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, telemetry.ConfigFrom(cfg.App, cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Open the record store and view tracker, registering their health checks
	healthRegistry := ports.NewHealthRegistry()

	backend, err := openBackend(ctx, cfg, logger, healthRegistry)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, backend.Close()) }()

	// 6. Supporting adapters: flags, events, history, notifier, renderers
	featureFlags := flags.New(cfg.Features)

	metrics, err := events.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	publisher := events.NewLogPublisher(logger, metrics)

	var saveHistory ports.SaveHistory

	if cfg.History.Enabled {
		historyLog, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening save history: %w", err)
		}

		defer func() { err = errors.Join(err, historyLog.Close()) }()

		saveHistory = historyLog
	}

	notifier, err := notify.New(cfg.Notify.Mode, cfg.Notify.From, cfg.Notify.Delay, logger)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}

	// 7. Application services
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:    backend.store,
		History:  saveHistory,
		Events:   publisher,
		Flags:    featureFlags,
		Executor: app.NewExecutor(logger, app.WithStepObserver(metrics)),
		Logger:   logger,
	})

	draftService := app.NewDraftService(app.DraftServiceConfig{
		Quotes:         quoteService,
		Notifier:       notifier,
		Events:         publisher,
		DefaultTaxRate: taxRate,
		PublicBaseURL:  cfg.Quote.PublicBaseURL,
		IdleTTL:        cfg.Quote.DraftIdleTTL,
		Logger:         logger,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	go draftService.RunSweeper(sweepCtx, cfg.Quote.DraftSweepInterval)

	clientViews := app.NewClientViewService(app.ClientViewConfig{
		Store:        backend.store,
		Tracker:      backend.tracker,
		Flags:        featureFlags,
		Events:       publisher,
		Renderers:    []ports.DocumentRenderer{render.NewPDF(), render.XLSX{}},
		TrackTimeout: cfg.ViewTracking.Timeout,
		Logger:       logger,
	})

	// 8. Create handlers
	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, handlers.WithFlags(featureFlags))

	// 9. Create HTTP server and router
	server := http.New(cfg.Server, cfg.App.Environment, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		AppConfig:         cfg.App,
		IdentityConfig:    cfg.Identity,
		HealthHandler:     healthHandler,
		DraftHandler:      handlers.NewDraftHandler(draftService),
		QuoteHandler:      handlers.NewQuoteHandler(quoteService),
		ClientViewHandler: handlers.NewClientViewHandler(clientViews, ""),
		Timeout:           http.DefaultRequestTimeout,
		Tracing:           telProvider.Enabled(),
	})

	// 10. Start server (non-blocking)
	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	// 11. Wait for shutdown signal, then drain view tracking
	err = waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)

	clientViews.Wait()

	return err
}

// waitForShutdown blocks until a shutdown signal is received or the server fails.
// It then drains in-flight requests within shutdownTimeout.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
