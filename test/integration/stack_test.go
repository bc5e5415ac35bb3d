//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/adapters/events"
	"github.com/jsamuelsen/quotedesk/internal/adapters/flags"
	"github.com/jsamuelsen/quotedesk/internal/adapters/history"
	apphttp "github.com/jsamuelsen/quotedesk/internal/adapters/http"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotedesk/internal/adapters/notify"
	"github.com/jsamuelsen/quotedesk/internal/adapters/render"
	"github.com/jsamuelsen/quotedesk/internal/adapters/store/sqlstore"
	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// stack is the service wired the way cmd/service wires it, on a sqlite file
// and a bolt history log in a temp dir.
type stack struct {
	server  *httptest.Server
	store   *sqlstore.Store
	flags   *flags.Static
	views   *app.ClientViewService
	metrics *prometheus.Registry
}

// stackOptions adjusts the wiring for one test.
type stackOptions struct {
	features config.FeaturesConfig
}

func newStack(tb testing.TB, opts stackOptions) *stack {
	tb.Helper()

	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := tb.TempDir()

	db, err := sqlstore.Open(context.Background(), config.SQLConfig{
		Dialect:      sqlstore.DialectSQLite,
		DSN:          "file:" + filepath.Join(dir, "quotes.db"),
		MaxOpenConns: 1,
	}, logger)
	require.NoError(tb, err)

	store := sqlstore.New(db)
	tb.Cleanup(func() { _ = store.Close() })

	saveLog, err := history.Open(filepath.Join(dir, "history.db"))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = saveLog.Close() })

	registry := prometheus.NewRegistry()
	metrics, err := events.NewMetrics(registry)
	require.NoError(tb, err)

	publisher := events.NewLogPublisher(logger, metrics)
	featureFlags := flags.New(opts.features)

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:    store,
		History:  saveLog,
		Events:   publisher,
		Flags:    featureFlags,
		Executor: app.NewExecutor(logger, app.WithStepObserver(metrics)),
		Logger:   logger,
	})

	engine := gin.New()
	server := httptest.NewUnstartedServer(engine)

	drafts := app.NewDraftService(app.DraftServiceConfig{
		Quotes:         quotes,
		Notifier:       notify.NewLogMailer("quotes@quotedesk.test", 0, logger),
		Events:         publisher,
		DefaultTaxRate: decimal.RequireFromString(config.DefaultTaxRate),
		PublicBaseURL:  "https://quotes.test",
		Logger:         logger,
	})

	views := app.NewClientViewService(app.ClientViewConfig{
		Store:        store,
		Tracker:      store,
		Flags:        featureFlags,
		Events:       publisher,
		Renderers:    []ports.DocumentRenderer{render.NewPDF(), render.XLSX{}},
		TrackTimeout: time.Second,
		Logger:       logger,
	})

	healthRegistry := ports.NewHealthRegistry()
	require.NoError(tb, healthRegistry.Register(ports.CheckFunc{CheckName: "store", Fn: store.Ping}))

	apphttp.SetupRouter(engine, apphttp.RouterConfig{
		AppConfig:      config.AppConfig{Name: "quotedesk", Version: "test", Environment: "test"},
		IdentityConfig: config.IdentityConfig{DefaultOwner: "anonymous"},
		HealthHandler: handlers.NewHealthHandler(healthRegistry,
			handlers.NewBuildInfo("quotedesk", "test", "none", "now"),
			handlers.WithFlags(featureFlags),
			handlers.WithGatherer(registry)),
		DraftHandler:      handlers.NewDraftHandler(drafts),
		QuoteHandler:      handlers.NewQuoteHandler(quotes),
		ClientViewHandler: handlers.NewClientViewHandler(views, ""),
		Timeout:           apphttp.DefaultRequestTimeout,
	})

	server.Start()
	tb.Cleanup(func() {
		server.Close()
		views.Wait()
	})

	return &stack{server: server, store: store, flags: featureFlags, views: views, metrics: registry}
}
