package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotedesk/internal/adapters/store/memory"
	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServerConfig(host string, port int) config.ServerConfig {
	return config.ServerConfig{
		Host:            host,
		Port:            port,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerNew(t *testing.T) {
	cfg := testServerConfig("127.0.0.1", 8080)
	logger := discardLogger()

	srv := New(cfg, "test", logger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, logger, srv.logger)
	assert.Equal(t, cfg.ReadTimeout, srv.httpServer.ReadHeaderTimeout)
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	New(cfg, "local", logger)
	assert.Equal(t, gin.DebugMode, gin.Mode())

	gin.SetMode(gin.TestMode)
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		port         int
		expectedAddr string
	}{
		{name: "localhost", host: "localhost", port: 8080, expectedAddr: "localhost:8080"},
		{name: "all interfaces", host: "0.0.0.0", port: 3000, expectedAddr: "0.0.0.0:3000"},
		{name: "ipv6 loopback", host: "::1", port: 9000, expectedAddr: "[::1]:9000"},
		{name: "dynamic port before start", host: "127.0.0.1", port: 0, expectedAddr: "127.0.0.1:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(testServerConfig(tt.host, tt.port), "test", discardLogger())

			assert.Equal(t, tt.expectedAddr, srv.Addr())
		})
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(testServerConfig("127.0.0.1", 0), "test", discardLogger())
	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	errCh, err := srv.Start()
	require.NoError(t, err)

	addr := srv.Addr()
	assert.NotEqual(t, "127.0.0.1:0", addr, "reports the bound port")

	resp, err := http.Get("http://" + addr + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, ok := <-errCh
	assert.False(t, ok, "error channel should be closed")
}

func TestServerStart_AddressInUse(t *testing.T) {
	first := New(testServerConfig("127.0.0.1", 0), "test", discardLogger())

	_, err := first.Start()
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	var port int
	_, err = fmt.Sscanf(first.Addr()[strings.LastIndex(first.Addr(), ":")+1:], "%d", &port)
	require.NoError(t, err)

	second := New(testServerConfig("127.0.0.1", port), "test", discardLogger())

	_, err = second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

func TestServer_NoRouteAndNoMethod(t *testing.T) {
	srv := New(testServerConfig("127.0.0.1", 0), "test", discardLogger())
	srv.Engine().GET("/things", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dto.ErrorCodeNotFound, body.Error.Code)

	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/things", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMaxBodySizeMiddleware(t *testing.T) {
	cfg := testServerConfig("127.0.0.1", 0)
	cfg.MaxRequestSize = 100

	srv := New(cfg, "test", discardLogger())
	srv.Engine().POST("/test", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}

			c.Status(http.StatusBadRequest)

			return
		}

		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})

	t.Run("body under limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("a", 50))))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("body over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("a", 500))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func newTestRouterConfig(t *testing.T) RouterConfig {
	t.Helper()

	logger := discardLogger()
	store := memory.New()
	quotes := app.NewQuoteService(app.QuoteServiceConfig{Store: store, Logger: logger})
	drafts := app.NewDraftService(app.DraftServiceConfig{Quotes: quotes, Logger: logger})
	views := app.NewClientViewService(app.ClientViewConfig{Store: store, Logger: logger})

	t.Cleanup(views.Wait)

	return RouterConfig{
		AppConfig:         config.AppConfig{Name: "quotedesk"},
		IdentityConfig:    config.IdentityConfig{DefaultOwner: "anonymous"},
		HealthHandler:     handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.BuildInfo{Service: "quotedesk"}),
		DraftHandler:      handlers.NewDraftHandler(drafts),
		QuoteHandler:      handlers.NewQuoteHandler(quotes),
		ClientViewHandler: handlers.NewClientViewHandler(views, ""),
		Timeout:           DefaultRequestTimeout,
	}
}

func TestSetupRouter(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, newTestRouterConfig(t))

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/metrics",
		"GET /",
		"POST /api/v1/drafts",
		"POST /api/v1/drafts/:id/save",
		"GET /api/v1/quotes",
		"GET /api/v1/revisions/:id",
		"GET /api/v1/clients",
		"GET /api/v1/client/revisions/:id/export/:format",
		"POST /api/v1/client/revisions/:id/feedback",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}

	t.Run("liveness", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	})

	t.Run("create draft", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts", nil)
		req.Header.Set("X-User-ID", "alice")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/api/v1/drafts/"))
	})

	t.Run("client link redirect", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?revision=rev-1", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/api/v1/client/revisions/rev-1", w.Header().Get("Location"))
	})
}

func TestSetupRouterWithoutHandlers(t *testing.T) {
	engine := gin.New()

	assert.NotPanics(t, func() {
		SetupRouter(engine, RouterConfig{})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportAware(t *testing.T) {
	engine := gin.New()
	api := engine.Group(apiPrefix, exportAware(middleware.Timeout(time.Minute)))

	hasDeadline := func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	}

	api.GET("/drafts/:id", hasDeadline)
	api.GET("/client/revisions/:id/export/:format", hasDeadline)

	tests := []struct {
		path     string
		deadline bool
	}{
		{path: "/api/v1/drafts/d-1", deadline: true},
		{path: "/api/v1/client/revisions/r-1/export/pdf", deadline: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Deadline bool `json:"deadline"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.deadline, body.Deadline)
		})
	}
}

func TestSetupMinimalRouter(t *testing.T) {
	engine := gin.New()
	SetupMinimalRouter(engine, handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.BuildInfo{}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	assert.NotPanics(t, func() {
		SetupMinimalRouter(gin.New(), nil)
	})
}
