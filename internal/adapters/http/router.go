package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default deadline for API requests.
const DefaultRequestTimeout = 30 * time.Second

const (
	apiPrefix    = "/api/v1"
	exportMarker = "/export/"
)

// RouterConfig contains what SetupRouter registers.
type RouterConfig struct {
	AppConfig      config.AppConfig
	IdentityConfig config.IdentityConfig

	HealthHandler     *handlers.HealthHandler
	DraftHandler      *handlers.DraftHandler
	QuoteHandler      *handlers.QuoteHandler
	ClientViewHandler *handlers.ClientViewHandler

	// Timeout is the API request deadline. Document exports run without one.
	Timeout time.Duration

	// Tracing adds the otelgin and request metric middleware.
	Tracing bool
}

// SetupRouter configures middleware and routes on the engine.
// Middleware runs in this order:
//  1. Recovery
//  2. Request ID and correlation ID
//  3. OpenTelemetry tracing and metrics, when enabled
//  4. Identity
//  5. Logging, which skips /-/ probes
//  6. Timeout, on /api/v1 only
//
// Route groups:
//   - /-/: probes, build info, flags and metrics
//   - /: redirects client links to the client view
//   - /api/v1/drafts: the editor
//   - /api/v1/quotes, /api/v1/revisions, /api/v1/clients: lookups
//   - /api/v1/client: the read-only client view and feedback
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.Tracing {
		engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	}

	engine.Use(
		middleware.Identity(cfg.IdentityConfig),
		middleware.Logging(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group(apiPrefix)
	if cfg.Timeout > 0 {
		api.Use(exportAware(middleware.Timeout(cfg.Timeout)))
	}

	setupAPIRoutes(engine, api, cfg)
}

func setupAPIRoutes(engine *gin.Engine, api *gin.RouterGroup, cfg RouterConfig) {
	if cfg.DraftHandler != nil {
		cfg.DraftHandler.RegisterRoutes(api.Group("/drafts"))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterRoutes(api)
	}

	if cfg.ClientViewHandler != nil {
		cfg.ClientViewHandler.RegisterRoutes(api.Group("/client"))
		engine.GET("/", cfg.ClientViewHandler.Root)
	}
}

// exportAware skips next for document exports, which can take longer than an
// API call to render.
func exportAware(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.Contains(c.FullPath(), exportMarker) {
			c.Next()
			return
		}

		next(c)
	}
}

// SetupMinimalRouter registers only the /-/ endpoints. Used by tests and tools.
func SetupMinimalRouter(engine *gin.Engine, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
