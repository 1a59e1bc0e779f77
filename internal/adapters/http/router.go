package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests when RouterConfig.Timeout is zero.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig lists what SetupRouter mounts. Nil handlers are skipped.
type RouterConfig struct {
	// ServiceName names the server spans.
	ServiceName string

	// Timeout is the deadline put on every /api/v1 request.
	Timeout time.Duration

	Health *handlers.HealthHandler
	Quotes *handlers.QuoteHandler
	Sync   *handlers.SyncHandler
}

// SetupRouter installs the middleware chain and routes on engine.
//
// Middleware order:
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. Tracing, then HTTP metrics (metrics read the span tracing starts)
//  5. Logging, which skips /-/
//  6. Timeout, on /api/v1 only
//
// Routes:
//   - /-/live, /-/ready, /-/build, /-/metrics
//   - /api/v1/...
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "quotekeeper"
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(serviceName),
		telemetry.Metrics(),
		middleware.Logging(),
	)

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine.Group("/-"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	api := engine.Group("/api/v1", middleware.Timeout(timeout))

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(api)
	}

	if cfg.Sync != nil {
		cfg.Sync.RegisterRoutes(api)
	}
}
