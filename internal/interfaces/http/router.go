package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/internal/interfaces/http/handlers"
	"github.com/turtacn/dockrmsd/internal/interfaces/http/middleware"
	"github.com/turtacn/dockrmsd/pkg/errors"
	"github.com/turtacn/dockrmsd/pkg/types/common"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	ScoreHandler  *handlers.ScoreHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	Metrics     middleware.HTTPRecorder
	MaxBodySize int64

	// Infrastructure
	Logger         logging.Logger
	MetricsHandler http.Handler
}

// NewRouter builds the gin engine: global middleware, the probe endpoints,
// /metrics, and the /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.ScoreHandler != nil {
		cfg.ScoreHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		resp := common.NewErrorResponse(errors.ErrCodeNotFound, c.Request.URL.Path)
		resp.RequestID = middleware.GetRequestID(c)
		c.JSON(http.StatusNotFound, resp)
	})

	return r
}

//Personal.AI order the ending
