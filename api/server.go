// Package api is the outward HTTP surface: account lifecycle, inventory
// refresh, watch sync, and metric retrieval.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yairfalse/lookout/inventory"
	"github.com/yairfalse/lookout/metric"
	"github.com/yairfalse/lookout/secrets"
	"github.com/yairfalse/lookout/store"
	"github.com/yairfalse/lookout/telemetry"
	"github.com/yairfalse/lookout/types"
)

// Refresher runs an inventory refresh. Satisfied by inventory.Service.
type Refresher interface {
	Refresh(ctx context.Context, accountID string, kind types.Kind) (inventory.RefreshResult, error)
}

// MetricQuerier answers watched-metric queries. Satisfied by
// metric.Service.
type MetricQuerier interface {
	Query(ctx context.Context, accountID string, q metric.Query) ([]types.MetricSeries, error)
}

// Server holds the handler dependencies.
type Server struct {
	store     *store.Store
	sealer    *secrets.Resolver
	refresher Refresher
	metrics   MetricQuerier
	logger    zerolog.Logger
}

func NewServer(s *store.Store, sealer *secrets.Resolver, refresher Refresher, metrics MetricQuerier, logger zerolog.Logger) *Server {
	return &Server{
		store:     s,
		sealer:    sealer,
		refresher: refresher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())

	v1 := router.Group("/v1")
	{
		v1.POST("/accounts", s.handleCreateAccount)
		v1.GET("/accounts/:id", s.handleGetAccount)
		v1.PATCH("/accounts/:id", s.handleUpdateAccount)
		v1.DELETE("/accounts/:id", s.handleDeleteAccount)

		v1.GET("/accounts/:id/instances", s.handleListInstances)
		v1.POST("/accounts/:id/instances/refresh", s.handleRefresh)
		v1.POST("/accounts/:id/instances/watch", s.handleWatch)

		v1.GET("/accounts/:id/metrics", s.handleMetrics)
	}

	router.GET("/healthz", s.handleHealthz)
	if telemetry.PrometheusRegistry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			telemetry.PrometheusRegistry, promhttp.HandlerOpts{})))
	}

	return router
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLog logs one line per request at debug level.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
