package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/promowatch/promowatch/api/handler"
	"github.com/promowatch/promowatch/api/middleware"
	"github.com/promowatch/promowatch/config"
	"github.com/promowatch/promowatch/probe"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Check:   Auth (shared secret, if configured) → RateLimit
//
// Health and metrics are intentionally outside auth so monitoring always
// works.
func NewRouter(p *probe.Prober, cfg *config.Config, metrics *probe.Metrics, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(p, startTime))

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth.Token))
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// The check operation is idempotent; GET and POST both trigger it.
	protected.GET("/check", handler.Check(p))
	protected.POST("/check", handler.Check(p))

	return r
}
