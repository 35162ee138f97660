package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promowatch/promowatch/probe"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Rendering bool   `json:"rendering_available"`
	Countries int    `json:"countries_configured"`
	Version   string `json:"version"`
}

// Health returns a handler for GET /api/v1/health. It sits outside auth so
// monitoring probes always work.
func Health(p *probe.Prober, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if !p.RenderingAvailable() {
			status = "degraded"
		}
		c.JSON(http.StatusOK, HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Rendering: p.RenderingAvailable(),
			Countries: len(p.CountryOrder()),
			Version:   "0.1.0",
		})
	}
}
