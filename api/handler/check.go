package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promowatch/promowatch/models"
	"github.com/promowatch/promowatch/probe"
)

// Check returns the handler for the "run a check" operation. One call runs
// the whole batch synchronously and returns the report.
//
// Format selection: "?format=text" or an Accept header requesting
// text/plain yields the flattened text report; the default is JSON.
func Check(p *probe.Prober) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// The batch coordinator contains failures at country scope;
		// anything that still escapes is a fatal failure and becomes a
		// single error response. The process stays alive.
		defer func() {
			if r := recover(); r != nil {
				slog.Error("batch check failed", "panic", r)
				perr := models.NewProbeError(models.ErrCodeInternal, fmt.Sprintf("batch check failed: %v", r), nil)
				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Success: false,
					Error:   perr.ToDetail(),
				})
			}
		}()

		report := p.Run(c.Request.Context())
		slog.Info("batch check completed",
			"countries", len(report.Countries),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)

		if wantsText(c) {
			c.String(http.StatusOK, report.Text(p.CountryOrder()))
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func wantsText(c *gin.Context) bool {
	if c.Query("format") == "text" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/plain")
}
