package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promowatch/promowatch/models"
)

// Auth returns shared-secret gating middleware.
//
// The secret is expected in the X-Probe-Token header and compared in
// constant time. An empty configured token disables gating entirely (open
// access). Rejection happens before any probe work starts.
func Auth(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}

	expected := []byte(token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader("X-Probe-Token"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUnauthorized,
					Message: "missing or invalid X-Probe-Token header",
				},
			})
			return
		}
		c.Next()
	}
}
