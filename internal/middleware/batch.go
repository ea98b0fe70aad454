package middleware

import (
	"net/http"

	"bubble/config"

	"github.com/gin-gonic/gin"
)

// BatchTokenRequired guards endpoints invoked by the external scheduler.
// In development mode the check is skipped so jobs can be run by hand.
func BatchTokenRequired(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Server.Env == "development" {
			c.Next()
			return
		}
		if cfg.Batch.Token == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "batch token not configured"})
			return
		}
		if c.GetHeader("X-Batch-Token") != cfg.Batch.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid batch token"})
			return
		}
		c.Next()
	}
}
