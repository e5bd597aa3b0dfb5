// Package middleware holds the gin middleware: request logging, panic
// recovery, rate limiting and caller identity.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs every request once it has been served.
// 5xx responses are logged at error level, 4xx at warn, the rest at debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		actor, _ := ActorID(c)
		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"actor_id": actor,
			"ip":       c.ClientIP(),
			"latency":  time.Since(start).String(),
		})

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request served")
		}
	}
}
