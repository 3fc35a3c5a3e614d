package middleware

import (
	"time"

	"propertyservices/observability"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template.
func Metrics(collector *observability.EngineCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
