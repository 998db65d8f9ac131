package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/localdiscovery/component"
)

// Liveness answers as long as the process serves HTTP. uptime_s counts from
// handler registration, which happens before the listener binds.
func Liveness(serviceName string) gin.HandlerFunc {
	since := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "alive",
			"service":  serviceName,
			"uptime_s": int64(time.Since(since).Seconds()),
		})
	}
}

// Readiness is 503 while any component is unhealthy, which includes a
// discovery component that has not started yet.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}

		status, httpStatus := "ready", http.StatusOK
		if aggregate(components) == component.StatusUnhealthy {
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"discovery": discoveryMode(components),
		})
	}
}
