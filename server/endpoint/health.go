package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/localdiscovery/component"
)

// DiscoveryComponent is the component name both discovery modes register under.
const DiscoveryComponent = "discovery"

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the /health body.
type HealthResponse struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Discovery  string             `json:"discovery"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components"`
}

// Health reports aggregated component health and which discovery mode
// serves the process: the provider name, "local (fallback)", or "none".
// Any unhealthy component makes the response 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}
		status := aggregate(components)

		httpStatus := http.StatusOK
		if status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, HealthResponse{
			Status:     string(status),
			Service:    serviceName,
			Discovery:  discoveryMode(components),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Components: components,
		})
	}
}

// aggregate returns the worst status: unhealthy over degraded over healthy.
func aggregate(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func discoveryMode(components []component.Health) string {
	for _, h := range components {
		if h.Name != DiscoveryComponent {
			continue
		}
		if h.Status == component.StatusUnhealthy || h.Message == "" {
			return "unavailable"
		}
		return h.Message
	}
	return "none"
}
