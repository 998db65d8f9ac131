package endpoint

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/localdiscovery/discovery"
	apperrors "github.com/kbukum/localdiscovery/errors"
	"github.com/kbukum/localdiscovery/server/middleware"
)

// ClientFunc returns the active discovery client. It is resolved per request
// because the client only exists once the discovery component has started.
type ClientFunc func() discovery.DiscoveryClient

// Services lists the service names known to the discovery client.
func Services(client ClientFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		dc := client()
		if dc == nil {
			respondError(c, apperrors.ServiceUnavailable("discovery"))
			return
		}
		names, err := dc.Services(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"services": names})
	}
}

// Instances lists the instances of the service named by the :name path
// parameter. Pass ?one=true to select a single instance; an unknown service
// then answers 404 and an unknown strategy 400.
func Instances(client ClientFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		dc := client()
		if dc == nil {
			respondError(c, apperrors.ServiceUnavailable("discovery"))
			return
		}
		name := c.Param("name")
		protocol := c.Query("protocol")

		if c.Query("one") == "true" {
			strategy, err := discovery.ParseStrategy(c.Query("strategy"))
			if err != nil {
				respondError(c, apperrors.Validation(err.Error()))
				return
			}
			inst, err := dc.DiscoverOne(c.Request.Context(), discovery.Query{
				ServiceName: name,
				Protocol:    protocol,
				Strategy:    strategy,
			})
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"service": name, "instance": inst})
			return
		}

		instances, err := dc.Discover(c.Request.Context(), name, protocol)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"service": name, "instances": instances})
	}
}

func respondError(c *gin.Context, err error) {
	appErr := apperrors.FromError(err, func(err error) *apperrors.AppError {
		if errors.Is(err, discovery.ErrNoHealthyEndpoints) || errors.Is(err, discovery.ErrServiceNotFound) {
			return apperrors.NotFound("service", c.Param("name")).WithCause(err)
		}
		return nil
	})
	c.JSON(appErr.HTTPStatus, appErr.ToResponse(c.GetHeader(middleware.HeaderRequestID)))
}
