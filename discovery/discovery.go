package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Common discovery errors.
var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrNoHealthyEndpoints = errors.New("no healthy endpoints found")
	ErrDiscoveryDisabled  = errors.New("service discovery is disabled")
	ErrNotInitialized     = errors.New("discovery not initialized")
)

// ServiceInstance is a discovered service endpoint. Name is the service ID,
// Address the host. Instances are values; treat them as immutable once built.
type ServiceInstance struct {
	ID       string            `json:"id"`
	Name     string            `json:"service_id"`
	Address  string            `json:"host"`
	Port     int               `json:"port"`
	Protocol string            `json:"protocol,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Health   HealthStatus      `json:"health"`
	Weight   int               `json:"weight,omitempty"`
	LastSeen time.Time         `json:"last_seen"`
}

// HostPort returns the instance address as host:port.
func (s ServiceInstance) HostPort() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// InstanceID builds the conventional instance ID name:host:port.
func InstanceID(name, host string, port int) string {
	return fmt.Sprintf("%s:%s:%d", name, host, port)
}

// HealthStatus represents endpoint health.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// Discovery defines the contract for discovering service instances.
type Discovery interface {
	// Discover returns all healthy instances of the named service.
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)

	// Watch returns a channel that emits the current set of instances
	// whenever the service membership changes. Cancel ctx to stop.
	Watch(ctx context.Context, serviceName string) (<-chan []ServiceInstance, error)

	// Close releases any resources held by the discovery backend.
	Close() error
}

// PortReporter is implemented by an embedded listener whose port is only
// known once it is bound.
type PortReporter interface {
	// BoundPort returns the port the listener is bound to, and false when
	// the listener is not active.
	BoundPort() (int, bool)
}

// PortFunc adapts a function to PortReporter.
type PortFunc func() (int, bool)

func (f PortFunc) BoundPort() (int, bool) { return f() }
