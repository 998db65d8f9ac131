package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ServiceInfo describes the local process as it is registered with a
// backend. Port 0 registers an instance that is not listening.
type ServiceInfo struct {
	ID       string
	Name     string
	Address  string
	Port     int
	Tags     []string
	Metadata map[string]string
}

// Validate checks the fields every backend needs.
func (s *ServiceInfo) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("service name is required"))
	}
	if s.Address == "" {
		errs = append(errs, errors.New("service address is required"))
	}
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("service port %d out of range", s.Port))
	}
	return errors.Join(errs...)
}

// Instance returns the registration as a healthy ServiceInstance. An empty
// ID is derived with InstanceID.
func (s *ServiceInfo) Instance() ServiceInstance {
	id := s.ID
	if id == "" {
		id = InstanceID(s.Name, s.Address, s.Port)
	}
	return ServiceInstance{
		ID:       id,
		Name:     s.Name,
		Address:  s.Address,
		Port:     s.Port,
		Tags:     s.Tags,
		Metadata: s.Metadata,
		Health:   HealthHealthy,
	}
}

// Registry registers and deregisters the local service with a backend.
type Registry interface {
	// Register announces service to the backend. It fails on an invalid
	// ServiceInfo without contacting the backend.
	Register(ctx context.Context, service *ServiceInfo) error

	// Deregister removes the instance with the given ID.
	Deregister(ctx context.Context, serviceID string) error

	// Stats returns registration counters.
	Stats() RegistryStats

	Close() error
}

// RegistryStats counts successful registrations by this process.
type RegistryStats struct {
	RegisteredServices int
	LastHeartbeat      time.Time
}
