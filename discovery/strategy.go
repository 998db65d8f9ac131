package discovery

import (
	"context"
	"fmt"
)

// LoadBalancingStrategy picks one instance out of several in DiscoverOne.
// The local fallback only ever has one instance, so it ignores the strategy.
type LoadBalancingStrategy string

const (
	StrategyRandom     LoadBalancingStrategy = "random"
	StrategyRoundRobin LoadBalancingStrategy = "round_robin"
	StrategyWeighted   LoadBalancingStrategy = "weighted"
)

// ParseStrategy maps a query-string value to a strategy. Empty selects
// StrategyRandom.
func ParseStrategy(s string) (LoadBalancingStrategy, error) {
	switch st := LoadBalancingStrategy(s); st {
	case "":
		return StrategyRandom, nil
	case StrategyRandom, StrategyRoundRobin, StrategyWeighted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown load-balancing strategy %q", s)
	}
}

// Query selects one instance of ServiceName. An empty Protocol matches any.
type Query struct {
	ServiceName string
	Protocol    string
	Strategy    LoadBalancingStrategy
}

// Criticality decides whether DiscoverAll fails or skips a service it
// cannot resolve.
type Criticality string

const (
	CriticalityRequired Criticality = "required"
	CriticalityOptional Criticality = "optional"
)

// DiscoveryClient is what application code and the HTTP endpoints consume.
// Client serves it from a real backend; the local fallback serves it from
// the process's own instance and never fails except on DiscoverOne.
type DiscoveryClient interface {
	Services(ctx context.Context) ([]string, error)

	// Discover returns healthy instances of serviceName, filtered by protocol
	// when one is given. An unknown service is an error for real backends
	// and an empty list for the local fallback.
	Discover(ctx context.Context, serviceName string, protocol ...string) ([]ServiceInstance, error)

	// DiscoverOne returns ErrNoHealthyEndpoints when nothing matches.
	DiscoverOne(ctx context.Context, query Query) (ServiceInstance, error)

	DiscoverAll(ctx context.Context) (map[string][]ServiceInstance, error)

	// Invalidate drops cached instances of serviceName.
	Invalidate(serviceName string)

	Close() error
}
