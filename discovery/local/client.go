package local

import (
	"context"
	"fmt"

	"github.com/kbukum/localdiscovery/discovery"
)

// client answers every query from the descriptor's single instance. The
// protocol filter is ignored.
type client struct {
	d *Descriptor
}

var _ discovery.DiscoveryClient = (*client)(nil)

func (c *client) Services(_ context.Context) ([]string, error) {
	self, ok := c.d.Instance()
	if !ok {
		return []string{}, nil
	}
	return []string{self.Name}, nil
}

func (c *client) Discover(_ context.Context, serviceName string, _ ...string) ([]discovery.ServiceInstance, error) {
	self, ok := c.d.Instance()
	if !ok || serviceName != self.Name {
		return []discovery.ServiceInstance{}, nil
	}
	return []discovery.ServiceInstance{self}, nil
}

func (c *client) DiscoverOne(ctx context.Context, query discovery.Query) (discovery.ServiceInstance, error) {
	instances, _ := c.Discover(ctx, query.ServiceName)
	if len(instances) == 0 {
		return discovery.ServiceInstance{}, fmt.Errorf("%w: %s", discovery.ErrNoHealthyEndpoints, query.ServiceName)
	}
	return instances[0], nil
}

func (c *client) DiscoverAll(_ context.Context) (map[string][]discovery.ServiceInstance, error) {
	self, ok := c.d.Instance()
	if !ok {
		return map[string][]discovery.ServiceInstance{}, nil
	}
	return map[string][]discovery.ServiceInstance{self.Name: {self}}, nil
}

func (c *client) Invalidate(string) {}

func (c *client) Close() error { return nil }
