package consul

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/logger"
)

// ProviderName is the name this backend registers under.
const ProviderName = "consul"

// Provider implements both discovery.Registry and discovery.Discovery using HashiCorp Consul.
type Provider struct {
	mu     sync.RWMutex
	client *api.Client
	cfg    discovery.Config
	ccfg   Config
	log    *logger.Logger
	stats  discovery.RegistryStats
}

func init() {
	discovery.RegisterProviderFactory(ProviderName, func(cfg discovery.Config, providerCfg any, log *logger.Logger) (discovery.Registry, discovery.Discovery, error) {
		var ccfg Config
		switch v := providerCfg.(type) {
		case nil:
		case Config:
			ccfg = v
		case *Config:
			if v != nil {
				ccfg = *v
			}
		default:
			return nil, nil, fmt.Errorf("consul: unexpected provider config %T", providerCfg)
		}
		p, err := NewProvider(cfg, ccfg, log)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	})
}

// NewProvider creates a Provider talking to the agent described by ccfg.
func NewProvider(cfg discovery.Config, ccfg Config, log *logger.Logger) (*Provider, error) {
	ccfg.ApplyDefaults()
	if err := ccfg.Validate(); err != nil {
		return nil, fmt.Errorf("consul config: %w", err)
	}

	client, err := api.NewClient(ccfg.apiConfig())
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	return &Provider{
		client: client,
		cfg:    cfg,
		ccfg:   ccfg,
		log:    logger.Named(log, "consul"),
	}, nil
}

// Register registers a service instance with the local agent.
func (c *Provider) Register(ctx context.Context, service *discovery.ServiceInfo) error {
	if err := service.Validate(); err != nil {
		return fmt.Errorf("consul register: %w", err)
	}
	reg := &api.AgentServiceRegistration{
		ID:      service.ID,
		Name:    service.Name,
		Address: service.Address,
		Port:    service.Port,
		Tags:    service.Tags,
		Meta:    service.Metadata,
	}

	if c.cfg.HealthCheckPath != "" && service.Port > 0 {
		reg.Check = &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("%s://%s%s", c.ccfg.Scheme, service.Instance().HostPort(), c.cfg.HealthCheckPath),
			Interval:                       c.cfg.HealthCheckInterval.String(),
			Timeout:                        c.cfg.HealthCheckTimeout.String(),
			DeregisterCriticalServiceAfter: c.cfg.DeregisterAfter.String(),
		}
	}

	opts := api.ServiceRegisterOpts{}.WithContext(ctx)
	if err := c.client.Agent().ServiceRegisterOpts(reg, opts); err != nil {
		c.log.Error("failed to register service", logger.Fields(
			logger.FieldServiceID, service.ID, logger.FieldError, err.Error(),
		))
		return fmt.Errorf("consul register %q: %w", service.Name, err)
	}

	c.mu.Lock()
	c.stats.RegisteredServices++
	c.stats.LastHeartbeat = time.Now()
	c.mu.Unlock()

	c.log.Info("service registered", logger.Fields(
		logger.FieldServiceID, service.ID, logger.FieldHost, service.Address, logger.FieldPort, service.Port,
	))
	return nil
}

// Deregister removes a service instance from the local agent.
func (c *Provider) Deregister(ctx context.Context, serviceID string) error {
	q := (&api.QueryOptions{}).WithContext(ctx)
	if err := c.client.Agent().ServiceDeregisterOpts(serviceID, q); err != nil {
		return fmt.Errorf("consul deregister %q: %w", serviceID, err)
	}

	c.mu.Lock()
	if c.stats.RegisteredServices > 0 {
		c.stats.RegisteredServices--
	}
	c.mu.Unlock()

	c.log.Info("service deregistered", logger.Fields(logger.FieldServiceID, serviceID))
	return nil
}

// Discover queries Consul for passing instances of the named service.
func (c *Provider) Discover(ctx context.Context, serviceName string) ([]discovery.ServiceInstance, error) {
	q := (&api.QueryOptions{}).WithContext(ctx)
	entries, _, err := c.client.Health().Service(serviceName, "", true, q)
	if err != nil {
		return nil, fmt.Errorf("consul discover %q: %w", serviceName, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", discovery.ErrNoHealthyEndpoints, serviceName)
	}
	return toInstances(entries, time.Now()), nil
}

// Watch emits the instance set each time the blocking query index advances.
// The channel is closed when ctx is cancelled.
func (c *Provider) Watch(ctx context.Context, serviceName string) (<-chan []discovery.ServiceInstance, error) {
	ch := make(chan []discovery.ServiceInstance, 1)

	go func() {
		defer close(ch)
		var lastIndex uint64
		for ctx.Err() == nil {
			opts := (&api.QueryOptions{
				WaitIndex: lastIndex,
				WaitTime:  c.ccfg.WaitTime,
			}).WithContext(ctx)

			entries, meta, err := c.client.Health().Service(serviceName, "", true, opts)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Warn("consul watch error", logger.Fields("service", serviceName, logger.FieldError, err.Error()))
				select {
				case <-time.After(c.ccfg.RetryInterval):
				case <-ctx.Done():
					return
				}
				continue
			}

			if meta.LastIndex == lastIndex {
				continue
			}
			// a reset index means the agent restarted; start over
			if meta.LastIndex < lastIndex {
				lastIndex = 0
				continue
			}
			lastIndex = meta.LastIndex

			select {
			case ch <- toInstances(entries, time.Now()):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// Close is a no-op; the HTTP client does not require explicit closing.
func (c *Provider) Close() error {
	return nil
}

// Stats returns current registry statistics.
func (c *Provider) Stats() discovery.RegistryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func toInstances(entries []*api.ServiceEntry, now time.Time) []discovery.ServiceInstance {
	instances := make([]discovery.ServiceInstance, 0, len(entries))
	for _, e := range entries {
		instances = append(instances, serviceEntryToInstance(e, now))
	}
	return instances
}

func serviceEntryToInstance(e *api.ServiceEntry, now time.Time) discovery.ServiceInstance {
	health := discovery.HealthHealthy
	for _, chk := range e.Checks {
		if chk.Status != api.HealthPassing {
			health = discovery.HealthUnhealthy
			break
		}
	}

	protocol := e.Service.Meta["protocol"]
	if protocol == "" {
		for _, tag := range e.Service.Tags {
			if tag == "http" || tag == "grpc" || tag == "websocket" {
				protocol = tag
				break
			}
		}
	}

	weight, _ := strconv.Atoi(e.Service.Meta["weight"])

	// services registered without an address inherit the node's
	address := e.Service.Address
	if address == "" && e.Node != nil {
		address = e.Node.Address
	}

	return discovery.ServiceInstance{
		ID:       e.Service.ID,
		Name:     e.Service.Service,
		Address:  address,
		Port:     e.Service.Port,
		Protocol: protocol,
		Tags:     e.Service.Tags,
		Metadata: e.Service.Meta,
		Health:   health,
		Weight:   weight,
		LastSeen: now,
	}
}

var (
	_ discovery.Registry  = (*Provider)(nil)
	_ discovery.Discovery = (*Provider)(nil)
)
