package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/localdiscovery/component"
	"github.com/kbukum/localdiscovery/discovery/hostinfo"
	"github.com/kbukum/localdiscovery/logger"
)

// Component builds the configured real backend, registers the local service
// with it and exposes a caching Client. Use it only when
// ShouldUseLocalFallback is false.
type Component struct {
	// mu guards the started state; HTTP handlers read Client while Start runs.
	mu          sync.RWMutex
	registry    Registry
	discovery   Discovery
	client      *Client
	selfID      string
	cfg         Config
	providerCfg any
	listener    PortReporter
	resolver    hostinfo.Resolver
	log         *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// ComponentOption configures a Component.
type ComponentOption func(*Component)

// WithListener supplies the embedded listener whose bound port is advertised
// when no registration port is configured.
func WithListener(l PortReporter) ComponentOption {
	return func(c *Component) { c.listener = l }
}

// WithResolver overrides the hostname resolver used for self-registration.
func WithResolver(r hostinfo.Resolver) ComponentOption {
	return func(c *Component) { c.resolver = r }
}

// NewComponent creates a discovery Component. providerCfg holds
// provider-specific configuration (e.g. *consul.Config).
func NewComponent(cfg Config, providerCfg any, log *logger.Logger, opts ...ComponentOption) *Component {
	cfg.ApplyDefaults()
	c := &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		resolver:    hostinfo.System{},
		log:         logger.Named(log, "discovery"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Component) Name() string { return "discovery" }

// Registry returns the underlying Registry, or nil if not started.
func (c *Component) Registry() Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry
}

// Client returns the caching client, or nil if not started.
func (c *Component) Client() DiscoveryClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil
	}
	return c.client
}

// Start initialises the provider and registers the local service.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return ErrDiscoveryDisabled
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("discovery config: %w", err)
	}

	f, ok := lookupProvider(c.cfg.Provider)
	if !ok {
		return fmt.Errorf("unsupported discovery provider %q (not registered)", c.cfg.Provider)
	}
	reg, disc, err := f(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("discovery start: %w", err)
	}

	svc := c.selfInfo(ctx)
	if err := svc.Validate(); err != nil {
		_ = disc.Close()
		return fmt.Errorf("discovery: self registration: %w", err)
	}
	if err := reg.Register(ctx, svc); err != nil {
		_ = disc.Close()
		return fmt.Errorf("discovery: register self: %w", err)
	}
	client := NewClient(disc, c.cfg.BuildClientConfig(), c.log)

	c.mu.Lock()
	c.registry = reg
	c.discovery = disc
	c.selfID = svc.ID
	c.client = client
	c.mu.Unlock()

	c.log.Info("discovery component started", logger.Fields("provider", c.cfg.Provider, logger.FieldServiceID, svc.ID))
	return nil
}

func (c *Component) selfInfo(ctx context.Context) *ServiceInfo {
	reg := c.cfg.Registration
	addr := reg.ServiceAddress
	if addr == "" {
		addr = hostinfo.ResolveOrDefault(ctx, c.resolver, c.log)
	}
	port := reg.ServicePort
	if c.listener != nil {
		if p, ok := c.listener.BoundPort(); ok && p > 0 {
			port = p
		}
	}
	info := &ServiceInfo{
		ID:       reg.ServiceID,
		Name:     reg.ServiceName,
		Address:  addr,
		Port:     port,
		Tags:     reg.Tags,
		Metadata: reg.Metadata,
	}
	info.ID = info.Instance().ID
	return info
}

// Stop deregisters the local service and releases resources.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	reg, disc, client, id := c.registry, c.discovery, c.client, c.selfID
	c.registry, c.discovery, c.client, c.selfID = nil, nil, nil, ""
	c.mu.Unlock()

	if reg != nil && id != "" {
		if err := reg.Deregister(ctx, id); err != nil {
			c.log.Warn("failed to deregister on stop", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	if client != nil {
		return client.Close()
	}
	if disc != nil {
		return disc.Close()
	}
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	reg, disc := c.registry, c.discovery
	c.mu.RUnlock()

	if disc == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "discovery not initialized"}
	}
	if reg != nil && reg.Stats().RegisteredServices > 0 {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: c.cfg.Provider}
	}
	return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: "no services registered"}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Discovery",
		Type:    "discovery",
		Details: fmt.Sprintf("provider=%s service=%s", c.cfg.Provider, c.cfg.Registration.ServiceName),
		Port:    c.cfg.Registration.ServicePort,
	}
}
