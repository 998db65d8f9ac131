package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/localdiscovery/config"
	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/discovery/hostinfo"
	"github.com/kbukum/localdiscovery/event"
	"github.com/kbukum/localdiscovery/logger"
)

// Source marks instances and events produced by this package.
const Source = "local"

// State is the lifecycle state of a Descriptor.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateAnnounced
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateAnnounced:
		return "announced"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Params are the inputs Initialize reads from the host application.
type Params struct {
	// AppName is the service ID; config.DefaultApplicationName when empty.
	AppName string
	// ConfiguredPort is the statically configured server port, if any.
	ConfiguredPort *int
	// Listener is the embedded server. A bound port it reports wins over
	// ConfiguredPort.
	Listener discovery.PortReporter
	// Environment is handed through to the InstanceRegistered event.
	Environment any
}

// Descriptor describes the local process as a single service instance.
// Initialize and OnReady are one-shot; repeated calls are no-ops.
type Descriptor struct {
	mu       sync.Mutex
	state    State
	instance discovery.ServiceInstance
	env      any
	resolver hostinfo.Resolver
	now      func() time.Time
	log      *logger.Logger
}

// Option configures a Descriptor.
type Option func(*Descriptor)

// WithResolver replaces the system hostname resolver.
func WithResolver(r hostinfo.Resolver) Option {
	return func(d *Descriptor) { d.resolver = r }
}

// New creates an uninitialized Descriptor.
func New(log *logger.Logger, opts ...Option) *Descriptor {
	d := &Descriptor{
		resolver: hostinfo.System{},
		now:      time.Now,
		log:      logger.Named(log, "local-discovery"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Initialize resolves the local instance. It never fails: an unresolvable
// hostname is logged and replaced by "localhost". Only the first call has an
// effect; later calls return the same instance.
func (d *Descriptor) Initialize(ctx context.Context, p Params) discovery.ServiceInstance {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateUninitialized {
		return d.instance
	}

	name := p.AppName
	if name == "" {
		name = config.DefaultApplicationName
	}
	host := hostinfo.ResolveOrDefault(ctx, d.resolver, d.log)
	port := d.resolvePort(p)

	d.instance = discovery.ServiceInstance{
		ID:       discovery.InstanceID(name, host, port),
		Name:     name,
		Address:  host,
		Port:     port,
		Metadata: map[string]string{"source": Source},
		Health:   discovery.HealthHealthy,
		LastSeen: d.now().UTC(),
	}
	d.env = p.Environment
	d.state = StateInitialized

	d.log.Info("local service instance initialized", logger.Fields(
		logger.FieldServiceID, name, logger.FieldHost, host, logger.FieldPort, port,
	))
	return d.instance
}

func (d *Descriptor) resolvePort(p Params) int {
	if p.Listener != nil {
		if bound, ok := p.Listener.BoundPort(); ok && bound > 0 {
			return bound
		}
	}
	if p.ConfiguredPort == nil {
		return 0
	}
	if *p.ConfiguredPort < 0 {
		d.log.Warn("ignoring negative configured port", logger.Fields(logger.FieldPort, *p.ConfiguredPort))
		return 0
	}
	return *p.ConfiguredPort
}

// OnReady publishes one InstanceRegistered event to sink. It must follow
// Initialize. The descriptor counts as announced once the publish has been
// attempted, so a failed publish is returned but never retried.
func (d *Descriptor) OnReady(ctx context.Context, sink event.Sink) error {
	d.mu.Lock()
	switch d.state {
	case StateUninitialized:
		d.mu.Unlock()
		return discovery.ErrNotInitialized
	case StateAnnounced:
		d.mu.Unlock()
		return nil
	}
	d.state = StateAnnounced
	evt := event.NewInstanceRegistered(Source, d.instance, d.env)
	d.mu.Unlock()

	if sink == nil {
		d.log.Warn("no event sink configured, registration not announced", logger.Fields(logger.FieldServiceID, evt.Instance.Name))
		return nil
	}
	if err := sink.Publish(ctx, evt); err != nil {
		d.log.Error("failed to announce registration", logger.Fields(
			logger.FieldEventID, evt.ID, logger.FieldError, err.Error(),
		))
		return fmt.Errorf("announce %s: %w", evt.Instance.ID, err)
	}

	d.log.Info("instance registered", logger.Fields(
		logger.FieldEventID, evt.ID, logger.FieldServiceID, evt.Instance.Name,
	))
	return nil
}

// State returns the current lifecycle state.
func (d *Descriptor) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Instance returns the local instance and whether Initialize has run.
func (d *Descriptor) Instance() (discovery.ServiceInstance, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.instance, d.state != StateUninitialized
}

// AsDiscoveryClient returns a client that only knows the local instance.
// Before Initialize it knows nothing.
func (d *Descriptor) AsDiscoveryClient() discovery.DiscoveryClient {
	return &client{d: d}
}
