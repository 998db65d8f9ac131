package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/localdiscovery/component"
	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/event"
)

// Component runs a Descriptor under the component registry. Register it
// after the server component so the listener's bound port is known by the
// time Start runs.
type Component struct {
	d      *Descriptor
	params Params
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps d; Start initializes it with params.
func NewComponent(d *Descriptor, params Params) *Component {
	return &Component{d: d, params: params}
}

func (c *Component) Name() string { return "discovery" }

// Descriptor returns the wrapped descriptor.
func (c *Component) Descriptor() *Descriptor { return c.d }

// Client returns the local discovery client.
func (c *Component) Client() discovery.DiscoveryClient { return c.d.AsDiscoveryClient() }

func (c *Component) Start(ctx context.Context) error {
	c.d.Initialize(ctx, c.params)
	return nil
}

func (c *Component) Stop(_ context.Context) error { return nil }

func (c *Component) Health(_ context.Context) component.Health {
	if _, ok := c.d.Instance(); !ok {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "local discovery not initialized"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "local (fallback)"}
}

func (c *Component) Describe() component.Description {
	self, _ := c.d.Instance()
	return component.Description{
		Name:    "Discovery",
		Type:    "discovery",
		Details: fmt.Sprintf("provider=%s service=%s state=%s", Source, self.Name, c.d.State()),
		Port:    self.Port,
	}
}

// Announcer returns a ready hook that publishes the registration to sink.
// A failed publish is logged by OnReady and does not fail startup; only
// announcing before Start is reported.
func (c *Component) Announcer(sink event.Sink) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := c.d.OnReady(ctx, sink)
		if errors.Is(err, discovery.ErrNotInitialized) {
			return err
		}
		return nil
	}
}
