package server

import (
	"context"
	"fmt"

	"github.com/kbukum/localdiscovery/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*ServerComponent)(nil)
	_ component.Describable = (*ServerComponent)(nil)
)

// ServerComponent wraps Server to implement component.Component.
type ServerComponent struct {
	server *Server
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

func (sc *ServerComponent) Name() string { return componentName }

// Server returns the wrapped server.
func (sc *ServerComponent) Server() *Server { return sc.server }

func (sc *ServerComponent) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

func (sc *ServerComponent) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

func (sc *ServerComponent) Health(_ context.Context) component.Health {
	if _, ok := sc.server.BoundPort(); ok {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "HTTP server not listening",
	}
}

// Describe reports the bound port once the server is listening, the
// configured one before that.
func (sc *ServerComponent) Describe() component.Description {
	cfg := sc.server.config
	port := cfg.Port
	if p, ok := sc.server.BoundPort(); ok {
		port = p
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d", cfg.Host, port),
		Port:    port,
	}
}
