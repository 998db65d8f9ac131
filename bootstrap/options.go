package bootstrap

import (
	"time"

	"github.com/kbukum/localdiscovery/component"
	"github.com/kbukum/localdiscovery/logger"
)

// DefaultGracefulTimeout bounds OnStop hooks plus component shutdown,
// including deregistration from the discovery backend.
const DefaultGracefulTimeout = 15 * time.Second

// Option configures NewApp. Options are not generic, so one set works for
// every config type.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	components      []component.Component
}

func newSettings(opts []Option) settings {
	s := settings{gracefulTimeout: DefaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger built from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout sets the shutdown budget. Non-positive values keep
// DefaultGracefulTimeout.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.gracefulTimeout = d
		}
	}
}

// WithComponents registers components at creation, in order, ahead of any
// added later with RegisterComponent.
func WithComponents(cs ...component.Component) Option {
	return func(s *settings) { s.components = append(s.components, cs...) }
}
