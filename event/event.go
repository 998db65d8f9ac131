package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/localdiscovery/discovery"
)

// TypeInstanceRegistered is the event type of InstanceRegistered.
const TypeInstanceRegistered = "instance.registered"

// Event is anything a Sink can publish.
type Event interface {
	EventID() string
	EventType() string
}

// Sink receives published events.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

// InstanceRegistered announces that an instance has registered itself.
// Environment is the configuration the instance was started with; it is
// delivered in-process only and never serialized.
type InstanceRegistered struct {
	ID          string                    `json:"id"`
	Type        string                    `json:"type"`
	Source      string                    `json:"source"`
	Instance    discovery.ServiceInstance `json:"instance"`
	Timestamp   time.Time                 `json:"timestamp"`
	Environment any                       `json:"-"`
}

// NewInstanceRegistered builds an InstanceRegistered with a fresh ID.
func NewInstanceRegistered(source string, inst discovery.ServiceInstance, env any) InstanceRegistered {
	return InstanceRegistered{
		ID:          uuid.NewString(),
		Type:        TypeInstanceRegistered,
		Source:      source,
		Instance:    inst,
		Timestamp:   time.Now().UTC(),
		Environment: env,
	}
}

func (e InstanceRegistered) EventID() string   { return e.ID }
func (e InstanceRegistered) EventType() string { return TypeInstanceRegistered }
