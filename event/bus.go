package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/localdiscovery/logger"
)

// Handler processes one event.
type Handler func(ctx context.Context, e Event) error

// Bus is an in-process Sink. Handlers run synchronously on the publishing
// goroutine, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription
	log      *logger.Logger
}

type subscription struct {
	id      int
	types   map[string]struct{}
	handler Handler
}

var _ Sink = (*Bus)(nil)

// NewBus creates an empty Bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{log: logger.Named(log, "event-bus")}
}

// Subscribe registers h for the given event types, or for every event when
// no type is given. The returned function removes the subscription.
func (b *Bus) Subscribe(h Handler, types ...string) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscription{id: b.nextID, handler: h}
	if len(types) > 0 {
		sub.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}
	b.handlers = append(b.handlers, sub)

	var once sync.Once
	return func() { once.Do(func() { b.remove(sub.id) }) }
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.handlers {
		if s.id == id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching handler. A failing handler does not
// stop delivery to the rest; all handler errors are joined.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers))
	copy(subs, b.handlers)
	b.mu.RUnlock()

	var errs []error
	delivered := 0
	for _, s := range subs {
		if s.types != nil {
			if _, ok := s.types[e.EventType()]; !ok {
				continue
			}
		}
		delivered++
		if err := s.handler(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("handler %d: %w", s.id, err))
		}
	}

	b.log.Debug("event published", logger.Fields(
		logger.FieldEventID, e.EventID(), "type", e.EventType(), "handlers", delivered,
	))
	return errors.Join(errs...)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
