package event

import (
	"context"
	"errors"
)

// MultiSink publishes each event to every sink it holds. Nil sinks are
// skipped.
type MultiSink []Sink

var _ Sink = MultiSink(nil)

func (m MultiSink) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
