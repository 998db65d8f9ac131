package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kbukum/localdiscovery/logger"
)

// Publisher is the part of redis.Client RedisSink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisSink forwards events as JSON to a Redis pub/sub channel.
type RedisSink struct {
	pub     Publisher
	channel string
	log     *logger.Logger
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink creates a sink publishing to channel.
func NewRedisSink(pub Publisher, channel string, log *logger.Logger) *RedisSink {
	return &RedisSink{pub: pub, channel: channel, log: logger.Named(log, "redis-sink")}
}

func (s *RedisSink) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.EventType(), err)
	}
	n, err := s.pub.Publish(ctx, s.channel, payload)
	if err != nil {
		return err
	}
	s.log.Info("event forwarded", logger.Fields(
		logger.FieldEventID, e.EventID(), "channel", s.channel, "receivers", n,
	))
	return nil
}

// DecodeInstanceRegistered parses a payload written by RedisSink.
func DecodeInstanceRegistered(payload []byte) (InstanceRegistered, error) {
	var e InstanceRegistered
	if err := json.Unmarshal(payload, &e); err != nil {
		return InstanceRegistered{}, fmt.Errorf("decode %s: %w", TypeInstanceRegistered, err)
	}
	if e.Type != TypeInstanceRegistered {
		return InstanceRegistered{}, fmt.Errorf("unexpected event type %q", e.Type)
	}
	return e, nil
}
