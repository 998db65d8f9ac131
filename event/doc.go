// Package event carries lifecycle events between the discovery layer and
// whoever listens for them.
//
// A Sink receives events. Bus delivers to in-process subscribers,
// RedisSink forwards to a Redis pub/sub channel and MultiSink fans one
// publish out to several sinks.
package event
