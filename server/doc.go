// Package server provides the embedded HTTP listener: Gin served over h2c,
// wrapped in recovery, request-ID, CORS and request-logging middleware
// (server/middleware).
//
// The server records the port it actually bound, so a configured port of 0
// still yields a concrete port via BoundPort. It implements
// discovery.PortReporter and is the listener the local discovery fallback
// advertises.
//
// Endpoints (server/endpoint):
//
//   - /health, /alive, /ready: component health aggregation, liveness and readiness
//   - /info: build information and uptime
//   - /discovery/services: service names known to the discovery client
//   - /discovery/services/:name: instances of one service
package server
