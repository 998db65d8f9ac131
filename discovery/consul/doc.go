// Package consul provides the Consul discovery backend.
//
// Importing the package registers the "consul" provider factory. A binary
// that does not import it has no real backend linked, so
// discovery.ShouldUseLocalFallback reports true and the local
// self-descriptor is used instead.
package consul
