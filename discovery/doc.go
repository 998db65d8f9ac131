// Package discovery provides service discovery abstractions.
//
// A real backend (discovery/consul) registers a ProviderFactory from init.
// When discovery is disabled, or the configured backend is not linked into
// the binary, ShouldUseLocalFallback reports true and the composition root
// wires discovery/local instead: a stand-in client that only knows about the
// current process.
//
//   - Client: caching, load-balancing client over a Discovery backend
//   - Component: lifecycle wrapper that builds the backend and registers self
//   - ShouldUseLocalFallback: decides whether the local fallback is activated
package discovery
