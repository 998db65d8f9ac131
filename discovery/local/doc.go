// Package local provides the discovery fallback used when no real registry
// integration is linked or enabled.
//
// A Descriptor resolves this process's own host and port once, serves a
// discovery.DiscoveryClient that only knows about that single instance, and
// announces an event.InstanceRegistered exactly once when the application
// reports ready:
//
//	d := local.New(log)
//	d.Initialize(ctx, local.Params{AppName: "orders", ConfiguredPort: &port, Listener: srv})
//	client := d.AsDiscoveryClient()
//	...
//	d.OnReady(ctx, bus)
//
// Port 0 means the port is unknown or nothing is listening.
package local
