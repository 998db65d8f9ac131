// Package hostinfo resolves the local host's network name.
package hostinfo

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/kbukum/localdiscovery/errors"
	"github.com/kbukum/localdiscovery/logger"
)

// DefaultHost is substituted when the local hostname cannot be resolved.
const DefaultHost = "localhost"

// Resolver returns the local host's name.
type Resolver interface {
	Hostname(ctx context.Context) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (string, error)

func (f ResolverFunc) Hostname(ctx context.Context) (string, error) { return f(ctx) }

// System resolves the kernel hostname and checks that it maps to an address,
// so a name other hosts cannot reach is reported as a failure.
type System struct {
	// LookupHost defaults to net.DefaultResolver.LookupHost.
	LookupHost func(ctx context.Context, host string) ([]string, error)
	// ReadHostname defaults to os.Hostname.
	ReadHostname func() (string, error)
}

func (s System) Hostname(ctx context.Context) (string, error) {
	hostnameFn := s.ReadHostname
	if hostnameFn == nil {
		hostnameFn = os.Hostname
	}
	lookup := s.LookupHost
	if lookup == nil {
		lookup = net.DefaultResolver.LookupHost
	}

	name, err := hostnameFn()
	if err != nil {
		return "", fmt.Errorf("read hostname: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("read hostname: empty")
	}
	addrs, err := lookup(ctx, name)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("lookup %s: no addresses", name)
	}
	return name, nil
}

// ResolveOrDefault returns the resolved hostname, or DefaultHost after
// logging the failure. It never fails.
func ResolveOrDefault(ctx context.Context, r Resolver, log *logger.Logger) string {
	if r == nil {
		r = System{}
	}
	name, err := r.Hostname(ctx)
	if err == nil && name != "" {
		return name
	}
	if err == nil {
		err = fmt.Errorf("resolver returned empty hostname")
	}
	appErr := errors.HostResolution(err)
	log.Error("Cannot get host info", logger.Fields(
		"code", string(appErr.Code),
		logger.FieldError, err.Error(),
		"fallback", DefaultHost,
	))
	return DefaultHost
}
