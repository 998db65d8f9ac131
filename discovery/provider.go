package discovery

import (
	"sort"
	"sync"

	"github.com/kbukum/localdiscovery/logger"
)

// ProviderFactory creates a Registry and Discovery pair from a Config.
// providerCfg holds provider-specific configuration (e.g. *consul.Config).
type ProviderFactory func(cfg Config, providerCfg any, log *logger.Logger) (Registry, Discovery, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]ProviderFactory)
)

// RegisterProviderFactory makes a discovery backend available under name.
// Backend packages call it from init, so a backend that is not linked into
// the binary is simply absent.
func RegisterProviderFactory(name string, f ProviderFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

func lookupProvider(name string) (ProviderFactory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Providers returns the names of all registered backends, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShouldUseLocalFallback decides whether the local fallback is activated: it
// is true when discovery is disabled or the configured backend is not linked.
func ShouldUseLocalFallback(cfg Config) bool {
	if !cfg.Enabled {
		return true
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "consul"
	}
	_, ok := lookupProvider(provider)
	return !ok
}
