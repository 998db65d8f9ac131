package discovery

import (
	"time"

	"github.com/kbukum/localdiscovery/validation"
)

// ProviderLocal names the self-only fallback used when no real discovery
// integration is available.
const ProviderLocal = "local"

// Config holds service discovery and registration configuration.
type Config struct {
	// Enabled turns on the real discovery integration. When false the
	// local fallback is used.
	Enabled bool `mapstructure:"enabled"`

	// Provider selects the discovery backend, e.g. "consul".
	Provider string `mapstructure:"provider"`

	// Registration describes how this process registers itself.
	Registration RegistrationConfig `mapstructure:"registration"`

	// HealthCheckPath is the HTTP path the registry polls (e.g. "/health").
	HealthCheckPath string `mapstructure:"health_check_path"`

	// HealthCheckInterval controls how often health is polled.
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`

	// HealthCheckTimeout is the timeout for a single health check.
	HealthCheckTimeout time.Duration `mapstructure:"health_check_timeout"`

	// DeregisterAfter removes the service after being critical for this duration.
	DeregisterAfter time.Duration `mapstructure:"deregister_after"`

	// CacheTTL is how long discovered endpoints are cached by Client.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Services lists the service names the client discovers in DiscoverAll.
	Services []string `mapstructure:"services"`

	// Criticality maps service names to their criticality level.
	Criticality map[string]Criticality `mapstructure:"criticality"`
}

// RegistrationConfig describes the local service as advertised to a registry.
type RegistrationConfig struct {
	ServiceName    string            `mapstructure:"service_name"`
	ServiceID      string            `mapstructure:"service_id"`
	ServiceAddress string            `mapstructure:"service_address"`
	ServicePort    int               `mapstructure:"service_port"`
	Tags           []string          `mapstructure:"tags"`
	Metadata       map[string]string `mapstructure:"metadata"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "consul"
	}
	if c.HealthCheckPath == "" {
		c.HealthCheckPath = "/health"
	}
	if c.HealthCheckInterval == 0 {
		c.HealthCheckInterval = 10 * time.Second
	}
	if c.HealthCheckTimeout == 0 {
		c.HealthCheckTimeout = 5 * time.Second
	}
	if c.DeregisterAfter == 0 {
		c.DeregisterAfter = time.Minute
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Second
	}
}

// Validate checks the configuration. A disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.New().
		Required("discovery.provider", c.Provider).
		Check(c.Provider != ProviderLocal, "discovery.provider", "local is selected by disabling discovery").
		Range("discovery.registration.service_port", c.Registration.ServicePort, 0, 65535).
		Validate()
}

// BuildClientConfig derives a ClientConfig.
func (c *Config) BuildClientConfig() ClientConfig {
	return ClientConfig{
		CacheTTL:    c.CacheTTL,
		Services:    c.Services,
		Criticality: c.Criticality,
	}
}
