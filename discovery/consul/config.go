package consul

import (
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/localdiscovery/validation"
)

// Config holds Consul agent connection settings.
type Config struct {
	// Address is the Consul agent address (default: localhost:8500).
	Address string `yaml:"address" mapstructure:"address"`

	// Scheme is the URI scheme (http/https).
	Scheme string `yaml:"scheme" mapstructure:"scheme"`

	Datacenter string `yaml:"datacenter" mapstructure:"datacenter"`

	// Token is the ACL token sent with every request.
	Token string `yaml:"token" mapstructure:"token"`

	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// WaitTime bounds a single blocking query in Watch.
	WaitTime time.Duration `yaml:"wait_time" mapstructure:"wait_time"`

	// RetryInterval is the pause after a failed blocking query.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`
}

// TLSConfig holds TLS settings for the agent connection.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	CACert             string `yaml:"ca_cert" mapstructure:"ca_cert"`
	ClientCert         string `yaml:"client_cert" mapstructure:"client_cert"`
	ClientKey          string `yaml:"client_key" mapstructure:"client_key"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// ApplyDefaults sets sensible defaults for Config.
func (c *Config) ApplyDefaults() {
	if c.Address == "" {
		c.Address = "localhost:8500"
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
	if c.WaitTime == 0 {
		c.WaitTime = 30 * time.Second
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = time.Second
	}
}

// Validate checks if the Consul configuration is valid.
func (c *Config) Validate() error {
	return validation.New().
		Required("consul.address", c.Address).
		OneOf("consul.scheme", c.Scheme, "http", "https").
		Check(c.TLS == nil || !c.TLS.Enabled || c.Scheme == "https", "consul.tls", "TLS enabled but scheme is not https").
		Check(c.WaitTime >= 0, "consul.wait_time", "must be non-negative").
		Check(c.RetryInterval >= 0, "consul.retry_interval", "must be non-negative").
		Validate()
}

func (c *Config) apiConfig() *api.Config {
	apiCfg := api.DefaultConfig()
	apiCfg.Address = c.Address
	apiCfg.Scheme = c.Scheme
	apiCfg.Token = c.Token
	if c.Datacenter != "" {
		apiCfg.Datacenter = c.Datacenter
	}
	if c.TLS != nil && c.TLS.Enabled {
		apiCfg.TLSConfig = api.TLSConfig{
			CAFile:             c.TLS.CACert,
			CertFile:           c.TLS.ClientCert,
			KeyFile:            c.TLS.ClientKey,
			InsecureSkipVerify: c.TLS.InsecureSkipVerify,
		}
	}
	return apiCfg
}
