package config

import (
	"fmt"

	"github.com/kbukum/localdiscovery/logger"
	"github.com/kbukum/localdiscovery/validation"
)

// DefaultApplicationName is used when no service name is configured.
const DefaultApplicationName = "application"

// ServiceConfig contains the fields every service needs. Projects embed it in
// their own config structs.
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. Promoted through embedding
// so the embedding struct satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplicationName returns the configured name or "application".
func (c *ServiceConfig) ApplicationName() string {
	if c.Name == "" {
		return DefaultApplicationName
	}
	return c.Name
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.ApplicationName()
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields. An empty name is allowed;
// ApplicationName supplies the default.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
