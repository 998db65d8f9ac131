package main

import (
	"fmt"

	"github.com/kbukum/localdiscovery/config"
	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/discovery/consul"
	"github.com/kbukum/localdiscovery/redis"
	"github.com/kbukum/localdiscovery/server"
)

// AppConfig is the full configuration of the localdiscovery binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server    server.Config    `yaml:"server" mapstructure:"server"`
	Discovery discovery.Config `yaml:"discovery" mapstructure:"discovery"`
	Consul    consul.Config    `yaml:"consul" mapstructure:"consul"`
	Redis     redis.Config     `yaml:"redis" mapstructure:"redis"`
}

func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Discovery.ApplyDefaults()
	if c.Discovery.Registration.ServiceName == "" {
		c.Discovery.Registration.ServiceName = c.ApplicationName()
	}
	c.Redis.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Discovery.Validate(); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// configuredPort returns server.port when one is set.
func (c *AppConfig) configuredPort() *int {
	if c.Server.Port <= 0 {
		return nil
	}
	p := c.Server.Port
	return &p
}
