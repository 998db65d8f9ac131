// Package config loads service configuration with Viper.
//
// A config.yml file is read first, then an optional .env file, then APP_*
// environment variables override individual keys (APP_SERVER_PORT sets
// server.port).
//
//	var cfg MyConfig
//	err := config.LoadConfig("orders", &cfg)
package config
