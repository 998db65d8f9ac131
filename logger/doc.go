// Package logger provides structured logging built on zerolog.
//
// Loggers are scoped per service and per component, and take optional field
// maps on every call:
//
//	log := logger.NewDefault("orders").WithComponent("discovery")
//	log.Info("instance resolved", logger.Fields("host", host, "port", port))
package logger
