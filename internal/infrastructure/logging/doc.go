// Package logging provides structured logging for Planteur Core.
//
// It wraps log/slog so every component emits entries with the same
// default fields (service, version) and honours the configured level.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	agg := monitoring.NewAggregator(registry, monitoring.Options{
//	    Logger: logger.Component("aggregator"),
//	})
//
// Components never import this package directly; they declare a small
// Logger interface which *Logger satisfies.
package logging
