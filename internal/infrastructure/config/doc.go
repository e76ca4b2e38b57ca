// Package config handles loading and validating Planteur Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (PLANTEUR_*)
//   - Validation of required fields
//   - Default value handling
//
// The plant description is a separate file (see package plant); this
// package only records where it lives.
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Gateway.Name)
package config
