// Planteur Core - plant-watering gateway
//
// This is the main entry point for the Planteur gateway. It collects soil
// readings from network, serial, wired and MQTT peripherals, records them,
// and emits watering demands for plants whose soil is too dry.
//
// Usage:
//
//	planteur run --config configs/config.yaml
//	planteur plants check configs/plants.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configEnvVar names the environment variable consulted when --config is absent.
const configEnvVar = "PLANTEUR_CONFIG"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the bare binary is the same
// as "planteur run".
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "planteur",
		Short:         "Planteur plant-watering gateway",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWithSignals(resolveConfigPath(configPath))
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (default $"+configEnvVar+" or "+defaultConfigPath+")")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newPlantsCmd())
	return root
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the gateway and block until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWithSignals(resolveConfigPath(*configPath))
		},
	}
}

// runWithSignals runs the gateway until an interrupt or termination signal.
func runWithSignals(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return run(ctx, configPath)
}

// resolveConfigPath returns the configuration file path: the flag value,
// then PLANTEUR_CONFIG, then the default.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}
