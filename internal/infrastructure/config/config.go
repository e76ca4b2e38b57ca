package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Planteur Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Plants   PlantsConfig   `yaml:"plants"`
	Bus      BusConfig      `yaml:"bus"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Adapters AdaptersConfig `yaml:"adapters"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// GatewayConfig identifies this gateway instance.
type GatewayConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// PlantsConfig points at the static plant description.
type PlantsConfig struct {
	// File is a YAML or JSON document with a top-level "plants" list.
	File string `yaml:"file"`
}

// BusConfig sizes the two event queues.
type BusConfig struct {
	// ReadingQueueSize bounds the aggregator queue. Producers block when full.
	ReadingQueueSize int `yaml:"reading_queue_size"`

	// DemandQueueSize bounds the sprinkler's demand queue.
	DemandQueueSize int `yaml:"demand_queue_size"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// Ingest subscribes to plant readings published by remote peripherals.
	Ingest bool `yaml:"ingest"`

	// Notify publishes watering demands.
	Notify MQTTNotifyConfig `yaml:"notify"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"` // defaults to planteur-<gateway id>
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// MQTTNotifyConfig tunes the watering notifier's circuit breaker.
type MQTTNotifyConfig struct {
	Enabled bool `yaml:"enabled"`

	// FailureThreshold is the number of consecutive publish failures that opens the breaker.
	FailureThreshold int `yaml:"failure_threshold"`

	// OpenTimeout is how long the breaker stays open (seconds).
	OpenTimeout int `yaml:"open_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// AdaptersConfig contains per-transport adapter settings.
// Adapters only start when at least one plant uses their connection type.
type AdaptersConfig struct {
	Network NetworkAdapterConfig `yaml:"network"`
	Serial  SerialAdapterConfig  `yaml:"serial"`
	Wired   WiredAdapterConfig   `yaml:"wired"`
}

// NetworkAdapterConfig configures the UDP datagram listener.
type NetworkAdapterConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	BufferSize int    `yaml:"buffer_size"`
}

// SerialAdapterConfig configures the serial radio frame reader.
type SerialAdapterConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// WiredAdapterConfig configures polled wired sensors.
type WiredAdapterConfig struct {
	// PollInterval is the delay between two polls, in milliseconds.
	PollInterval int `yaml:"poll_interval"`
}

// HTTPConfig contains the read-only status server settings.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PLANTEUR_SECTION_KEY
// For example: PLANTEUR_DATABASE_PATH, PLANTEUR_PLANTS_FILE
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			ID:   "planteur-001",
			Name: "Planteur",
		},
		Plants: PlantsConfig{
			File: "configs/plants.yaml",
		},
		Bus: BusConfig{
			ReadingQueueSize: 256,
			DemandQueueSize:  64,
		},
		Database: DatabaseConfig{
			Path:        "./data/planteur.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Notify: MQTTNotifyConfig{
				Enabled:          true,
				FailureThreshold: 5,
				OpenTimeout:      30,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Adapters: AdaptersConfig{
			Network: NetworkAdapterConfig{
				Host:       "localhost",
				Port:       14246,
				BufferSize: 2048,
			},
			Serial: SerialAdapterConfig{
				Port:     "/dev/ttyUSB0",
				BaudRate: 9600,
			},
			Wired: WiredAdapterConfig{
				PollInterval: 1200,
			},
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PLANTEUR_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLANTEUR_PLANTS_FILE"); v != "" {
		cfg.Plants.File = v
	}

	if v := os.Getenv("PLANTEUR_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("PLANTEUR_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PLANTEUR_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PLANTEUR_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("PLANTEUR_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("PLANTEUR_SERIAL_PORT"); v != "" {
		cfg.Adapters.Serial.Port = v
	}
	if v := os.Getenv("PLANTEUR_NETWORK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Adapters.Network.Port = port
		}
	}
}

// Validate checks the configuration for errors.
//
// All problems are collected so an operator sees every mistake in one run.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Gateway.ID == "" {
		errs = append(errs, "gateway.id is required")
	}
	if c.Plants.File == "" {
		errs = append(errs, "plants.file is required")
	}

	if c.Bus.ReadingQueueSize < 1 {
		errs = append(errs, "bus.reading_queue_size must be at least 1")
	}
	if c.Bus.DemandQueueSize < 1 {
		errs = append(errs, "bus.demand_queue_size must be at least 1")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Adapters.Network.Port < 1 || c.Adapters.Network.Port > 65535 {
		errs = append(errs, "adapters.network.port must be between 1 and 65535")
	}
	if c.Adapters.Network.BufferSize < 1 {
		errs = append(errs, "adapters.network.buffer_size must be positive")
	}
	if c.Adapters.Wired.PollInterval < 1 {
		errs = append(errs, "adapters.wired.poll_interval must be positive")
	}

	if c.HTTP.Enabled && (c.HTTP.Port < 1 || c.HTTP.Port > 65535) {
		errs = append(errs, "http.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// WiredPollInterval returns the wired adapter poll interval as a Duration.
func (c *Config) WiredPollInterval() time.Duration {
	return time.Duration(c.Adapters.Wired.PollInterval) * time.Millisecond
}

// NotifyOpenTimeout returns the notifier breaker open timeout as a Duration.
func (c *Config) NotifyOpenTimeout() time.Duration {
	return time.Duration(c.MQTT.Notify.OpenTimeout) * time.Second
}
