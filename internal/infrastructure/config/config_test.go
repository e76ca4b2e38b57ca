package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
gateway:
  id: "greenhouse"
plants:
  file: "/etc/planteur/plants.json"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
adapters:
  network:
    port: 15000
  wired:
    poll_interval: 300
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.ID != "greenhouse" {
		t.Errorf("Gateway.ID = %q, want %q", cfg.Gateway.ID, "greenhouse")
	}
	if cfg.Plants.File != "/etc/planteur/plants.json" {
		t.Errorf("Plants.File = %q", cfg.Plants.File)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.Adapters.Network.Port != 15000 {
		t.Errorf("Adapters.Network.Port = %d, want 15000", cfg.Adapters.Network.Port)
	}
	// Defaults survive partial sections.
	if cfg.Adapters.Network.BufferSize != 2048 {
		t.Errorf("Adapters.Network.BufferSize = %d, want default 2048", cfg.Adapters.Network.BufferSize)
	}
	if cfg.Bus.ReadingQueueSize != 256 {
		t.Errorf("Bus.ReadingQueueSize = %d, want default 256", cfg.Bus.ReadingQueueSize)
	}
	if got := cfg.WiredPollInterval(); got != 300*time.Millisecond {
		t.Errorf("WiredPollInterval() = %v, want 300ms", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
gateway:
  id: ""
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error for empty gateway.id, got nil")
	}
	if !strings.Contains(err.Error(), "gateway.id") {
		t.Errorf("error %q should mention gateway.id", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
plants:
  file: "from-file.yaml"
`)
	t.Setenv("PLANTEUR_PLANTS_FILE", "from-env.yaml")
	t.Setenv("PLANTEUR_DATABASE_PATH", "/var/lib/planteur/env.db")
	t.Setenv("PLANTEUR_NETWORK_PORT", "16000")
	t.Setenv("PLANTEUR_SERIAL_PORT", "/dev/ttyACM0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Plants.File != "from-env.yaml" {
		t.Errorf("Plants.File = %q, want env override", cfg.Plants.File)
	}
	if cfg.Database.Path != "/var/lib/planteur/env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Adapters.Network.Port != 16000 {
		t.Errorf("Adapters.Network.Port = %d, want 16000", cfg.Adapters.Network.Port)
	}
	if cfg.Adapters.Serial.Port != "/dev/ttyACM0" {
		t.Errorf("Adapters.Serial.Port = %q, want /dev/ttyACM0", cfg.Adapters.Serial.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing gateway ID",
			mutate:  func(c *Config) { c.Gateway.ID = "" },
			wantErr: "gateway.id",
		},
		{
			name:    "missing plants file",
			mutate:  func(c *Config) { c.Plants.File = "" },
			wantErr: "plants.file",
		},
		{
			name:    "zero reading queue",
			mutate:  func(c *Config) { c.Bus.ReadingQueueSize = 0 },
			wantErr: "bus.reading_queue_size",
		},
		{
			name:    "zero demand queue",
			mutate:  func(c *Config) { c.Bus.DemandQueueSize = 0 },
			wantErr: "bus.demand_queue_size",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "influx enabled without URL",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
		{
			name:    "network port out of range",
			mutate:  func(c *Config) { c.Adapters.Network.Port = 70000 },
			wantErr: "adapters.network.port",
		},
		{
			name:    "non-positive poll interval",
			mutate:  func(c *Config) { c.Adapters.Wired.PollInterval = 0 },
			wantErr: "adapters.wired.poll_interval",
		},
		{
			name:    "http port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name: "disabled http ignores port",
			mutate: func(c *Config) {
				c.HTTP.Enabled = false
				c.HTTP.Port = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Gateway.ID = ""
	cfg.Database.Path = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"gateway.id", "database.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestNotifyOpenTimeout(t *testing.T) {
	cfg := Default()
	cfg.MQTT.Notify.OpenTimeout = 12
	if got := cfg.NotifyOpenTimeout(); got != 12*time.Second {
		t.Errorf("NotifyOpenTimeout() = %v, want 12s", got)
	}
}
