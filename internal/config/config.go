// If you are AI: This file defines the configuration structure for driftcast.
// It uses strict YAML decoding and explicit defaults.

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the complete server configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Relays     []RelayConfig    `yaml:"relays,omitempty"`
	Rendezvous RendezvousConfig `yaml:"rendezvous,omitempty"`
}

// ServerConfig defines listener settings for every protocol surface.
type ServerConfig struct {
	HealthPort  int    `yaml:"health_port"`  // Port for health endpoint
	HTTPPort    int    `yaml:"http_port"`    // Port for httpflv/wsflv/api
	RTMPPort    int    `yaml:"rtmp_port"`    // Port for RTMP chunk-stream ingest
	RTMFPPort   int    `yaml:"rtmfp_port"`   // Port for RTMFP/UDP ingest
	MetricsPort int    `yaml:"metrics_port"` // Port for the Prometheus exposition endpoint
	Debug       bool   `yaml:"debug,omitempty"`
	RecordDir   string `yaml:"record_dir,omitempty"` // Directory the recorder writes .flv files under
}

// RelayConfig defines a relay task configuration.
type RelayConfig struct {
	App       string `yaml:"app"`                 // Application name
	Name      string `yaml:"name"`                // Stream name
	Mode      string `yaml:"mode"`                // "pull" or "push"
	RemoteURL string `yaml:"remote_url"`          // Remote RTMP URL
	Reconnect bool   `yaml:"reconnect,omitempty"` // Enable reconnect on failure
}

// RendezvousConfig configures the peer-rendezvous directory.
type RendezvousConfig struct {
	// RedisAddr, when set, backs the directory with rendezvous.RedisStore
	// instead of the default in-memory map.
	RedisAddr string `yaml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db,omitempty"`
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8081
	}
	if c.Server.RTMPPort == 0 {
		c.Server.RTMPPort = 1935
	}
	if c.Server.RTMFPPort == 0 {
		c.Server.RTMFPPort = 1936
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	if c.Server.RecordDir == "" {
		c.Server.RecordDir = "recordings"
	}
}
