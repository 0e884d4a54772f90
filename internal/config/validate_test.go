// If you are AI: This file contains unit tests for configuration validation.

package config

import "testing"

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HealthPort:  8080,
			HTTPPort:    8081,
			RTMPPort:    1935,
			RTMFPPort:   1936,
			MetricsPort: 9090,
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config to pass, got: %v", err)
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RTMPPort = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for port 0")
	}

	cfg = validConfig()
	cfg.Server.MetricsPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for port > 65535")
	}
}

func TestValidateRejectsDuplicatePorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RTMFPPort = cfg.Server.RTMPPort
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for duplicate ports")
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()

	if cfg.Server.HealthPort != 8080 {
		t.Errorf("Expected default health_port 8080, got %d", cfg.Server.HealthPort)
	}
	if cfg.Server.HTTPPort != 8081 {
		t.Errorf("Expected default http_port 8081, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.RTMPPort != 1935 {
		t.Errorf("Expected default rtmp_port 1935, got %d", cfg.Server.RTMPPort)
	}
	if cfg.Server.RTMFPPort != 1936 {
		t.Errorf("Expected default rtmfp_port 1936, got %d", cfg.Server.RTMFPPort)
	}
	if cfg.Server.MetricsPort != 9090 {
		t.Errorf("Expected default metrics_port 9090, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RecordDir != "recordings" {
		t.Errorf("Expected default record_dir 'recordings', got %q", cfg.Server.RecordDir)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaulted config should validate, got: %v", err)
	}
}
