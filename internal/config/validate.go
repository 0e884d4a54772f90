// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	ports := map[string]int{
		"health_port":  s.HealthPort,
		"http_port":    s.HTTPPort,
		"rtmp_port":    s.RTMPPort,
		"rtmfp_port":   s.RTMFPPort,
		"metrics_port": s.MetricsPort,
	}
	for name, port := range ports {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
		}
	}

	seen := make(map[int]string, len(ports))
	for name, port := range ports {
		if other, ok := seen[port]; ok {
			return fmt.Errorf("%s and %s must be different, both are %d", other, name, port)
		}
		seen[port] = name
	}
	return nil
}
