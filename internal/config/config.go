// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the configuration leaves a value unset
const (
	DefaultListen          = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = 10 * 1024 * 1024
	DefaultUserAgent       = "reachlist/1.0"
	DefaultMetricsPath     = "/metrics"
	DefaultNamespace       = "reachlist"
)

// Default returns a configuration with every default applied.
func Default() *ServiceConfig {
	cfg := &ServiceConfig{Name: "reachlist"}
	cfg.Metrics.Enabled = true
	applyDefaults(cfg)
	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*ServiceConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes
func LoadFromBytes(data []byte) (*ServiceConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expandedData := expandEnvironmentVariables(string(data))

	config := ServiceConfig{}
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*ServiceConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// SaveToWriter saves configuration to an io.Writer
func SaveToWriter(config *ServiceConfig, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	return nil
}

// GenerateTemplate generates a template configuration with every default
// spelled out
func GenerateTemplate() ServiceConfig {
	cfg := *Default()
	cfg.Source.Timeout = 30 * time.Second
	cfg.Logging.Format = "json"
	cfg.Overrides = map[string]string{
		ParamProto: "http,https",
	}
	return cfg
}

// expandEnvironmentVariables substitutes ${VAR} references in the raw YAML
func expandEnvironmentVariables(content string) string {
	return os.ExpandEnv(content)
}

func applyDefaults(config *ServiceConfig) {
	if config.Name == "" {
		config.Name = "reachlist"
	}

	if config.Server.Listen == "" {
		config.Server.Listen = DefaultListen
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = DefaultWriteTimeout
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = DefaultIdleTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if config.Server.RateLimit > 0 && config.Server.Burst == 0 {
		config.Server.Burst = 10
	}

	if config.Source.MaxBodyBytes == 0 {
		config.Source.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.Source.UserAgent == "" {
		config.Source.UserAgent = DefaultUserAgent
	}

	if config.Probe.Concurrency == 0 {
		config.Probe.Concurrency = 1
	}
	if config.Probe.UserAgent == "" {
		config.Probe.UserAgent = DefaultUserAgent
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	if config.Metrics.Namespace == "" {
		config.Metrics.Namespace = DefaultNamespace
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = DefaultMetricsPath
	}
}
