// internal/config/types.go

// Package config provides the service configuration for reachlist and the
// per-invocation parameter resolution. The service configuration is loaded
// from YAML and describes how the HTTP service, source loader and prober
// behave; Params is the immutable record one filter run works from.
package config

import (
	"time"
)

// ServiceConfig represents the main configuration structure of the service.
type ServiceConfig struct {
	// Name identifies this deployment in logs
	Name string `yaml:"name" json:"name"`

	// Server controls the HTTP listener
	Server ServerConfig `yaml:"server" json:"server"`

	// Source controls retrieval of the candidate list
	Source SourceConfig `yaml:"source" json:"source"`

	// Probe controls the reachability checks
	Probe ProbeConfig `yaml:"probe" json:"probe"`

	// Overrides are process-wide parameter values that win over request
	// parameters of the same name (url, max, proto, keyword, add_latency).
	Overrides map[string]string `yaml:"overrides,omitempty" json:"overrides,omitempty"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics settings
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig defines the HTTP listener configuration.
type ServerConfig struct {
	Listen          string        `yaml:"listen" json:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// RateLimit is the number of inbound requests per second; zero disables limiting
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// SourceConfig defines how the source list is fetched.
type SourceConfig struct {
	// Timeout bounds the whole fetch; zero means no explicit timeout
	Timeout      time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	UserAgent    string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// ProbeConfig defines how reachability probes are issued.
type ProbeConfig struct {
	// Concurrency is the number of probes in flight; 1 keeps probing sequential
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// RateLimit paces probe starts (probes per second); zero disables pacing
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`

	UserAgent string     `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	ProxyURL  string     `yaml:"proxy_url,omitempty" json:"proxy_url,omitempty"`
	TLS       *TLSConfig `yaml:"tls,omitempty" json:"tls,omitempty"`
}

// TLSConfig defines TLS settings for probe connections.
type TLSConfig struct {
	// InsecureSkipVerify disables certificate verification for probes.
	// A certificate error then no longer makes an endpoint unreachable.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`

	// RootCAs lists PEM files added to the verification pool
	RootCAs []string `yaml:"root_cas,omitempty" json:"root_cas,omitempty"`

	// SuppressWarnings silences the insecure configuration warning
	SuppressWarnings bool `yaml:"suppress_warnings,omitempty" json:"suppress_warnings,omitempty"`
}

// LoggingConfig defines log output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig defines the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Path      string `yaml:"path" json:"path"`
}

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationResult holds validation results
type ValidationResult struct {
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}
