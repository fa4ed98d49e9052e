// internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Validate checks the service configuration and returns an error listing
// every problem found.
func (c *ServiceConfig) Validate() error {
	result := c.ValidateWithDetails()
	if len(result.Errors) > 0 {
		return formatValidationError(result)
	}
	return nil
}

// ValidateWithDetails provides detailed validation results
func (c *ServiceConfig) ValidateWithDetails() *ValidationResult {
	result := &ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]string, 0),
	}

	c.validateServer(result)
	c.validateSource(result)
	c.validateProbe(result)
	c.validateOverrides(result)
	c.validateLogging(result)
	c.validateMetrics(result)

	return result
}

func (c *ServiceConfig) validateServer(result *ValidationResult) {
	if c.Server.Listen != "" && !strings.Contains(c.Server.Listen, ":") {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.listen",
			Value:   c.Server.Listen,
			Message: "Listen address must be in host:port form",
		})
	}

	durations := map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	}
	for _, field := range []string{"server.read_timeout", "server.write_timeout", "server.idle_timeout", "server.shutdown_timeout"} {
		if durations[field] < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Value:   durations[field].String(),
				Message: "Timeout cannot be negative",
			})
		}
	}

	if c.Server.RateLimit < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.rate_limit",
			Value:   fmt.Sprintf("%g", c.Server.RateLimit),
			Message: "Rate limit cannot be negative",
		})
	}
	if c.Server.Burst < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.burst",
			Value:   fmt.Sprintf("%d", c.Server.Burst),
			Message: "Burst cannot be negative",
		})
	}
}

func (c *ServiceConfig) validateSource(result *ValidationResult) {
	if c.Source.Timeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "source.timeout",
			Value:   c.Source.Timeout.String(),
			Message: "Timeout cannot be negative",
		})
	}
	if c.Source.MaxBodyBytes < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "source.max_body_bytes",
			Value:   fmt.Sprintf("%d", c.Source.MaxBodyBytes),
			Message: "Body size cap cannot be negative",
		})
	}
}

func (c *ServiceConfig) validateProbe(result *ValidationResult) {
	if c.Probe.Concurrency < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "probe.concurrency",
			Value:   fmt.Sprintf("%d", c.Probe.Concurrency),
			Message: "Concurrency cannot be negative",
		})
	} else if c.Probe.Concurrency > 64 {
		result.Warnings = append(result.Warnings,
			"Probe concurrency above 64 may exhaust local sockets")
	}

	if c.Probe.RateLimit < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "probe.rate_limit",
			Value:   fmt.Sprintf("%g", c.Probe.RateLimit),
			Message: "Rate limit cannot be negative",
		})
	}

	if c.Probe.ProxyURL != "" {
		parsed, err := url.Parse(c.Probe.ProxyURL)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "probe.proxy_url",
				Value:   c.Probe.ProxyURL,
				Message: fmt.Sprintf("Invalid URL format: %s", err.Error()),
			})
		} else if parsed.Scheme == "" || parsed.Host == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "probe.proxy_url",
				Value:   c.Probe.ProxyURL,
				Message: "Proxy URL must include protocol and hostname",
			})
		}
	}

	if c.Probe.TLS != nil {
		if c.Probe.TLS.InsecureSkipVerify {
			result.Warnings = append(result.Warnings,
				"probe.tls.insecure_skip_verify counts endpoints with invalid certificates as reachable")
		}
		for i, path := range c.Probe.TLS.RootCAs {
			if _, err := os.Stat(path); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("probe.tls.root_cas[%d]", i),
					Value:   path,
					Message: "Root CA file not found",
				})
			}
		}
	}
}

func (c *ServiceConfig) validateOverrides(result *ValidationResult) {
	for key := range c.Overrides {
		if !isParamName(key) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "overrides." + key,
				Value:   c.Overrides[key],
				Message: fmt.Sprintf("Unknown parameter. Valid parameters: %s", strings.Join(ParamNames, ", ")),
			})
		}
	}
}

func (c *ServiceConfig) validateLogging(result *ValidationResult) {
	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if c.Logging.Level != "" && !contains(validLevels, strings.ToLower(c.Logging.Level)) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "Invalid log level. Valid levels: debug, info, warn, error",
		})
	}

	validFormats := []string{"text", "json"}
	if c.Logging.Format != "" && !contains(validFormats, c.Logging.Format) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("Invalid log format. Valid formats: %s", strings.Join(validFormats, ", ")),
		})
	}
}

func (c *ServiceConfig) validateMetrics(result *ValidationResult) {
	if c.Metrics.Enabled && c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "metrics.path",
			Value:   c.Metrics.Path,
			Message: "Metrics path must start with /",
		})
	}
}

// formatValidationError creates a comprehensive error message
func formatValidationError(result *ValidationResult) error {
	var errorMsg strings.Builder

	errorMsg.WriteString("Configuration validation failed:\n")

	for i, err := range result.Errors {
		errorMsg.WriteString(fmt.Sprintf("  %d. %s", i+1, err.Message))
		if err.Field != "" {
			errorMsg.WriteString(fmt.Sprintf(" (field: %s)", err.Field))
		}
		if err.Value != "" {
			errorMsg.WriteString(fmt.Sprintf(" (value: %s)", err.Value))
		}
		errorMsg.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		errorMsg.WriteString("\nWarnings:\n")
		for i, warning := range result.Warnings {
			errorMsg.WriteString(fmt.Sprintf("  %d. %s\n", i+1, warning))
		}
	}

	return fmt.Errorf("%s", errorMsg.String())
}

// Helper function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
