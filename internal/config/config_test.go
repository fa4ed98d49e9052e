// internal/config/config_test.go
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromBytes(t *testing.T) {
	configYAML := `
name: "bytes_test"
server:
  listen: "127.0.0.1:9090"
  rate_limit: 5
source:
  timeout: 10s
probe:
  concurrency: 4
overrides:
  proto: "https"
`

	config, err := LoadFromBytes([]byte(configYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if config.Name != "bytes_test" {
		t.Errorf("expected name 'bytes_test', got %q", config.Name)
	}
	if config.Server.Listen != "127.0.0.1:9090" {
		t.Errorf("expected listen address to be kept, got %q", config.Server.Listen)
	}
	if config.Server.Burst != 10 {
		t.Errorf("expected default burst 10 when rate limited, got %d", config.Server.Burst)
	}
	if config.Source.Timeout != 10*time.Second {
		t.Errorf("expected source timeout 10s, got %v", config.Source.Timeout)
	}
	if config.Probe.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", config.Probe.Concurrency)
	}
	if config.Overrides[ParamProto] != "https" {
		t.Errorf("expected proto override, got %v", config.Overrides)
	}
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	config, err := LoadFromBytes([]byte("name: minimal\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if config.Server.Listen != DefaultListen {
		t.Errorf("listen = %q, want %q", config.Server.Listen, DefaultListen)
	}
	if config.Source.Timeout != 0 {
		t.Errorf("source timeout should default to none, got %v", config.Source.Timeout)
	}
	if config.Source.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("max body = %d", config.Source.MaxBodyBytes)
	}
	if config.Probe.Concurrency != 1 {
		t.Errorf("probing should default to sequential, got %d", config.Probe.Concurrency)
	}
	if config.Logging.Level != "info" || config.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults: %+v", config.Logging)
	}
}

func TestLoadFromBytes_EnvExpansion(t *testing.T) {
	t.Setenv("REACHLIST_TEST_LISTEN", "0.0.0.0:7070")

	config, err := LoadFromBytes([]byte("server:\n  listen: \"${REACHLIST_TEST_LISTEN}\"\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if config.Server.Listen != "0.0.0.0:7070" {
		t.Errorf("expected expanded listen address, got %q", config.Server.Listen)
	}
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "", "cannot be empty"},
		{"malformed", "server: [", "failed to parse YAML"},
		{"negative concurrency", "probe:\n  concurrency: -2\n", "probe.concurrency"},
		{"unknown override", "overrides:\n  colour: red\n", "overrides.colour"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
		{"bad listen", "server:\n  listen: localhost\n", "server.listen"},
		{"relative proxy", "probe:\n  proxy_url: proxy.local\n", "probe.proxy_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reachlist.yaml")
	if err := os.WriteFile(path, []byte("name: file_test\nlogging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Name != "file_test" {
		t.Errorf("expected name 'file_test', got %q", config.Name)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", config.Logging.Level)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGenerateTemplate(t *testing.T) {
	config := GenerateTemplate()

	if err := config.Validate(); err != nil {
		t.Fatalf("generated template should be valid: %v", err)
	}

	var buf bytes.Buffer
	if err := SaveToWriter(&config, &buf); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	reloaded, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("template should load back: %v", err)
	}
	if reloaded.Source.Timeout != 30*time.Second {
		t.Errorf("source timeout = %v", reloaded.Source.Timeout)
	}
}

func TestValidateWithDetails_Warnings(t *testing.T) {
	config := Default()
	config.Probe.Concurrency = 100
	config.Probe.TLS = &TLSConfig{InsecureSkipVerify: true}

	result := config.ValidateWithDetails()
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}
}
