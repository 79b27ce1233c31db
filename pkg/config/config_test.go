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
	path := filepath.Join(t.TempDir(), "api.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `{
  "url": "http://myapp.localhost:8080",
  "key": "secret-key",
  "node": "mynode.os"
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.URL != "http://myapp.localhost:8080" {
		t.Errorf("Expected url to round-trip, got %q", cfg.URL)
	}
	if cfg.Key != "secret-key" {
		t.Errorf("Expected key to round-trip, got %q", cfg.Key)
	}
	if cfg.Node != "mynode.os" {
		t.Errorf("Expected node to round-trip, got %q", cfg.Node)
	}

	// Defaults
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("Expected default timeout_seconds 30, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Expected Timeout() 30s, got %v", cfg.Timeout())
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default logging level INFO, got %q", cfg.Logging.Level)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `{
  "url": "https://gateway.hyperslop.net",
  "key": "k",
  "node": "n.os",
  "timeout_seconds": 5,
  "logging": {"level": "debug"}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TimeoutSeconds != 5 {
		t.Errorf("Expected timeout_seconds 5, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"url": "http://x",`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"missing url", `{"key": "k", "node": "n"}`, "URL"},
		{"missing key", `{"url": "http://x", "node": "n"}`, "Key"},
		{"missing node", `{"url": "http://x", "key": "k"}`, "Node"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("Expected error to reference %s, got: %v", tc.field, err)
			}
		})
	}
}

func TestLoad_InvalidURL(t *testing.T) {
	path := writeConfig(t, `{"url": "not a url", "key": "k", "node": "n"}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for malformed url")
	}
}

func TestLoad_TimeoutBounds(t *testing.T) {
	path := writeConfig(t, `{"url": "http://x", "key": "k", "node": "n", "timeout_seconds": 0}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for timeout_seconds 0")
	}
}
