package gatechain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.RateLimit.Limit != 5 {
		t.Errorf("default limit = %d, want 5", cfg.RateLimit.Limit)
	}
	window, err := cfg.RateLimit.WindowDuration()
	if err != nil {
		t.Fatalf("WindowDuration() failed: %v", err)
	}
	if window != time.Minute {
		t.Errorf("default window = %v, want 1m", window)
	}
	if cfg.TimeWindow.Start != "09:00" || cfg.TimeWindow.End != "18:00" {
		t.Errorf("default time window = %s-%s, want 09:00-18:00", cfg.TimeWindow.Start, cfg.TimeWindow.End)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	yaml := `
log_file: /tmp/gate-requests.log

time_window:
  start: "08:30"
  end: "20:00"

rate_limit:
  limit: 10
  window: "30s"
  markers: ["/messages", "/broadcasts"]

access:
  protected_prefixes: ["/admin", "/moderation"]
  allowed_roles: ["admin"]
`
	path := filepath.Join(t.TempDir(), "gatechain.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile() failed: %v", err)
	}

	if cfg.LogFile != "/tmp/gate-requests.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.TimeWindow.Start != "08:30" {
		t.Errorf("Start = %q, want 08:30", cfg.TimeWindow.Start)
	}
	if cfg.RateLimit.Limit != 10 {
		t.Errorf("Limit = %d, want 10", cfg.RateLimit.Limit)
	}
	window, _ := cfg.RateLimit.WindowDuration()
	if window != 30*time.Second {
		t.Errorf("window = %v, want 30s", window)
	}
	if len(cfg.RateLimit.Markers) != 2 {
		t.Errorf("Markers = %v", cfg.RateLimit.Markers)
	}
	if len(cfg.Access.AllowedRoles) != 1 || cfg.Access.AllowedRoles[0] != "admin" {
		t.Errorf("AllowedRoles = %v", cfg.Access.AllowedRoles)
	}
	// Unset fields keep their defaults.
	if len(cfg.Access.WriteMarkers) != 2 {
		t.Errorf("WriteMarkers should fall back to defaults, got %v", cfg.Access.WriteMarkers)
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigFromFile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gatechain.yaml")
	if err := os.WriteFile(path, []byte("rate_limit: ["), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, err := LoadConfigFromFile(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad start time", func(c *Config) { c.TimeWindow.Start = "nine" }},
		{"bad end time", func(c *Config) { c.TimeWindow.End = "24:00" }},
		{"zero limit", func(c *Config) { c.RateLimit.Limit = 0 }},
		{"negative limit", func(c *Config) { c.RateLimit.Limit = -1 }},
		{"unparseable window", func(c *Config) { c.RateLimit.Window = "a minute" }},
		{"negative window", func(c *Config) { c.RateLimit.Window = "-1m" }},
		{"no markers", func(c *Config) { c.RateLimit.Markers = nil }},
		{"no roles", func(c *Config) { c.Access.AllowedRoles = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
