package gatechain

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the pipeline configuration. It is read once at startup and
// immutable at request time.
type Config struct {
	// LogFile is the request log sink path. Empty disables file logging
	// (lines are dropped unless a custom sink is injected).
	LogFile string `yaml:"log_file,omitempty"`

	// TimeWindow is the allowed wall-clock access window
	TimeWindow TimeWindowConfig `yaml:"time_window"`

	// RateLimit bounds write traffic to messaging endpoints
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Access declares protected resources and sufficient roles
	Access AccessConfig `yaml:"access"`
}

// TimeWindowConfig defines the allowed clock-time window, inclusive on both
// ends. Times are "HH:MM" strings.
type TimeWindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// RateLimitConfig defines the sliding window parameters.
type RateLimitConfig struct {
	// Limit is the maximum number of qualifying requests per window
	Limit int `yaml:"limit"`

	// Window is the sliding window duration, e.g. "1m"
	Window string `yaml:"window"`

	// Markers are path substrings identifying messaging endpoints
	Markers []string `yaml:"markers,omitempty"`
}

// AccessConfig defines the role access policy.
type AccessConfig struct {
	ProtectedPrefixes []string `yaml:"protected_prefixes,omitempty"`
	WriteMarkers      []string `yaml:"write_markers,omitempty"`
	AllowedRoles      []string `yaml:"allowed_roles,omitempty"`
}

// NewConfig creates a Config with the default policy: requests allowed
// 09:00-18:00, five messages per minute per client, and messaging writes
// restricted to admins and moderators.
func NewConfig() *Config {
	return &Config{
		LogFile: "requests.log",
		TimeWindow: TimeWindowConfig{
			Start: "09:00",
			End:   "18:00",
		},
		RateLimit: RateLimitConfig{
			Limit:   5,
			Window:  "1m",
			Markers: []string{"/messages"},
		},
		Access: AccessConfig{
			ProtectedPrefixes: []string{"/admin"},
			WriteMarkers:      []string{"/conversations", "/messages"},
			AllowedRoles:      []string{"admin", "moderator"},
		},
	}
}

// LoadConfigFromFile loads configuration from a YAML file.
// Fields left unset fall back to the defaults from NewConfig.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
	}

	config := NewConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := parseClock(c.TimeWindow.Start); err != nil {
		return fmt.Errorf("%w: time_window.start %q", ErrInvalidConfig, c.TimeWindow.Start)
	}
	if _, err := parseClock(c.TimeWindow.End); err != nil {
		return fmt.Errorf("%w: time_window.end %q", ErrInvalidConfig, c.TimeWindow.End)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("%w: rate_limit.limit must be positive", ErrInvalidConfig)
	}
	if _, err := c.RateLimit.WindowDuration(); err != nil {
		return err
	}
	if len(c.RateLimit.Markers) == 0 {
		return fmt.Errorf("%w: rate_limit.markers cannot be empty", ErrInvalidConfig)
	}
	if len(c.Access.AllowedRoles) == 0 {
		return fmt.Errorf("%w: access.allowed_roles cannot be empty", ErrInvalidConfig)
	}
	return nil
}

// WindowDuration parses the configured window, e.g. "1m" -> time.Minute.
func (r *RateLimitConfig) WindowDuration() (time.Duration, error) {
	d, err := time.ParseDuration(r.Window)
	if err != nil {
		return 0, fmt.Errorf("%w: rate_limit.window %q: %v", ErrInvalidConfig, r.Window, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: rate_limit.window must be positive", ErrInvalidConfig)
	}
	return d, nil
}

// ToAccessPolicy converts an AccessConfig for gate construction.
func (a *AccessConfig) ToAccessPolicy() AccessPolicy {
	return AccessPolicy{
		ProtectedPrefixes: a.ProtectedPrefixes,
		WriteMarkers:      a.WriteMarkers,
		AllowedRoles:      a.AllowedRoles,
	}
}
