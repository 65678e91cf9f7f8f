// Package config loads bot configuration.
// Source priority (highest to lowest):
// 1. Environment variables (BOT_TOKEN / TELEGRAM_TOKEN, DEFAULT_TIMEZONE)
// 2. Config file path given via --config
// 3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Preset is one quick-pick duration button.
type Preset struct {
	Label   string `yaml:"label"`
	Seconds int64  `yaml:"seconds"`
}

// Config holds application configuration. All interval fields are whole
// seconds in the file; use the accessor methods for durations.
type Config struct {
	// Token is the bot credential. Never read from the file; supplied
	// out-of-band via BOT_TOKEN (or legacy TELEGRAM_TOKEN).
	Token string `yaml:"-"`

	DefaultTimezone string `yaml:"default_timezone"`

	SessionTimeout int `yaml:"session_timeout"` // idle seconds before sweep eligibility
	SweepInterval  int `yaml:"sweep_interval"`  // seconds between sweeps
	PollTimeout    int `yaml:"poll_timeout"`    // getUpdates long-poll seconds

	MinYear       int `yaml:"min_year"`        // calendar lower bound
	MaxFutureDays int `yaml:"max_future_days"` // how far past today a pick may go

	Timezones []string `yaml:"timezones"`
	Presets   []Preset `yaml:"presets"`

	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultTimezone: "Asia/Kolkata",
		SessionTimeout:  3600,
		SweepInterval:   300,
		PollTimeout:     30,
		MinYear:         1900,
		MaxFutureDays:   365,
		Timezones: []string{
			"Asia/Kolkata",
			"UTC",
			"America/New_York",
			"Asia/Tokyo",
			"Europe/London",
			"America/Los_Angeles",
			"Europe/Paris",
			"Asia/Shanghai",
			"Australia/Sydney",
			"America/Chicago",
		},
		Presets: []Preset{
			{Label: "1 min", Seconds: 60},
			{Label: "5 min", Seconds: 300},
			{Label: "15 min", Seconds: 900},
			{Label: "30 min", Seconds: 1800},
			{Label: "1 hour", Seconds: 3600},
			{Label: "2 hours", Seconds: 7200},
			{Label: "6 hours", Seconds: 21600},
			{Label: "12 hours", Seconds: 43200},
			{Label: "1 day", Seconds: 86400},
			{Label: "1 week", Seconds: 604800},
		},
	}
}

// Load reads the optional config file and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Token = v
	} else if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("DEFAULT_TIMEZONE"); v != "" {
		cfg.DefaultTimezone = v
	}
}

// Validate checks everything except the token, which the entrypoint
// verifies so it can exit with a useful message.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default timezone %q: %w", c.DefaultTimezone, err)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive, got %d", c.SessionTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %d", c.SweepInterval)
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("poll_timeout must be positive, got %d", c.PollTimeout)
	}
	if c.MinYear < 1 || c.MinYear > 9999 {
		return fmt.Errorf("min_year out of range: %d", c.MinYear)
	}
	if len(c.Timezones) == 0 {
		return fmt.Errorf("at least one timezone must be configured")
	}
	return nil
}

// SessionTTL is the idle duration after which a session may be swept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTimeout) * time.Second
}

// SweepEvery is the sweep cadence.
func (c *Config) SweepEvery() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// PollWait is the getUpdates long-poll window.
func (c *Config) PollWait() time.Duration {
	return time.Duration(c.PollTimeout) * time.Second
}

// Location resolves a session timezone, falling back to the configured
// default and finally UTC.
func (c *Config) Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(c.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
