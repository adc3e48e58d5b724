// Package config handles rotator configuration from YAML files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level rotator configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Page    PageConfig    `yaml:"page"`
	Locator LocatorConfig `yaml:"locator"`
	Cycle   CycleConfig   `yaml:"cycle"`
	DBPath  string        `yaml:"db_path"`
	API     APIConfig     `yaml:"api"`
}

// BrowserConfig controls the Chrome connection.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an already-running Chrome started
	// with a debugging port. Empty = launch a local Chrome.
	Remote   string `yaml:"remote"`
	Headless bool   `yaml:"headless"`
	Stealth  bool   `yaml:"stealth"`
}

// PageConfig identifies the page the session controls.
type PageConfig struct {
	// URL to open when no matching tab exists.
	URL string `yaml:"url"`
	// Host the session considers "the relevant site".
	Host string `yaml:"host"`
}

// LocatorConfig tunes the media element search.
type LocatorConfig struct {
	// Selectors is the priority-ordered pattern list, most page-specific
	// first. The first pattern with any DOM match wins a search pass.
	Selectors []string `yaml:"selectors"`
	// MinBox is the minimum rendered width and height in px.
	MinBox float64 `yaml:"min_box"`
	// MinIntrinsic is the minimum natural/media width and height in px.
	MinIntrinsic float64 `yaml:"min_intrinsic"`
	// ExcludeSrc lists substrings that mark a source as icon-like.
	ExcludeSrc []string `yaml:"exclude_src"`
}

// CycleConfig controls the locate-and-bind cycle.
type CycleConfig struct {
	// InitialDelay bridges the page's own asynchronous render on startup.
	InitialDelay time.Duration `yaml:"initial_delay"`
	// DebounceWindow coalesces mutation/resize bursts into one search.
	DebounceWindow time.Duration `yaml:"debounce_window"`
	// RetryInterval spaces the timed locate attempts.
	RetryInterval time.Duration `yaml:"retry_interval"`
	// MaxAttempts bounds timed retries; afterwards only external triggers
	// (mutation, resize, navigation) re-run the search.
	MaxAttempts int `yaml:"max_attempts"`
	// NavPollInterval is the Go-side address polling fallback. The injected
	// history hooks are the primary signal, but a full page reload discards
	// them; the poll is what notices the reload and gets them reinstalled.
	// Negative disables the fallback.
	NavPollInterval time.Duration `yaml:"nav_poll_interval"`
}

// APIConfig controls the local control/status HTTP server.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Page.Host == "" {
		c.Page.Host = "drive.google.com"
	}
	if c.Page.URL == "" {
		c.Page.URL = "https://drive.google.com/"
	}
	if len(c.Locator.Selectors) == 0 {
		c.Locator.Selectors = []string{
			`div[role="main"] img[src*="googleusercontent"]`,
			`img[src*="googleusercontent"]`,
			`img[src*="drive.google.com"]`,
			`div[role="main"] video`,
			`video`,
			`div[role="main"] img`,
			`img`,
		}
	}
	if c.Locator.MinBox <= 0 {
		c.Locator.MinBox = 30
	}
	if c.Locator.MinIntrinsic <= 0 {
		c.Locator.MinIntrinsic = 50
	}
	if len(c.Locator.ExcludeSrc) == 0 {
		c.Locator.ExcludeSrc = []string{"icon", "favicon", "thumb", "sprite"}
	}
	if c.Cycle.InitialDelay <= 0 {
		c.Cycle.InitialDelay = 1500 * time.Millisecond
	}
	if c.Cycle.DebounceWindow <= 0 {
		c.Cycle.DebounceWindow = 300 * time.Millisecond
	}
	if c.Cycle.RetryInterval <= 0 {
		c.Cycle.RetryInterval = time.Second
	}
	if c.Cycle.MaxAttempts <= 0 {
		c.Cycle.MaxAttempts = 3
	}
	if c.Cycle.NavPollInterval == 0 {
		c.Cycle.NavPollInterval = 2 * time.Second
	}
	if c.Cycle.NavPollInterval < 0 {
		c.Cycle.NavPollInterval = 0
	}
	if c.DBPath == "" {
		c.DBPath = "data/orient.db"
	}
	if c.API.Addr == "" {
		c.API.Addr = "127.0.0.1:8732"
	}
}
