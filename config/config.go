// ABOUTME: Application configuration from an optional YAML file overridden by SAPLING_* environment variables.
// ABOUTME: Refuses non-loopback binds unless remote access is explicitly allowed.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAddr     = "127.0.0.1:2390"
	DefaultInterval = time.Second
	DefaultCacheTTL = 10 * time.Minute
	DefaultDataset  = "moons"
)

var (
	ErrNonLoopbackBind = errors.New(
		"addr is a non-loopback address but allow_remote is not set; set SAPLING_ALLOW_REMOTE=true to listen publicly",
	)
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds everything the CLI modes need.
type Config struct {
	Addr         string        `yaml:"addr"`          // SAPLING_ADDR
	AllowRemote  bool          `yaml:"allow_remote"`  // SAPLING_ALLOW_REMOTE
	DataDir      string        `yaml:"data_dir"`      // SAPLING_DATA_DIR
	TrainURL     string        `yaml:"train_url"`     // SAPLING_TRAIN_URL, empty trains in-process
	PlayInterval time.Duration `yaml:"play_interval"` // SAPLING_PLAY_INTERVAL
	CacheTTL     time.Duration `yaml:"cache_ttl"`     // SAPLING_CACHE_TTL
	Dataset      string        `yaml:"dataset"`
	Samples      int           `yaml:"samples"`
	Params       dtree.Params  `yaml:"params"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         DefaultAddr,
		PlayInterval: DefaultInterval,
		CacheTTL:     DefaultCacheTTL,
		Dataset:      DefaultDataset,
		Samples:      100,
		Params:       dtree.DefaultParams(),
	}
}

// Load reads path (if non-empty) over the defaults, applies environment overrides,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if c, err := dtree.ParseCriterion(string(cfg.Params.Criterion)); err == nil {
		cfg.Params.Criterion = c
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = envOrDefault("SAPLING_ADDR", c.Addr)
	c.DataDir = envOrDefault("SAPLING_DATA_DIR", c.DataDir)
	c.TrainURL = envOrDefault("SAPLING_TRAIN_URL", c.TrainURL)
	if v := os.Getenv("SAPLING_ALLOW_REMOTE"); v == "true" || v == "1" || v == "yes" {
		c.AllowRemote = true
	}

	for key, dst := range map[string]*time.Duration{
		"SAPLING_PLAY_INTERVAL": &c.PlayInterval,
		"SAPLING_CACHE_TTL":     &c.CacheTTL,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
		}
		*dst = d
	}
	return nil
}

// Validate checks intervals, training defaults, and the bind address.
func (c Config) Validate() error {
	if c.PlayInterval <= 0 {
		return fmt.Errorf("%w: play_interval must be positive, got %s", ErrInvalidConfig, c.PlayInterval)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: cache_ttl must be positive, got %s", ErrInvalidConfig, c.CacheTTL)
	}
	if !dataset.Known(c.Dataset) {
		return fmt.Errorf("%w: unknown dataset %q", ErrInvalidConfig, c.Dataset)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.AllowRemote {
		return nil
	}

	// Only 127.0.0.0/8, ::1, and "localhost" count as loopback.
	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("%w: addr %q: %v", ErrInvalidConfig, c.Addr, err)
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("%w: addr=%s", ErrNonLoopbackBind, c.Addr)
}

// Request is the training request the configured defaults describe.
func (c Config) Request() playback.Request {
	return playback.Request{Dataset: c.Dataset, Params: c.Params}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
