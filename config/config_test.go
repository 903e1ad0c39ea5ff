// ABOUTME: Tests for config loading from YAML and SAPLING_* environment variables.
// ABOUTME: Covers defaults, file overrides, env precedence, duration parsing, and bind address checks.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/2389-research/sapling/dtree"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SAPLING_ADDR", "SAPLING_ALLOW_REMOTE", "SAPLING_DATA_DIR",
		"SAPLING_TRAIN_URL", "SAPLING_PLAY_INTERVAL", "SAPLING_CACHE_TTL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.PlayInterval != time.Second || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Params != dtree.DefaultParams() || cfg.Dataset != "moons" {
		t.Errorf("training defaults = %+v %q", cfg.Params, cfg.Dataset)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sapling.yaml")
	body := `addr: localhost:9000
play_interval: 250ms
dataset: circles
params:
  max_depth: 5
  min_samples_split: 4
  criterion: entropy
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "localhost:9000" || cfg.PlayInterval != 250*time.Millisecond || cfg.Dataset != "circles" {
		t.Errorf("cfg = %+v", cfg)
	}
	want := dtree.Params{MaxDepth: 5, MinSamplesSplit: 4, Criterion: dtree.CriterionEntropy}
	if cfg.Params != want {
		t.Errorf("params = %+v, want %+v", cfg.Params, want)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("unset cache_ttl should keep default, got %s", cfg.CacheTTL)
	}
}

func TestLoadNormalizesCriterion(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sapling.yaml")
	if err := os.WriteFile(path, []byte("params:\n  criterion: Entropy\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Params.Criterion != dtree.CriterionEntropy {
		t.Errorf("criterion = %q, want %q", cfg.Params.Criterion, dtree.CriterionEntropy)
	}
	if got := cfg.Params.Criterion.Impurity([]int{1, 1}); got != 1 {
		t.Errorf("impurity([1 1]) = %v, want 1 (entropy)", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sapling.yaml")
	if err := os.WriteFile(path, []byte("addr: 127.0.0.1:1111\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SAPLING_ADDR", "127.0.0.1:2222")
	t.Setenv("SAPLING_PLAY_INTERVAL", "2s")
	t.Setenv("SAPLING_TRAIN_URL", "http://127.0.0.1:2390")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:2222" || cfg.PlayInterval != 2*time.Second || cfg.TrainURL != "http://127.0.0.1:2390" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]func(t *testing.T){
		"bad duration":  func(t *testing.T) { t.Setenv("SAPLING_CACHE_TTL", "soon") },
		"zero interval": func(t *testing.T) { t.Setenv("SAPLING_PLAY_INTERVAL", "0s") },
		"public bind":   func(t *testing.T) { t.Setenv("SAPLING_ADDR", "0.0.0.0:2390") },
		"hostname bind": func(t *testing.T) { t.Setenv("SAPLING_ADDR", "example.com:2390") },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			setup(t)
			if _, err := Load(""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPublicBindWithAllowRemote(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAPLING_ADDR", "0.0.0.0:2390")
	t.Setenv("SAPLING_ALLOW_REMOTE", "true")
	if _, err := Load(""); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestValidateErrorKinds(t *testing.T) {
	cfg := Default()
	cfg.Addr = "10.0.0.1:2390"
	if err := cfg.Validate(); !errors.Is(err, ErrNonLoopbackBind) {
		t.Errorf("err = %v, want ErrNonLoopbackBind", err)
	}

	cfg = Default()
	cfg.Params.MaxDepth = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, dtree.ErrInvalidParams) {
		t.Errorf("err = %v, want ErrInvalidConfig wrapping ErrInvalidParams", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
