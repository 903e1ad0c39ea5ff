// ABOUTME: Tests for sapling CLI flag parsing, settings layering, mode dispatch, and batch export.
// ABOUTME: Export runs the in-process trainer against a temp directory.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/sapling/config"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/trainapi"
)

// isolateEnv keeps the user's config file and SAPLING_* variables out of a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"SAPLING_ADDR", "SAPLING_DATA_DIR", "SAPLING_TRAIN_URL",
		"SAPLING_ALLOW_REMOTE", "SAPLING_PLAY_INTERVAL", "SAPLING_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.serverMode || cfg.tuiMode || cfg.exportDir != "" {
		t.Errorf("no mode should be selected: %+v", cfg)
	}
	if cfg.addr != config.DefaultAddr || cfg.interval != config.DefaultInterval {
		t.Errorf("addr=%q interval=%s", cfg.addr, cfg.interval)
	}
	if cfg.maxDepth != 3 || cfg.minSamples != 2 || cfg.criterion != "gini" || cfg.dataset != "moons" {
		t.Errorf("training defaults = %+v", cfg)
	}
	if len(cfg.set) != 0 {
		t.Errorf("set = %v, want empty", cfg.set)
	}
}

func TestParseFlagsRecordsSetFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-tui", "-dataset", "circles", "-max-depth", "5", "-interval", "250ms"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.tuiMode || cfg.dataset != "circles" || cfg.maxDepth != 5 || cfg.interval != 250*time.Millisecond {
		t.Errorf("parsed = %+v", cfg)
	}
	for _, name := range []string{"tui", "dataset", "max-depth", "interval"} {
		if !cfg.set[name] {
			t.Errorf("flag %q should be marked set", name)
		}
	}
	if cfg.set["criterion"] {
		t.Error("criterion was not given")
	}
}

func TestParseFlagsRejectsExtraArgs(t *testing.T) {
	if _, err := parseFlags([]string{"-tui", "extra"}); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestResolveSettingsLayering(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "dataset: linear\nparams:\n  max_depth: 6\n  min_samples_split: 4\n  criterion: entropy\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SAPLING_PLAY_INTERVAL", "2s")

	cfg, err := parseFlags([]string{"-config", path, "-max-depth", "2", "-criterion", "gini"})
	if err != nil {
		t.Fatal(err)
	}
	settings, err := resolveSettings(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if settings.Dataset != "linear" {
		t.Errorf("dataset = %q, want linear from file", settings.Dataset)
	}
	if settings.Params.MinSamplesSplit != 4 {
		t.Errorf("min samples = %d, want 4 from file", settings.Params.MinSamplesSplit)
	}
	if settings.Params.MaxDepth != 2 || settings.Params.Criterion != dtree.CriterionGini {
		t.Errorf("params = %+v, want flag overrides", settings.Params)
	}
	if settings.PlayInterval != 2*time.Second {
		t.Errorf("interval = %s, want 2s from env", settings.PlayInterval)
	}
	if req := settings.Request(); req.Dataset != "linear" || req.Params != settings.Params {
		t.Errorf("Request() = %+v", req)
	}
}

func TestResolveSettingsRejectsInvalid(t *testing.T) {
	isolateEnv(t)
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"depth", []string{"-max-depth", "0"}, config.ErrInvalidConfig},
		{"dataset", []string{"-dataset", "spirals"}, config.ErrInvalidConfig},
		{"remote", []string{"-addr", "0.0.0.0:2390"}, config.ErrNonLoopbackBind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseFlags(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := resolveSettings(cfg); !errors.Is(err, tt.want) {
				t.Errorf("resolveSettings(%v) = %v, want %v", tt.args, err, tt.want)
			}
		})
	}

	cfg, _ := parseFlags([]string{"-criterion", "variance"})
	if _, err := resolveSettings(cfg); err == nil {
		t.Error("expected error for unknown criterion")
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	var buf bytes.Buffer
	if err := run(cliConfig{showVersion: true}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "sapling ") {
		t.Errorf("version output = %q", buf.String())
	}

	buf.Reset()
	if err := run(cliConfig{}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Usage:") {
		t.Error("no mode should print help")
	}
}

func TestRunReplayRequiresURL(t *testing.T) {
	isolateEnv(t)
	cfg, err := parseFlags([]string{"-replay", "01RUN", "-data-dir", t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	err = run(cfg, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "-url") {
		t.Errorf("run(-replay) = %v, want -url error", err)
	}
}

func TestRunExport(t *testing.T) {
	isolateEnv(t)
	settings := config.Default()
	settings.Dataset = "linear"
	settings.Params.MaxDepth = 2
	dir := filepath.Join(t.TempDir(), "steps")

	var out bytes.Buffer
	if err := runExport(context.Background(), settings, dir, &out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run.json"))
	if err != nil {
		t.Fatal(err)
	}
	var resp trainapi.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if err := resp.Check(); err != nil {
		t.Fatalf("exported run invalid: %v", err)
	}

	for i := range resp.History {
		for _, ext := range []string{".dot", ".png"} {
			name := filepath.Join(dir, fmt.Sprintf("step-%03d%s", i, ext))
			info, err := os.Stat(name)
			if err != nil || info.Size() == 0 {
				t.Errorf("missing or empty %s", name)
			}
		}
	}
	dot, err := os.ReadFile(filepath.Join(dir, "step-000.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("step-000.dot does not look like DOT: %.40q", dot)
	}
	if !strings.Contains(out.String(), "exported") || !strings.Contains(out.String(), "dataset=linear") {
		t.Errorf("summary = %q", out.String())
	}
}
