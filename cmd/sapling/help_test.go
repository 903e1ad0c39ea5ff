// ABOUTME: Tests for the sapling CLI help display covering content, flag groups, and env detection.
// ABOUTME: Checks printHelp output and the envStatus helper.
package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintHelpContainsArtAndVersion(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "1.2.3")
	out := buf.String()

	if !strings.Contains(out, ".:;;;;;:.") {
		t.Error("expected help output to contain the sapling art")
	}
	if !strings.Contains(out, "sapling 1.2.3") {
		t.Error("expected help output to contain name and version")
	}
}

func TestPrintHelpContainsModesAndFlags(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "dev")
	out := buf.String()

	for _, want := range []string{
		"-server", "-tui", "-replay", "-export",
		"-dataset", "-max-depth", "-min-samples", "-criterion",
		"-addr", "-allow-remote", "-config", "-data-dir", "-interval",
		"Training Flags:", "Server Flags:", "Examples:", "Environment:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help output to contain %q", want)
		}
	}
}

func TestPrintHelpShowsEnvStatus(t *testing.T) {
	t.Setenv("SAPLING_ADDR", "127.0.0.1:9000")
	t.Setenv("SAPLING_TRAIN_URL", "")

	var buf bytes.Buffer
	printHelp(&buf, "dev")

	var addrLine, urlLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "SAPLING_ADDR"):
			addrLine = line
		case strings.Contains(line, "SAPLING_TRAIN_URL"):
			urlLine = line
		}
	}
	if !strings.Contains(addrLine, "[set]") {
		t.Errorf("SAPLING_ADDR line = %q, want [set]", addrLine)
	}
	if !strings.Contains(urlLine, "[not set]") {
		t.Errorf("SAPLING_TRAIN_URL line = %q, want [not set]", urlLine)
	}
}

func TestEnvStatus(t *testing.T) {
	t.Setenv("SAPLING_TEST_VAR", "x")
	if got := envStatus("SAPLING_TEST_VAR"); got != "[set]" {
		t.Errorf("envStatus(set) = %q", got)
	}
	t.Setenv("SAPLING_TEST_VAR", "")
	if got := envStatus("SAPLING_TEST_VAR"); got != "[not set]" {
		t.Errorf("envStatus(empty) = %q", got)
	}
}
