// ABOUTME: Tests for .env loading: comments, export prefixes, quoting, and no-clobber behavior.
// ABOUTME: Each test writes a temporary .env file and checks the resulting environment.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	t.Setenv("SAPLING_DOTENV_A", "")
	os.Unsetenv("SAPLING_DOTENV_A")
	t.Setenv("SAPLING_DOTENV_B", "")
	os.Unsetenv("SAPLING_DOTENV_B")

	path := writeTempEnv(t, `# comment
SAPLING_DOTENV_A=plain

export SAPLING_DOTENV_B="quoted value"
not a pair
=novalue
`)
	if n := loadDotEnv(path); n != 2 {
		t.Errorf("loadDotEnv set %d vars, want 2", n)
	}
	if got := os.Getenv("SAPLING_DOTENV_A"); got != "plain" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("SAPLING_DOTENV_B"); got != "quoted value" {
		t.Errorf("B = %q", got)
	}
}

func TestLoadDotEnvDoesNotClobber(t *testing.T) {
	t.Setenv("SAPLING_DOTENV_KEEP", "from-env")
	path := writeTempEnv(t, "SAPLING_DOTENV_KEEP=from-file\n")

	if n := loadDotEnv(path); n != 0 {
		t.Errorf("loadDotEnv set %d vars, want 0", n)
	}
	if got := os.Getenv("SAPLING_DOTENV_KEEP"); got != "from-env" {
		t.Errorf("KEEP = %q, want from-env", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if n := loadDotEnv(filepath.Join(t.TempDir(), "absent.env")); n != 0 {
		t.Errorf("missing file set %d vars", n)
	}
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line       string
		key, value string
		ok         bool
	}{
		{"KEY=value", "KEY", "value", true},
		{"  KEY = value  ", "KEY", "value", true},
		{"export KEY='single'", "KEY", "single", true},
		{`KEY="`, "KEY", `"`, true},
		{"KEY=", "KEY", "", true},
		{"# KEY=value", "", "", false},
		{"", "", "", false},
		{"novalue", "", "", false},
	}
	for _, tt := range tests {
		key, value, ok := parseEnvLine(tt.line)
		if key != tt.key || value != tt.value || ok != tt.ok {
			t.Errorf("parseEnvLine(%q) = (%q, %q, %t), want (%q, %q, %t)",
				tt.line, key, value, ok, tt.key, tt.value, tt.ok)
		}
	}
}
