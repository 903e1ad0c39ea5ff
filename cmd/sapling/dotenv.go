// ABOUTME: Loads SAPLING_* and other variables from .env files at startup.
// ABOUTME: Never overrides variables already present in the environment.
package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// loadDotEnv reads a .env file and sets any variables not already in the
// environment, returning how many it set. Missing files count as zero. Lines
// starting with # are comments; "export KEY=VALUE" and quoted values are accepted.
func loadDotEnv(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	set := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if os.Setenv(key, value) == nil {
			set++
		}
	}
	return set
}

// parseEnvLine splits one .env line. ok is false for blanks, comments, and
// lines without '='.
func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}
	if n := len(value); n >= 2 {
		if (value[0] == '"' && value[n-1] == '"') || (value[0] == '\'' && value[n-1] == '\'') {
			value = value[1 : n-1]
		}
	}
	return key, value, true
}

// loadDotEnvAuto loads ./.env, then the .env in the sapling config directory.
// Earlier files win because later ones never clobber.
func loadDotEnvAuto() {
	loadDotEnv(".env")
	if dir, err := defaultConfigDir(); err == nil {
		loadDotEnv(filepath.Join(dir, ".env"))
	}
}
