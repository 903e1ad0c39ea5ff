// ABOUTME: Help display for the sapling CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for usage output and envStatus for configuration variable detection.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/2389-research/sapling/render"
)

const saplingASCII = `
       .
     .:;:.
   .:;;;;;:.
     ;;;;;
    .;;;;;.      X[0] <= 0.42
      |||       /          \
      |||    leaf 0      leaf 1
  ~~~~'''~~~~
`

// printHelp writes usage patterns, grouped flags, examples, and environment status to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, saplingASCII)
	fmt.Fprintf(w, "sapling %s - step through decision tree construction\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sapling -server [-addr 127.0.0.1:2390]   Start the web playback server")
	fmt.Fprintln(w, "  sapling -tui [-url http://host:2390]      Interactive terminal playback")
	fmt.Fprintln(w, "  sapling -tui -url <url> -replay <runID>   Replay an archived run")
	fmt.Fprintln(w, "  sapling -export <dir> [training flags]    Write every step as DOT and PNG")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Training Flags:")
	fmt.Fprintln(w, "  -dataset <name>       moons, circles, linear (default: moons)")
	fmt.Fprintln(w, "  -max-depth <n>        Maximum tree depth, 1-20 (default: 3)")
	fmt.Fprintln(w, "  -min-samples <n>      Minimum samples to split a node (default: 2)")
	fmt.Fprintln(w, "  -criterion <name>     gini or entropy (default: gini)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -server               Start HTTP server mode")
	fmt.Fprintln(w, "  -addr <host:port>     Listen address (default: 127.0.0.1:2390)")
	fmt.Fprintln(w, "  -allow-remote         Permit binding a non-loopback address")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -config <file>        YAML config (default: $XDG_CONFIG_HOME/sapling/config.yaml)")
	fmt.Fprintln(w, "  -data-dir <dir>       Run archive and log directory (default: $XDG_DATA_HOME/sapling)")
	fmt.Fprintln(w, "  -interval <dur>       Auto-play step interval (default: 1s)")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  sapling -server")
	fmt.Fprintln(w, "  sapling -tui -dataset circles -max-depth 5 -criterion entropy")
	fmt.Fprintln(w, "  sapling -tui -url http://127.0.0.1:2390 -replay 01J9Z3K8M2XQ")
	fmt.Fprintln(w, "  sapling -export ./steps -dataset linear -max-depth 2")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	for _, key := range []string{"SAPLING_ADDR", "SAPLING_DATA_DIR", "SAPLING_TRAIN_URL", "SAPLING_PLAY_INTERVAL", "SAPLING_CACHE_TTL"} {
		fmt.Fprintf(w, "  %-22s%s\n", key, envStatus(key))
	}
	fmt.Fprintf(w, "  %-22s%s\n", "graphviz (dot)", graphvizStatus())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Tree SVG/PNG images need graphviz; DOT output always works.")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}

func graphvizStatus() string {
	if render.GraphvizAvailable() {
		return "[found]"
	}
	return "[not found]"
}
