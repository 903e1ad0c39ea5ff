// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing playback progress.
// ABOUTME: Displays step position, play state, a spinner while training, and time since the last load.
package tui

import (
	"fmt"
	"time"

	"github.com/2389-research/sapling/playback"
	"github.com/charmbracelet/lipgloss"
)

// StatusBarModel displays playback status in a single line.
type StatusBarModel struct {
	state    playback.State
	loadedAt time.Time
	busy     bool
	spinner  string
	width    int
}

// NewStatusBarModel creates an idle status bar.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{}
}

// SetState updates the playback state shown.
func (m *StatusBarModel) SetState(st playback.State) {
	m.state = st
}

// Loaded records when the current history was loaded.
func (m *StatusBarModel) Loaded(at time.Time) {
	m.loadedAt = at
}

// SetBusy shows or hides the training indicator. frame is the current spinner frame.
func (m *StatusBarModel) SetBusy(busy bool, frame string) {
	m.busy = busy
	m.spinner = frame
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Elapsed returns the time since the history was loaded, or zero if nothing is loaded.
func (m StatusBarModel) Elapsed() time.Duration {
	if m.loadedAt.IsZero() {
		return 0
	}
	return time.Since(m.loadedAt)
}

// formatElapsed formats a duration as a human-readable string.
// Durations under a minute show as seconds (e.g. "12s").
// Durations of a minute or more show as minutes and seconds (e.g. "2m30s").
func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) - minutes*60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

// stepLabel is the 1-based position text.
func stepLabel(st playback.State) string {
	if st.Empty() {
		return "Step 0 / 0"
	}
	return fmt.Sprintf("Step %d / %d", st.Position+1, st.Length)
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	play := PausedStyle.Render("paused")
	if m.state.Playing {
		play = PlayingStyle.Render("playing")
	}

	content := fmt.Sprintf("%s | %s | Loaded: %s ago", stepLabel(m.state), play, formatElapsed(m.Elapsed()))
	if m.busy {
		content += " | " + m.spinner + " training"
	}

	style := StatusBarStyle.Width(m.width)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
