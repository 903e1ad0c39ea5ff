// ABOUTME: Tests for StatusBarModel which renders a single-line playback status bar.
// ABOUTME: Covers step labels, play state, the training indicator, and elapsed time formatting.
package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/2389-research/sapling/playback"
)

func TestStatusBarStepLabel(t *testing.T) {
	tests := []struct {
		state playback.State
		want  string
	}{
		{playback.State{}, "Step 0 / 0"},
		{playback.State{Position: 0, Length: 5}, "Step 1 / 5"},
		{playback.State{Position: 4, Length: 5}, "Step 5 / 5"},
	}
	for _, tt := range tests {
		if got := stepLabel(tt.state); got != tt.want {
			t.Errorf("stepLabel(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStatusBarViewPlayState(t *testing.T) {
	m := NewStatusBarModel()
	m.SetWidth(100)

	m.SetState(playback.State{Position: 1, Length: 3})
	if view := m.View(); !strings.Contains(view, "Step 2 / 3") || !strings.Contains(view, "paused") {
		t.Errorf("unexpected paused view: %q", view)
	}

	m.SetState(playback.State{Position: 1, Length: 3, Playing: true})
	if view := m.View(); !strings.Contains(view, "playing") {
		t.Errorf("unexpected playing view: %q", view)
	}
}

func TestStatusBarViewBusy(t *testing.T) {
	m := NewStatusBarModel()
	m.SetWidth(100)
	if strings.Contains(m.View(), "training") {
		t.Error("idle bar should not mention training")
	}
	m.SetBusy(true, "*")
	if !strings.Contains(m.View(), "* training") {
		t.Errorf("busy bar should show spinner, got %q", m.View())
	}
}

func TestStatusBarElapsed(t *testing.T) {
	m := NewStatusBarModel()
	if m.Elapsed() != 0 {
		t.Errorf("Elapsed() = %v before load, want 0", m.Elapsed())
	}
	m.Loaded(time.Now().Add(-3 * time.Second))
	if m.Elapsed() < 3*time.Second {
		t.Errorf("Elapsed() = %v, want at least 3s", m.Elapsed())
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{12*time.Second + 400*time.Millisecond, "12s"},
		{2*time.Minute + 30*time.Second, "2m30s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
