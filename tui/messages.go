// ABOUTME: Bubble Tea message types used in the TUI message loop.
// ABOUTME: Each type wraps playback ticks, training results, or replay loads for the tea.Msg interface.
package tui

import (
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// PlayTickMsg carries one auto-play tick onto the UI loop. fire advances the
// controller; stale ticks are discarded by the controller itself.
type PlayTickMsg struct {
	fire func()
}

// TrainDoneMsg signals that a training request has finished.
type TrainDoneMsg struct {
	Request playback.Request
	Err     error
}

// ReplayMsg carries an archived run fetched from a training server.
type ReplayMsg struct {
	RunID   string
	History dtree.History
	Err     error
}
