// ABOUTME: screen collects playback controller and training session callbacks for the TUI.
// ABOUTME: The AppModel drains it after every message so panels reflect the latest frame and notifications.
package tui

import (
	"sync"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// screen implements playback.View and playback.Notifier. Training reports from a
// command goroutine, so every field is guarded.
type screen struct {
	mu     sync.Mutex
	snap   dtree.Snapshot
	state  playback.State
	frames int
	busy   bool
	notes  []LogEntry
}

// screenView is a copy of the screen taken on the UI loop.
type screenView struct {
	snap   dtree.Snapshot
	state  playback.State
	frames int
	busy   bool
	notes  []LogEntry
}

func (s *screen) Render(snap dtree.Snapshot, st playback.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.state = st
	s.frames++
}

func (s *screen) Controls(st playback.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *screen) Busy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
}

func (s *screen) Success(msg string) { s.note(LevelSuccess, msg) }

func (s *screen) Error(msg string) { s.note(LevelError, msg) }

func (s *screen) note(level LogLevel, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, LogEntry{Level: level, Message: msg})
}

// take copies the current state and drains pending notifications.
func (s *screen) take() screenView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := screenView{
		snap:   s.snap,
		state:  s.state,
		frames: s.frames,
		busy:   s.busy,
		notes:  s.notes,
	}
	s.notes = nil
	return v
}
