// ABOUTME: Bridge connecting the playback controller and training session to the Bubble Tea message loop.
// ABOUTME: Provides TickBridge, a playback.Scheduler that delivers ticks as messages, and tea.Cmd factories.
package tui

import (
	"context"
	"sync"
	"time"

	"github.com/2389-research/sapling/playback"
	"github.com/2389-research/sapling/trainapi"
	tea "github.com/charmbracelet/bubbletea"
)

// TickBridge implements playback.Scheduler by sending PlayTickMsg values into a
// tea.Program, so auto-play advances on the UI loop. The send function is
// attached after the program is created; ticks before that are dropped.
type TickBridge struct {
	mu   sync.Mutex
	send func(msg tea.Msg)
}

// NewTickBridge creates a TickBridge. Typically send is program.Send, passed
// later through Attach.
func NewTickBridge(send func(msg tea.Msg)) *TickBridge {
	return &TickBridge{send: send}
}

// Attach sets the function used to deliver ticks.
func (b *TickBridge) Attach(send func(msg tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

// Every implements playback.Scheduler.
func (b *TickBridge) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				b.deliver(PlayTickMsg{fire: fn})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (b *TickBridge) deliver(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// TrainCmd returns a tea.Cmd that runs one training request through the
// session. When it finishes (or fails) it sends a TrainDoneMsg.
func TrainCmd(ctx context.Context, sess *playback.Session, req playback.Request) tea.Cmd {
	return func() tea.Msg {
		err := sess.Train(ctx, req)
		return TrainDoneMsg{Request: req, Err: err}
	}
}

// ReplayCmd returns a tea.Cmd that fetches an archived run and sends a ReplayMsg.
func ReplayCmd(ctx context.Context, client *trainapi.Client, runID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Run(ctx, runID)
		if err != nil {
			return ReplayMsg{RunID: runID, Err: err}
		}
		return ReplayMsg{RunID: runID, History: resp.History}
	}
}
