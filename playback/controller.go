// ABOUTME: Playback Controller owning a run history, the current position, and the auto-play task.
// ABOUTME: Exposes step/seek/toggle operations and notifies a View whenever the visible state changes.
package playback

import (
	"sync"
	"time"

	"github.com/2389-research/sapling/dtree"
)

// DefaultInterval is the auto-play tick period.
const DefaultInterval = time.Second

// State is the externally visible playback state.
type State struct {
	Position int  `json:"position"`
	Length   int  `json:"length"`
	Playing  bool `json:"playing"`
}

// Empty reports whether no history is loaded.
func (s State) Empty() bool { return s.Length == 0 }

// CanStepBackward reports whether StepBackward would move.
func (s State) CanStepBackward() bool { return s.Length > 0 && s.Position > 0 }

// CanStepForward reports whether StepForward would move.
func (s State) CanStepForward() bool { return s.Length > 0 && s.Position < s.Length-1 }

// PlayLabel is the label for the play/pause affordance.
func (s State) PlayLabel() string {
	if s.Playing {
		return "Pause"
	}
	return "Play"
}

// View receives controller notifications. Render is called exactly once for every
// change of the visible snapshot; Controls is called whenever the navigation
// affordances may have changed. Both run with the controller locked and must not
// call back into the Controller.
type View interface {
	Render(snap dtree.Snapshot, st State)
	Controls(st State)
}

// Scheduler starts a repeating task. The returned stop function cancels it; fn
// must not be called after stop returns, although a tick already in flight may
// still arrive and is discarded by the controller.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Controller holds a run history and the playback position within it. All methods
// are safe for concurrent use; ticks from the scheduler are serialized with user
// operations.
type Controller struct {
	mu       sync.Mutex
	view     View
	sched    Scheduler
	interval time.Duration

	history  dtree.History
	position int
	playing  bool
	stop     func()
	gen      uint64 // bumped on every play start/stop and load; stale ticks compare unequal
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the default goroutine ticker.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithInterval sets the auto-play tick period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// NewController creates an empty controller reporting to view.
func NewController(view View, opts ...Option) *Controller {
	c := &Controller{
		view:     view,
		sched:    TickerScheduler{},
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the history, rewinds to the first snapshot, stops any auto-play,
// and renders. An empty history is ignored and reported as false.
func (c *Controller) Load(h dtree.History) bool {
	if len(h) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.history = append(dtree.History(nil), h...)
	c.position = 0
	c.renderLocked()
	c.view.Controls(c.stateLocked())
	return true
}

// StepForward advances one snapshot. It is a no-op at the last snapshot.
func (c *Controller) StepForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepForwardLocked()
}

// StepBackward retreats one snapshot. It is a no-op at the first snapshot.
func (c *Controller) StepBackward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.position <= 0 || len(c.history) == 0 {
		return false
	}
	c.position--
	c.renderLocked()
	c.view.Controls(c.stateLocked())
	return true
}

// Seek jumps to index i. Out-of-range or unchanged positions are no-ops.
func (c *Controller) Seek(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.history) || i == c.position {
		return false
	}
	c.position = i
	c.stopAtEndLocked()
	c.renderLocked()
	c.view.Controls(c.stateLocked())
	return true
}

// TogglePlay flips between playing and paused. Starting playback at the last
// snapshot stops again immediately without scheduling anything. It does nothing
// when no history is loaded.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) == 0 {
		return
	}

	if c.playing {
		c.cancelLocked()
	} else if c.position < len(c.history)-1 {
		c.startLocked()
	}
	c.view.Controls(c.stateLocked())
}

// CurrentSnapshot returns the visible snapshot, or false when nothing is loaded.
func (c *Controller) CurrentSnapshot() (dtree.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) == 0 {
		return dtree.Snapshot{}, false
	}
	return c.history[c.position], true
}

// OnResize re-renders the visible snapshot so views can match new surface sizes.
func (c *Controller) OnResize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) == 0 {
		return
	}
	c.renderLocked()
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close cancels any auto-play task. The controller remains usable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Controller) stepForwardLocked() bool {
	if len(c.history) == 0 || c.position >= len(c.history)-1 {
		return false
	}
	c.position++
	c.stopAtEndLocked()
	c.renderLocked()
	c.view.Controls(c.stateLocked())
	return true
}

// stopAtEndLocked ends auto-play once the last snapshot is visible, whether a
// tick or a manual step got there.
func (c *Controller) stopAtEndLocked() {
	if c.playing && c.position == len(c.history)-1 {
		c.cancelLocked()
	}
}

func (c *Controller) startLocked() {
	c.gen++
	gen := c.gen
	c.playing = true
	c.stop = c.sched.Every(c.interval, func() { c.tick(gen) })
}

// tick advances auto-play. Reaching the last snapshot stops playback in the same
// tick, so no tick ever runs past the end.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing || gen != c.gen {
		return
	}
	if !c.stepForwardLocked() {
		c.cancelLocked()
		c.view.Controls(c.stateLocked())
	}
}

func (c *Controller) cancelLocked() {
	c.gen++
	c.playing = false
	if c.stop != nil {
		stop := c.stop
		c.stop = nil
		stop()
	}
}

func (c *Controller) renderLocked() {
	c.view.Render(c.history[c.position], c.stateLocked())
}

func (c *Controller) stateLocked() State {
	return State{
		Position: c.position,
		Length:   len(c.history),
		Playing:  c.playing,
	}
}

// TickerScheduler runs tasks on a goroutine driven by time.Ticker.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
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
