// ABOUTME: Training Session tying a Controller to a Trainer with a single in-flight request guard.
// ABOUTME: Adopts a history only after a successful, valid response and reports outcomes via a Notifier.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/2389-research/sapling/dtree"
)

var (
	// ErrTrainingInFlight is returned when Train is called while a request is outstanding.
	ErrTrainingInFlight = errors.New("training already in progress")
	// ErrTrainingFailed wraps every training failure surfaced to the user.
	ErrTrainingFailed = errors.New("training failed")
)

// Request carries the user-selected training parameters.
type Request struct {
	Dataset string       `json:"dataset"`
	Params  dtree.Params `json:"params"`
}

// Trainer produces a run history for a request. Implementations include the
// HTTP client for a remote training endpoint and the in-process trainer.
type Trainer interface {
	Train(ctx context.Context, req Request) (dtree.History, error)
}

// Notifier surfaces training outcomes to the user.
type Notifier interface {
	Busy(busy bool)
	Success(msg string)
	Error(msg string)
}

// Session couples one Controller with a Trainer. At most one training request is
// in flight per Session.
type Session struct {
	ctrl    *Controller
	trainer Trainer
	notify  Notifier
	busy    atomic.Bool
}

// NewSession creates a Session.
func NewSession(ctrl *Controller, trainer Trainer, notify Notifier) *Session {
	return &Session{ctrl: ctrl, trainer: trainer, notify: notify}
}

// Controller returns the session's playback controller.
func (s *Session) Controller() *Controller {
	return s.ctrl
}

// Busy reports whether a training request is outstanding.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Train runs one training request. On success the controller is loaded with the
// new history; on any failure the existing playback state is left untouched.
func (s *Session) Train(ctx context.Context, req Request) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrTrainingInFlight
	}
	s.notify.Busy(true)
	defer func() {
		s.busy.Store(false)
		s.notify.Busy(false)
	}()

	h, err := s.trainer.Train(ctx, req)
	if err == nil {
		err = h.Validate()
	}
	if err != nil {
		log.Printf("playback training failed dataset=%s max_depth=%d min_samples_split=%d criterion=%s err=%v",
			req.Dataset, req.Params.MaxDepth, req.Params.MinSamplesSplit, req.Params.Criterion, err)
		s.notify.Error("Error occurred during training")
		return fmt.Errorf("%w: %w", ErrTrainingFailed, err)
	}

	s.ctrl.Load(h)
	log.Printf("playback training completed dataset=%s steps=%d", req.Dataset, len(h))
	s.notify.Success("Decision tree training completed!")
	return nil
}
