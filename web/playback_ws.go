// ABOUTME: Websocket playback sessions: each connection owns a Controller and a training Session.
// ABOUTME: Client commands drive the controller; frames, control state, and notifications are pushed back as JSON.
package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/metrics"
	"github.com/2389-research/sapling/playback"
	"github.com/2389-research/sapling/trainapi"
	"github.com/2389-research/sapling/viz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	outboxSize   = 64
	writeTimeout = 10 * time.Second
	maxCmdBytes  = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 16384,
}

// Command types sent by the browser.
const (
	cmdTrain    = "train"
	cmdForward  = "forward"
	cmdBackward = "backward"
	cmdToggle   = "toggle"
	cmdSeek     = "seek"
	cmdResize   = "resize"
)

// clientCommand is one message from the browser. Training fields mirror the
// /api/train query parameters; zero values fall back to the defaults.
type clientCommand struct {
	Type            string        `json:"type"`
	Dataset         string        `json:"dataset,omitempty"`
	MaxDepth        int           `json:"max_depth,omitempty"`
	MinSamplesSplit int           `json:"min_samples_split,omitempty"`
	Criterion       string        `json:"criterion,omitempty"`
	Position        int           `json:"position,omitempty"`
	Surfaces        []viz.Surface `json:"surfaces,omitempty"`
}

// controlsState is the navigation affordance state pushed on every change.
type controlsState struct {
	playback.State
	CanStepBackward bool   `json:"can_step_backward"`
	CanStepForward  bool   `json:"can_step_forward"`
	PlayLabel       string `json:"play_label"`
}

// serverMessage is one message to the browser.
type serverMessage struct {
	Type     string         `json:"type"`
	Session  string         `json:"session,omitempty"`
	Frame    *viz.Frame     `json:"frame,omitempty"`
	Controls *controlsState `json:"controls,omitempty"`
	Level    string         `json:"level,omitempty"`
	Message  string         `json:"message,omitempty"`
	Busy     *bool          `json:"busy,omitempty"`
}

// wsView is the playback.View and playback.Notifier for one connection. It never
// blocks: messages go into a buffered outbox drained by the connection's writer.
type wsView struct {
	id     string
	out    chan serverMessage
	sendMu sync.Mutex // serializes producers so evict-then-push stays bounded

	mu    sync.Mutex
	tree  viz.Surface
	space viz.Surface
}

func newWSView(id string) *wsView {
	return &wsView{
		id:    id,
		out:   make(chan serverMessage, outboxSize),
		tree:  viz.Surface{Name: viz.SurfaceTree},
		space: viz.Surface{Name: viz.SurfaceSpace},
	}
}

func (v *wsView) Render(snap dtree.Snapshot, st playback.State) {
	v.mu.Lock()
	tree, space := v.tree, v.space
	v.mu.Unlock()
	f := viz.BuildFrame(snap, st, tree, space)
	v.send(serverMessage{Type: "frame", Frame: &f})
}

func (v *wsView) Controls(st playback.State) {
	v.send(serverMessage{Type: "controls", Controls: &controlsState{
		State:           st,
		CanStepBackward: st.CanStepBackward(),
		CanStepForward:  st.CanStepForward(),
		PlayLabel:       st.PlayLabel(),
	}})
}

func (v *wsView) Busy(busy bool) {
	v.send(serverMessage{Type: "busy", Busy: &busy})
}

func (v *wsView) Success(msg string) { v.notify("success", msg) }
func (v *wsView) Error(msg string)   { v.notify("error", msg) }

func (v *wsView) notify(level, msg string) {
	v.send(serverMessage{Type: "notify", Level: level, Message: msg})
}

// resize records new surface sizes. Unknown surface names are ignored.
func (v *wsView) resize(surfaces []viz.Surface) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range surfaces {
		switch s.Name {
		case viz.SurfaceTree:
			v.tree = s
		case viz.SurfaceSpace:
			v.space = s
		}
	}
}

// send queues m. When the outbox is full the oldest queued message is dropped,
// so the latest frame and controls always reach the browser.
func (v *wsView) send(m serverMessage) {
	v.sendMu.Lock()
	defer v.sendMu.Unlock()
	for {
		select {
		case v.out <- m:
			return
		default:
		}
		select {
		case old := <-v.out:
			log.Printf("web playback outbox full session=%s dropped=%s", v.id, old.Type)
		default:
		}
	}
}

// handlePlaybackWS upgrades the connection and runs one playback session until
// the browser disconnects.
func (s *Server) handlePlaybackWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web playback upgrade failed err=%v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxCmdBytes)

	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	id := uuid.New().String()
	view := newWSView(id)
	ctrl := playback.NewController(view, playback.WithScheduler(s.sched), playback.WithInterval(s.interval))
	defer ctrl.Close()
	sess := playback.NewSession(ctrl, archiveTrainer{s: s}, view)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log.Printf("web playback session started session=%s remote=%s", id, r.RemoteAddr)
	view.send(serverMessage{Type: "hello", Session: id})
	view.Controls(ctrl.State())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeLoop(ctx, conn, view.out)
	}()

	readLoop(ctx, conn, sess, view)
	cancel()
	<-writerDone
	log.Printf("web playback session ended session=%s", id)
}

// writeLoop is the only writer on conn.
func writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan serverMessage) {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		case m := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(m); err != nil {
				log.Printf("web playback write failed type=%s err=%v", m.Type, err)
				return
			}
		}
	}
}

// readLoop is the only reader on conn. It returns when the connection closes.
func readLoop(ctx context.Context, conn *websocket.Conn, sess *playback.Session, view *wsView) {
	ctrl := sess.Controller()
	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("web playback read ended session=%s err=%v", view.id, err)
			}
			return
		}

		switch cmd.Type {
		case cmdTrain:
			metrics.PlaybackCommands.WithLabelValues(cmd.Type).Inc()
			req, err := cmd.request()
			if err != nil {
				view.Error(err.Error())
				continue
			}
			go func() {
				if err := sess.Train(ctx, req); errors.Is(err, playback.ErrTrainingInFlight) {
					view.notify("warning", "Training already in progress")
				}
			}()
		case cmdForward:
			metrics.PlaybackCommands.WithLabelValues(cmd.Type).Inc()
			ctrl.StepForward()
		case cmdBackward:
			metrics.PlaybackCommands.WithLabelValues(cmd.Type).Inc()
			ctrl.StepBackward()
		case cmdToggle:
			metrics.PlaybackCommands.WithLabelValues(cmd.Type).Inc()
			ctrl.TogglePlay()
		case cmdSeek:
			metrics.PlaybackCommands.WithLabelValues(cmd.Type).Inc()
			ctrl.Seek(cmd.Position)
		case cmdResize:
			metrics.PlaybackCommands.WithLabelValues(cmd.Type).Inc()
			view.resize(cmd.Surfaces)
			ctrl.OnResize()
		default:
			metrics.PlaybackCommands.WithLabelValues("unknown").Inc()
			view.Error("unknown command " + cmd.Type)
		}
	}
}

// request builds a validated training request, defaulting omitted fields.
func (c clientCommand) request() (playback.Request, error) {
	req := trainapi.DefaultRequest()
	if c.Dataset != "" {
		req.Dataset = c.Dataset
	}
	if c.MaxDepth != 0 {
		req.Params.MaxDepth = c.MaxDepth
	}
	if c.MinSamplesSplit != 0 {
		req.Params.MinSamplesSplit = c.MinSamplesSplit
	}
	if c.Criterion != "" {
		crit, err := dtree.ParseCriterion(c.Criterion)
		if err != nil {
			return req, err
		}
		req.Params.Criterion = crit
	}
	if !dataset.Known(req.Dataset) {
		return req, dataset.ErrUnknown
	}
	return req, req.Params.Validate()
}
