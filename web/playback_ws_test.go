// ABOUTME: Tests for websocket playback sessions using a real httptest server and gorilla dialer.
// ABOUTME: Covers the train → frame → step flow, busy notifications, validation errors, and unknown commands.
package web

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/sapling/playback"
	"github.com/2389-research/sapling/viz"
	"github.com/gorilla/websocket"
)

func dialPlayback(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/playback"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads messages until one of type typ arrives, returning it and
// everything read before it.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) (serverMessage, []serverMessage) {
	t.Helper()
	var seen []serverMessage
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var m serverMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("waiting for %q: %v (seen %d messages)", typ, err, len(seen))
		}
		if m.Type == typ {
			return m, seen
		}
		seen = append(seen, m)
	}
}

func TestPlaybackSessionHello(t *testing.T) {
	conn := dialPlayback(t)

	hello, _ := readUntil(t, conn, "hello")
	if hello.Session == "" {
		t.Error("expected session id in hello")
	}
	controls, _ := readUntil(t, conn, "controls")
	if controls.Controls.Length != 0 || controls.Controls.CanStepForward || controls.Controls.PlayLabel != "Play" {
		t.Errorf("initial controls = %+v", controls.Controls)
	}
}

func TestPlaybackSessionTrainAndStep(t *testing.T) {
	conn := dialPlayback(t)
	readUntil(t, conn, "controls")

	if err := conn.WriteJSON(clientCommand{
		Type: cmdResize,
		Surfaces: []viz.Surface{
			{Name: viz.SurfaceTree, Width: 640, Height: 480},
			{Name: viz.SurfaceSpace, Width: 500, Height: 400},
		},
	}); err != nil {
		t.Fatalf("write resize: %v", err)
	}
	if err := conn.WriteJSON(clientCommand{Type: cmdTrain, Dataset: "linear", MaxDepth: 2}); err != nil {
		t.Fatalf("write train: %v", err)
	}

	notify, before := readUntil(t, conn, "notify")
	if notify.Level != "success" || notify.Message != "Decision tree training completed!" {
		t.Fatalf("notify = %+v", notify)
	}
	var frame *serverMessage
	sawBusy := false
	for i := range before {
		switch before[i].Type {
		case "busy":
			if *before[i].Busy {
				sawBusy = true
			}
		case "frame":
			frame = &before[i]
		}
	}
	if !sawBusy {
		t.Error("expected busy=true before completion")
	}
	if frame == nil {
		t.Fatal("expected a frame after training")
	}
	if frame.Frame.State.Position != 0 || frame.Frame.State.Length < 2 {
		t.Errorf("frame state = %+v", frame.Frame.State)
	}
	if len(frame.Frame.Tree.Nodes) == 0 {
		t.Error("frame tree has no nodes")
	}
	if frame.Frame.Space.Surface.Width != 500 {
		t.Errorf("space surface = %+v, want resized width 500", frame.Frame.Space.Surface)
	}
	busy, _ := readUntil(t, conn, "busy")
	if *busy.Busy {
		t.Error("expected busy=false after completion")
	}
	length := frame.Frame.State.Length

	if err := conn.WriteJSON(clientCommand{Type: cmdForward}); err != nil {
		t.Fatalf("write forward: %v", err)
	}
	next, _ := readUntil(t, conn, "frame")
	if next.Frame.State.Position != 1 {
		t.Errorf("after forward position = %d, want 1", next.Frame.State.Position)
	}

	if err := conn.WriteJSON(clientCommand{Type: cmdSeek, Position: length - 1}); err != nil {
		t.Fatalf("write seek: %v", err)
	}
	last, _ := readUntil(t, conn, "frame")
	if last.Frame.State.Position != length-1 {
		t.Errorf("after seek position = %d, want %d", last.Frame.State.Position, length-1)
	}
	controls, _ := readUntil(t, conn, "controls")
	if controls.Controls.CanStepForward {
		t.Error("forward should be disabled at the last step")
	}

	// Play at the last step stops immediately.
	if err := conn.WriteJSON(clientCommand{Type: cmdToggle}); err != nil {
		t.Fatalf("write toggle: %v", err)
	}
	toggled, _ := readUntil(t, conn, "controls")
	if toggled.Controls.Playing {
		t.Error("play at last step should not start playback")
	}
}

func TestPlaybackSessionRejectsBadTrain(t *testing.T) {
	conn := dialPlayback(t)
	readUntil(t, conn, "controls")

	if err := conn.WriteJSON(clientCommand{Type: cmdTrain, Criterion: "mse"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	notify, before := readUntil(t, conn, "notify")
	if notify.Level != "error" {
		t.Errorf("notify = %+v", notify)
	}
	for _, m := range before {
		if m.Type == "busy" || m.Type == "frame" {
			t.Errorf("invalid params should not start training, saw %q", m.Type)
		}
	}
}

func TestPlaybackSessionUnknownCommand(t *testing.T) {
	conn := dialPlayback(t)
	readUntil(t, conn, "controls")

	if err := conn.WriteJSON(clientCommand{Type: "rewind"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	notify, _ := readUntil(t, conn, "notify")
	if notify.Level != "error" || !strings.Contains(notify.Message, "rewind") {
		t.Errorf("notify = %+v", notify)
	}
}

func TestPlaybackCommandRequestDefaults(t *testing.T) {
	req, err := clientCommand{Type: cmdTrain}.request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Dataset != "moons" || req.Params.MaxDepth != 3 || req.Params.MinSamplesSplit != 2 {
		t.Errorf("defaults = %+v", req)
	}
	if _, err := (clientCommand{Dataset: "spirals"}).request(); err == nil {
		t.Error("expected error for unknown dataset")
	}
}

func TestWSViewFullOutboxKeepsNewest(t *testing.T) {
	view := newWSView("full")
	for i := 0; i < outboxSize+5; i++ {
		view.notify("info", fmt.Sprintf("msg-%d", i))
	}
	view.Controls(playback.State{Position: 2, Length: 3})

	if got := len(view.out); got != outboxSize {
		t.Fatalf("outbox length = %d, want %d", got, outboxSize)
	}
	first := <-view.out
	if first.Message != "msg-6" {
		t.Errorf("oldest kept = %q, want msg-6", first.Message)
	}
	var last serverMessage
	for len(view.out) > 0 {
		last = <-view.out
	}
	if last.Type != "controls" || last.Controls == nil || last.Controls.Position != 2 {
		t.Errorf("newest message = %+v, want final controls", last)
	}
}
