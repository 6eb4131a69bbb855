package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/gesture"
	"github.com/teslashibe/go-dreamer/pkg/player"
)

func newTestServer() *Server {
	return NewServer(Options{Port: "0", FrameDecimation: 10, Logger: log.Discard()})
}

func getJSON(t *testing.T, s *Server, path string, v any) int {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode
}

func postConfirm(t *testing.T, s *Server, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/confirm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("POST /api/confirm: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode
}

func TestStatus_TracksFrames(t *testing.T) {
	s := newTestServer()
	s.SetReadiness(player.ReadinessFunc(func() player.ControllerStatus { return player.StatusFault }))

	var st Status
	getJSON(t, s, "/api/status", &st)
	if st.State != "idle" || st.Controller != "fault" {
		t.Errorf("initial status: %+v", st)
	}

	for seq := uint64(0); seq < 25; seq++ {
		f := player.Frame{Trajectory: "Wave", Seq: seq, T: float64(seq) / 1000}
		if err := s.Send(context.Background(), f); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	getJSON(t, s, "/api/status", &st)
	if st.Trajectory != "Wave" || st.Frames != 25 || st.State != "running" {
		t.Errorf("status after frames: %+v", st)
	}
	// Frames 0, 10 and 20 go to subscribers.
	if n := s.frameHub.Pending(); n != 3 {
		t.Errorf("queued frames: got %d, want 3", n)
	}
}

func TestOnStep(t *testing.T) {
	s := newTestServer()
	s.OnStep(gesture.StepEvent{
		RunID:     "run-1",
		Index:     1,
		Iteration: 2,
		Result: player.Result{
			Trajectory: "Wave",
			State:      player.StateAborted,
			Frames:     120,
			LastT:      0.12,
			Err:        player.ErrControllerNotReady,
		},
	})

	var st Status
	getJSON(t, s, "/api/status", &st)
	if st.RunID != "run-1" || st.State != "aborted" || st.Last == nil {
		t.Fatalf("status: %+v", st)
	}
	if st.Last.Iteration != 2 || st.Last.Error != "controller not ready" {
		t.Errorf("last step: %+v", st.Last)
	}
}

func TestGesture(t *testing.T) {
	s := newTestServer()

	var steps []TrajectorySummary
	getJSON(t, s, "/api/gesture", &steps)
	if len(steps) != 0 {
		t.Errorf("expected no steps before SetGesture, got %d", len(steps))
	}

	g, err := gesture.LoadEmbedded("handwave")
	if err != nil {
		t.Fatal(err)
	}
	s.SetGesture(g)

	getJSON(t, s, "/api/gesture", &steps)
	if len(steps) != 3 {
		t.Fatalf("steps: got %d, want 3", len(steps))
	}
	wave := steps[1]
	if wave.Name != "Wave" || wave.After != "GoToReady" || !wave.Repeat {
		t.Errorf("wave summary: %+v", wave)
	}
	if wave.Waypoints["rh_position"] != 13 {
		t.Errorf("wave rh_position waypoints: %d", wave.Waypoints["rh_position"])
	}
}

func TestConfirm(t *testing.T) {
	s := newTestServer()

	if code := postConfirm(t, s, `{"continue": true}`); code != 409 {
		t.Errorf("answer with nothing pending: got %d, want 409", code)
	}
	if code := postConfirm(t, s, `{}`); code != 400 {
		t.Errorf("missing field: got %d, want 400", code)
	}

	type answer struct {
		ok  bool
		err error
	}
	done := make(chan answer, 1)
	go func() {
		ok, err := s.Confirmer().ConfirmContinue(context.Background(), "Wave again?")
		done <- answer{ok, err}
	}()

	var pending struct {
		Pending bool   `json:"pending"`
		Prompt  string `json:"prompt"`
	}
	deadline := time.Now().Add(2 * time.Second)
	for !pending.Pending && time.Now().Before(deadline) {
		getJSON(t, s, "/api/confirm", &pending)
		time.Sleep(5 * time.Millisecond)
	}
	if pending.Prompt != "Wave again?" {
		t.Fatalf("pending prompt: %+v", pending)
	}

	if code := postConfirm(t, s, `{"continue": false}`); code != 200 {
		t.Fatalf("answer: got %d", code)
	}
	select {
	case a := <-done:
		if a.ok || a.err != nil {
			t.Errorf("got %v, %v; want false, nil", a.ok, a.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("confirmer did not return")
	}
	if s.Status().Prompt != "" {
		t.Error("prompt should clear after the answer")
	}
}

func TestConfirm_Cancelled(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := s.Confirmer().ConfirmContinue(ctx, "Start demo?"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want deadline exceeded", err)
	}
	if s.Status().Prompt != "" {
		t.Error("prompt should clear on cancel")
	}
}

func TestWebSocketRoutesRequireUpgrade(t *testing.T) {
	s := newTestServer()
	resp, err := s.app.Test(httptest.NewRequest("GET", "/ws/frames", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 426 {
		t.Errorf("got %d, want 426 Upgrade Required", resp.StatusCode)
	}
}
