package config

import (
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/go-dreamer/pkg/player"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvControllerURL, "")
	t.Setenv(EnvTransport, "")
	t.Setenv(EnvTickHz, "")
	t.Setenv(EnvStatusPoll, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ControllerURL != DefaultControllerURL {
		t.Errorf("ControllerURL: got %q, want %q", cfg.ControllerURL, DefaultControllerURL)
	}
	if cfg.TickHz != DefaultTickHz {
		t.Errorf("TickHz: got %v, want %v", cfg.TickHz, DefaultTickHz)
	}
	if cfg.TickPeriod() != time.Millisecond {
		t.Errorf("TickPeriod: got %v, want 1ms", cfg.TickPeriod())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvTickHz, "250")
	t.Setenv(EnvStatusPoll, "50ms")
	t.Setenv(EnvTransport, "WS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TickHz != 250 {
		t.Errorf("TickHz: got %v, want 250", cfg.TickHz)
	}
	if cfg.StatusPoll != 50*time.Millisecond {
		t.Errorf("StatusPoll: got %v, want 50ms", cfg.StatusPoll)
	}
	if cfg.Transport != "ws" {
		t.Errorf("Transport: got %q, want ws", cfg.Transport)
	}
}

func TestLoad_BadValues(t *testing.T) {
	t.Setenv(EnvTickHz, "fast")
	if _, err := Load(); err == nil {
		t.Error("Expected error for non-numeric tick rate")
	}

	t.Setenv(EnvTickHz, "0")
	if _, err := Load(); err == nil {
		t.Error("Expected error for zero tick rate")
	}

	for _, hz := range []string{"NaN", "+Inf", "2e9"} {
		t.Setenv(EnvTickHz, hz)
		if _, err := Load(); !errors.Is(err, player.ErrInvalidRate) {
			t.Errorf("tick rate %s: got %v, want ErrInvalidRate", hz, err)
		}
	}

	t.Setenv(EnvTickHz, "")
	t.Setenv(EnvTransport, "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown transport")
	}
}

func TestWebSocketURL(t *testing.T) {
	cases := map[string]string{
		"http://10.0.0.2:8090":  "ws://10.0.0.2:8090/ws/command",
		"http://10.0.0.2:8090/": "ws://10.0.0.2:8090/ws/command",
		"https://dreamer.local": "wss://dreamer.local/ws/command",
		"ws://already.ws:1/":    "ws://already.ws:1/ws/command",
	}
	for in, want := range cases {
		got := Config{ControllerURL: in}.WebSocketURL()
		if got != want {
			t.Errorf("WebSocketURL(%q): got %q, want %q", in, got, want)
		}
	}
}
