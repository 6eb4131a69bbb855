// Package config provides configuration helpers for go-dreamer commands.
//
// Every setting has a default and may be overridden by an environment
// variable. Command-line flags override both.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/teslashibe/go-dreamer/pkg/player"
)

// Defaults for the controller connection and the local servers.
const (
	DefaultControllerURL = "http://127.0.0.1:8090"
	DefaultTransport     = "http"
	DefaultTickHz        = 1000.0
	DefaultStatusPoll    = 20 * time.Millisecond
	DefaultDashboardPort = "8091"
	DefaultSimPort       = "8090"
	DefaultLogLevel      = "info"
)

// Environment variable names.
const (
	EnvControllerURL = "DREAMER_CONTROLLER_URL"
	EnvTransport     = "DREAMER_TRANSPORT"
	EnvTickHz        = "DREAMER_TICK_HZ"
	EnvStatusPoll    = "DREAMER_STATUS_POLL"
	EnvDashboardPort = "DREAMER_DASHBOARD_PORT"
	EnvSimPort       = "DREAMER_SIM_PORT"
	EnvLogLevel      = "LOG_LEVEL"
)

// Config holds the resolved runtime settings.
type Config struct {
	ControllerURL string
	Transport     string // "http" or "ws"
	TickHz        float64
	StatusPoll    time.Duration
	DashboardPort string
	SimPort       string
	LogLevel      string
}

// Load reads the environment on top of the defaults.
func Load() (Config, error) {
	cfg := Config{
		ControllerURL: env(EnvControllerURL, DefaultControllerURL),
		Transport:     strings.ToLower(env(EnvTransport, DefaultTransport)),
		TickHz:        DefaultTickHz,
		StatusPoll:    DefaultStatusPoll,
		DashboardPort: env(EnvDashboardPort, DefaultDashboardPort),
		SimPort:       env(EnvSimPort, DefaultSimPort),
		LogLevel:      env(EnvLogLevel, DefaultLogLevel),
	}

	if v := os.Getenv(EnvTickHz); v != "" {
		hz, err := cast.ToFloat64E(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTickHz, err)
		}
		cfg.TickHz = hz
	}

	if v := os.Getenv(EnvStatusPoll); v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvStatusPoll, err)
		}
		cfg.StatusPoll = d
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail deep inside the player.
func (c Config) Validate() error {
	if err := player.ValidateRate(c.TickHz); err != nil {
		return err
	}
	if c.StatusPoll <= 0 {
		return fmt.Errorf("status poll interval must be positive, got %v", c.StatusPoll)
	}
	switch c.Transport {
	case "http", "ws":
	default:
		return fmt.Errorf("unknown transport %q (want http or ws)", c.Transport)
	}
	return nil
}

// TickPeriod returns the control period for TickHz.
func (c Config) TickPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.TickHz)
}

// WebSocketURL rewrites the controller URL to the websocket command endpoint.
func (c Config) WebSocketURL() string {
	u := strings.TrimRight(c.ControllerURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws/command"
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
