// Package protocol defines the JSON messages exchanged between the trajectory
// player, the robot controller and dashboard clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of message.
type MessageType string

const (
	// Player → controller
	TypeCommand MessageType = "command" // One synchronized command frame

	// Controller → player
	TypeStatus MessageType = "status" // Controller readiness

	// Player → dashboard
	TypePlayback MessageType = "playback" // Playback telemetry

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Controller states carried by StatusData.
const (
	StateReady    = "ready"
	StateNotReady = "not_ready"
	StateFault    = "fault"
)

// Message is the envelope for every message.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s data: %w", msgType, err)
		}
	}
	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	}, nil
}

// ParseData unmarshals the payload into v. An empty payload leaves v untouched.
func (m *Message) ParseData(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("parse message: missing type")
	}
	return &msg, nil
}

// CommandData is one reference frame for the whole-body controller.
type CommandData struct {
	Trajectory string  `json:"trajectory"`
	Seq        uint64  `json:"seq"`
	T          float64 `json:"t"`

	RightHandPosition    []float64 `json:"rh_position"`
	RightHandOrientation []float64 `json:"rh_orientation"`
	LeftHandPosition     []float64 `json:"lh_position"`
	LeftHandOrientation  []float64 `json:"lh_orientation"`
	Posture              []float64 `json:"posture"`
}

// Validate checks the vector sizes a controller expects.
func (c *CommandData) Validate(postureDOF int) error {
	for name, v := range map[string][]float64{
		"rh_position":    c.RightHandPosition,
		"rh_orientation": c.RightHandOrientation,
		"lh_position":    c.LeftHandPosition,
		"lh_orientation": c.LeftHandOrientation,
	} {
		if len(v) != 3 {
			return fmt.Errorf("%s: expected 3 values, got %d", name, len(v))
		}
	}
	if len(c.Posture) != postureDOF {
		return fmt.Errorf("posture: expected %d values, got %d", postureDOF, len(c.Posture))
	}
	return nil
}

// StatusData reports controller readiness.
type StatusData struct {
	State  string `json:"state"` // ready, not_ready or fault
	Detail string `json:"detail,omitempty"`
}

// PlaybackData is dashboard telemetry about the player.
type PlaybackData struct {
	RunID      string  `json:"run_id,omitempty"`
	Trajectory string  `json:"trajectory"`
	State      string  `json:"state"`
	Frames     uint64  `json:"frames"`
	T          float64 `json:"t"`
	Duration   float64 `json:"duration,omitempty"`
	Prompt     string  `json:"prompt,omitempty"` // set while waiting for the operator
	Error      string  `json:"error,omitempty"`
}

// PingData is a health check.
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData answers a ping.
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
