package protocol

import "time"

// NewCommandMessage wraps a command frame.
func NewCommandMessage(cmd CommandData) (*Message, error) {
	return NewMessage(TypeCommand, cmd)
}

// NewStatusMessage creates a controller status message.
func NewStatusMessage(state, detail string) (*Message, error) {
	return NewMessage(TypeStatus, StatusData{State: state, Detail: detail})
}

// NewPlaybackMessage creates a playback telemetry message.
func NewPlaybackMessage(p PlaybackData) (*Message, error) {
	return NewMessage(TypePlayback, p)
}

// NewPingMessage creates a ping message.
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: time.Now().UnixMilli()})
}

// NewPongMessage answers a ping received at pingTS.
func NewPongMessage(id string, pingTS int64) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    now,
		LatencyMs: now - pingTS,
	})
}

// GetCommandData extracts a command frame.
func (m *Message) GetCommandData() (*CommandData, error) {
	var data CommandData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatusData extracts controller status.
func (m *Message) GetStatusData() (*StatusData, error) {
	var data StatusData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPlaybackData extracts playback telemetry.
func (m *Message) GetPlaybackData() (*PlaybackData, error) {
	var data PlaybackData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data.
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data.
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
