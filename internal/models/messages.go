package models

import (
	"github.com/goccy/go-json"
)

// MessageType discriminates the JSON envelopes arriving on the streaming
// channel.
type MessageType string

const (
	MessageTypeConnectionEstablished MessageType = "connection_established"
	MessageTypeTrackingUpdate        MessageType = "tracking_update"
	MessageTypeStatusUpdate          MessageType = "status_update"
	MessageTypeSystemStatus          MessageType = "system_status"
)

// Envelope is the outer shape of every text frame on the streaming channel.
// Payload stays raw until the type-specific parser runs.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectionEstablished is the handshake payload carrying backend
// capability flags.
type ConnectionEstablished struct {
	SessionID    string   `json:"session_id,omitempty"`
	Capabilities []string `json:"capabilities"`
}

// HasCapability reports whether the backend advertised the given capability.
func (c ConnectionEstablished) HasCapability(name string) bool {
	for _, cap := range c.Capabilities {
		if cap == name {
			return true
		}
	}
	return false
}

// Backend capability flags this core recognizes.
const (
	CapabilityBinaryFrames = "binary_frames"
	CapabilityCompression  = "compression"
)

// BackendHealth is the liveness probe response from the backend REST API.
type BackendHealth struct {
	Status   string            `json:"status"` // healthy | unhealthy | unknown
	Services map[string]string `json:"services,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h BackendHealth) Healthy() bool {
	return h.Status == "healthy"
}

// ConnectionState is the streaming session state machine.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// FrameSummary is the per-frame digest published to NATS after processing.
type FrameSummary struct {
	GlobalFrameIndex int64    `json:"global_frame_index"`
	SceneID          string   `json:"scene_id"`
	TimestampUTC     string   `json:"timestamp_processed_utc"`
	CameraCount      int      `json:"camera_count"`
	DetectionCount   int      `json:"detection_count"`
	GlobalIDs        []string `json:"global_ids"`
	DroppedTracks    int      `json:"dropped_tracks"`
}
