// Package protocol defines the WebSocket message types for browser-server
// communication. The browser streams landmark frames and conversation
// turns in; the server streams live metrics and replies back.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Browser → Server messages
	TypeTracking     MessageType = "tracking"     // Landmark frame
	TypeConversation MessageType = "conversation" // Candidate speech turn
	TypeControl      MessageType = "control"      // Session control (end, reset)

	// Server → Browser messages
	TypeMetricsUpdate MessageType = "metrics_update" // Per-frame behavioral metrics
	TypeAIResponse    MessageType = "ai_response"    // Interviewer reply
	TypeAnalytics     MessageType = "analytics"      // Session report card
	TypeError         MessageType = "error"          // Request-level failure

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Browser → Server Message Types
// =============================================================================

// TrackingData contains one frame of landmarks from the browser's
// tracker plus the speech flags its voice-activity detector derives.
type TrackingData struct {
	Pose      []landmark.Landmark `json:"pose,omitempty"`
	Face      []landmark.Landmark `json:"face,omitempty"`
	LeftHand  []landmark.Landmark `json:"left_hand,omitempty"`
	RightHand []landmark.Landmark `json:"right_hand,omitempty"`

	Timestamp   float64 `json:"timestamp"` // Seconds, monotonic per session
	FrameNumber int     `json:"frame_number,omitempty"`
	IsSpeaking  bool    `json:"is_speaking,omitempty"`
	SpeechOnset bool    `json:"speech_onset,omitempty"`
}

// Frame converts the wire payload into a landmark frame.
func (t *TrackingData) Frame() landmark.Frame {
	return landmark.Frame{
		Pose:        t.Pose,
		Face:        t.Face,
		LeftHand:    t.LeftHand,
		RightHand:   t.RightHand,
		Timestamp:   t.Timestamp,
		FrameNumber: t.FrameNumber,
	}
}

// ConversationData contains one candidate speech turn.
type ConversationData struct {
	Text string `json:"text"`
}

// ControlData requests a session-level action.
type ControlData struct {
	Action string `json:"action"` // "end", "reset", "analytics"
}

// =============================================================================
// Server → Browser Message Types
// =============================================================================

// AIResponseData contains the interviewer's reply to a candidate turn.
type AIResponseData struct {
	Text string `json:"text"`
}

// ErrorData reports a request-level failure without closing the socket.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
