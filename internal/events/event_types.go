package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted       EventType = "session_started"
	EventSessionRotated       EventType = "session_rotated"
	EventSessionRevoked       EventType = "session_revoked"
	EventRefreshReuseDetected EventType = "refresh_reuse_detected"
)

// Event represents a session lifecycle event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionPayload accompanies session_started and session_rotated.
type SessionPayload struct {
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// ReusePayload accompanies refresh_reuse_detected.
type ReusePayload struct {
	Reason string `json:"reason"`
}
