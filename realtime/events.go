package realtime

import (
	"encoding/json"
	"time"
)

// Outbound event kinds pushed to clients over the websocket.
const (
	EventSessionStarted = "sessionStarted"
	EventChatMessage    = "chatMessage"
)

// Inbound intent kinds received from clients over the websocket.
const (
	IntentRegister     = "register"
	IntentLeaveSession = "leaveSession"
)

// Event is the envelope for every outbound frame
type Event struct {
	Kind string      `json:"event"`
	Data interface{} `json:"data"`
}

// inboundFrame is the envelope for every inbound frame; the payload is decoded
// per kind after the envelope
type inboundFrame struct {
	Kind string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// RegisterIntent associates an already-authenticated connection with richer
// identity for presence lookups
type RegisterIntent struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"name"`
}

// LeaveSessionIntent signals that a participant is leaving a lecture room
type LeaveSessionIntent struct {
	RoomToken string `json:"roomToken"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
}

// SessionStartedEvent is broadcast to a room when its lecture goes live
type SessionStartedEvent struct {
	SessionID        string    `json:"sessionId"`
	RoomToken        string    `json:"roomToken"`
	Title            string    `json:"title"`
	OwnerDisplayName string    `json:"ownerDisplayName"`
	StartedAt        time.Time `json:"startedAt"`
}

// ChatMessageEvent is broadcast to a room when a chat entry is appended
type ChatMessageEvent struct {
	Author    ChatAuthor `json:"author"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}

// ChatAuthor identifies the sender of a chat message
type ChatAuthor struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}
