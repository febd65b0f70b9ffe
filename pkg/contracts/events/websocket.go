// Package events contains the message contracts of the interactive session
// websocket.
package events

import (
	"encoding/json"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client requests
	MessageTypeSelect    MessageType = "select"
	MessageTypeRecommend MessageType = "recommend"
	MessageTypeOptions   MessageType = "options"
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server replies
	MessageTypeView           MessageType = "view"
	MessageTypeRecommendation MessageType = "recommendation"
	MessageTypeOptionsResult  MessageType = "options:result"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// View names a view that can be selected in a session
type View string

const (
	ViewDashboard   View = "dashboard"
	ViewOverview    View = "overview"
	ViewInsights    View = "insights"
	ViewComparative View = "comparative"
)

// Valid reports whether v names a known view
func (v View) Valid() bool {
	switch v {
	case ViewDashboard, ViewOverview, ViewInsights, ViewComparative:
		return true
	}
	return false
}

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`       // Unique message ID
	Type      MessageType `json:"type"`               // Message type
	Timestamp time.Time   `json:"timestamp"`          // Message timestamp
	TraceID   string      `json:"trace_id,omitempty"` // Session trace ID
	ReplyTo   string      `json:"reply_to,omitempty"` // ID of the request being answered
}

// ClientMessage is a request sent by the browser. Data is decoded according
// to Type: SelectRequest, RecommendRequest or OptionsRequest.
type ClientMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage represents a complete WebSocket message sent to the client
type ServerMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ConnectData greets a new session
type ConnectData struct {
	SessionID string `json:"session_id"`
	Rows      int    `json:"rows"`
}

// ViewUpdate carries a recomputed view together with the selection that
// produced it. Reset lists selections cleared by a cascade.
type ViewUpdate struct {
	View      View        `json:"view"`
	Selection interface{} `json:"selection"`
	Reset     []string    `json:"reset,omitempty"`
	Result    interface{} `json:"result"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidFrame    = "INVALID_FRAME"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeInvalidView     = "INVALID_VIEW"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeServerError     = "SERVER_ERROR"
)
