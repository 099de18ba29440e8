package log

import (
	"time"
)

// Event represents a connection log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Peer is the remote peer address in decimal form, if known.
	Peer string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	ControlMsg  *ControlMsgEvent  `cbor:"10,keyasint,omitempty"` // Handshake/disconnect control
	Data        *DataEvent        `cbor:"11,keyasint,omitempty"` // Application payload
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection state
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
	// DirectionNone indicates a local event with no message flow.
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryControl indicates a control message (connect/accept/disconnect).
	CategoryControl Category = 0
	// CategoryData indicates application payload flow.
	CategoryData Category = 1
	// CategoryState indicates a connection state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryControl:
		return "CONTROL"
	case CategoryData:
		return "DATA"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ControlMsgEvent captures a connection control message.
type ControlMsgEvent struct {
	// Type is the control message type name (CONNECT/ACCEPT/...).
	Type string `cbor:"1,keyasint"`
}

// DataEvent captures application payload flow.
type DataEvent struct {
	// Size is the payload size in bytes.
	Size int `cbor:"1,keyasint"`

	// Channel is the channel index the payload travelled on.
	Channel uint8 `cbor:"2,keyasint"`
}

// StateChangeEvent captures connection lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state name.
	OldState string `cbor:"1,keyasint"`

	// NewState is the new state name.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Kind is the error kind name (CONNECTION_TIMEOUT/...), if classified.
	Kind string `cbor:"1,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}

// NewEvent creates an event with the timestamp set to now.
func NewEvent(connID string, direction Direction, category Category) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Category:     category,
	}
}
