package wire

import "fmt"

// ControlMessageType identifies a connection control signal.
type ControlMessageType uint8

const (
	// ControlConnect requests a connection (client to server).
	ControlConnect ControlMessageType = 1

	// ControlAccept accepts a pending connection (server to client).
	ControlAccept ControlMessageType = 2

	// ControlDisconnect announces connection teardown (either side).
	ControlDisconnect ControlMessageType = 3

	// ControlTooManyPeers rejects a connection because the peer is at
	// its connection capacity (server to client).
	ControlTooManyPeers ControlMessageType = 4
)

// String returns the control message type name.
func (t ControlMessageType) String() string {
	switch t {
	case ControlConnect:
		return "CONNECT"
	case ControlAccept:
		return "ACCEPT"
	case ControlDisconnect:
		return "DISCONNECT"
	case ControlTooManyPeers:
		return "TOO_MANY_PEERS"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the type is a known control message type.
func (t ControlMessageType) IsValid() bool {
	return t >= ControlConnect && t <= ControlTooManyPeers
}

// ControlMessage is a connection control signal.
//
// CBOR encoding:
//
//	{
//	  1: type    // uint8
//	}
type ControlMessage struct {
	Type ControlMessageType `cbor:"1,keyasint"`
}

// Validate checks if the control message is valid.
func (m *ControlMessage) Validate() error {
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid control message type: %d", m.Type)
	}
	return nil
}
