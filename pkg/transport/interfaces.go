package transport

import (
	"errors"

	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

// Transport errors.
var (
	// ErrTransportClosed indicates the substrate has been closed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnknownPeer indicates the substrate has no route to the peer.
	ErrUnknownPeer = errors.New("unknown peer")
)

// Delivery selects the delivery semantics for a data send.
type Delivery uint8

const (
	// DeliveryUnreliable sends without delivery or ordering guarantees.
	DeliveryUnreliable Delivery = 0

	// DeliveryUnreliableOrdered drops late datagrams to preserve order.
	DeliveryUnreliableOrdered Delivery = 1

	// DeliveryReliable retransmits until acknowledged, unordered.
	DeliveryReliable Delivery = 2

	// DeliveryReliableOrdered retransmits and preserves send order.
	DeliveryReliableOrdered Delivery = 3
)

// String returns the delivery mode name.
func (d Delivery) String() string {
	switch d {
	case DeliveryUnreliable:
		return "UNRELIABLE"
	case DeliveryUnreliableOrdered:
		return "UNRELIABLE_ORDERED"
	case DeliveryReliable:
		return "RELIABLE"
	case DeliveryReliableOrdered:
		return "RELIABLE_ORDERED"
	default:
		return "UNKNOWN"
	}
}

// Handler is the capability set a connection role implements to receive
// substrate events. Callbacks run on the substrate's delivery
// goroutine; payload slices are only valid for the duration of the
// call.
type Handler interface {
	// OnControlReceived is called when a control message arrives.
	OnControlReceived(msg wire.ControlMessage, sender peer.Address)

	// OnDataReceived is called when application payload arrives.
	OnDataReceived(payload []byte, sender peer.Address, channel uint8)

	// OnConnectionAttemptFailed is called when the substrate reports
	// that it could not establish delivery to the peer.
	OnConnectionAttemptFailed(sender peer.Address)
}

// Transport abstracts the peer-to-peer delivery substrate.
// Implementations must be safe for concurrent use.
type Transport interface {
	// SessionActive reports whether the substrate holds an active
	// delivery session with the peer.
	SessionActive(remote peer.Address) bool

	// CloseSession drops the local delivery session with the peer.
	// No-op if no session exists.
	CloseSession(remote peer.Address)

	// SendControl sends a control message to the peer.
	SendControl(remote peer.Address, msg wire.ControlMessage) error

	// SendData sends application payload to the peer on the given
	// channel with the given delivery semantics. The substrate takes
	// ownership of payload.
	SendData(remote peer.Address, payload []byte, channel uint8, delivery Delivery) error

	// AllowRelay configures whether delivery may fall back to relayed
	// routes when a direct route is unavailable. Substrates without
	// relay support record and ignore the flag.
	AllowRelay(allowed bool)

	// SetHandler installs the event handler. Must be called before the
	// substrate delivers events; later calls replace the handler.
	SetHandler(h Handler)
}

// Compile-time interface satisfaction checks.
var (
	_ Transport = (*Memory)(nil)
	_ Transport = (*UDP)(nil)
)
