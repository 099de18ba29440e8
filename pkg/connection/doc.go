// Package connection implements the SEAM connection layer.
//
// A Connection turns the callback-driven, unreliable delivery
// substrate (pkg/transport) into a stream-like, pull-based abstraction
// with an explicit lifecycle:
//
//	Idle --connect--> Connecting --accept--> Connected
//	                       |                     |
//	                       +----> Disconnected <-+
//
// Transitions are monotonic: once Disconnected, a connection never
// re-enters Connecting. Create a new Connection to retry.
//
// # Handshake
//
// Connect sends a Connect control message and races the peer's Accept
// against a timer of max(1, timeout) seconds. Handshake failures
// (timeout, malformed address, peer capacity, transport faults) are
// reported through the Handler's OnError callback and leave the
// connection Disconnected; Connect itself returns an error only for
// precondition violations and context cancellation.
//
// # Receive
//
// Inbound payload is queued in arrival order. Receive blocks until
// data is available or the connection disconnects, then copies exactly
// one payload into the caller's buffer. Once Disconnected with an
// empty queue, Receive fails with ErrEndOfStream.
//
// # Teardown
//
// Disconnect sends a best-effort Disconnect control message, waits a
// one-second grace period to improve its delivery odds, then closes
// the substrate session and cancels any pending handshake. Disconnect
// is idempotent and never fails.
//
// The Listener type provides the symmetric accept path: it answers
// Connect control messages with Accept (or TooManyPeers at capacity)
// and hands out Connections that are already Connected.
package connection
