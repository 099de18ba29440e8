package connection

import "errors"

// Connection errors.
var (
	// ErrNotIdle indicates Connect was called on a connection that has
	// already attempted (or completed) a handshake.
	ErrNotIdle = errors.New("connection not idle")

	// ErrEndOfStream indicates the connection is disconnected and the
	// inbound queue is empty.
	ErrEndOfStream = errors.New("end of stream")

	// ErrBufferTooSmall indicates the caller's receive buffer could not
	// hold the full payload; the payload was truncated.
	ErrBufferTooSmall = errors.New("receive buffer too small")

	// ErrInvalidChannel indicates a channel index with no configuration.
	ErrInvalidChannel = errors.New("invalid channel index")

	// ErrMessageEmpty indicates an empty payload.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrTransportRequired indicates a configuration without a transport.
	ErrTransportRequired = errors.New("transport is required")
)

// ErrorKind classifies failures reported through Handler.OnError.
type ErrorKind uint8

const (
	// ErrorKindConnectionTimeout indicates no Accept arrived within the
	// handshake window.
	ErrorKindConnectionTimeout ErrorKind = 0

	// ErrorKindMalformedAddress indicates the peer address failed to
	// parse.
	ErrorKindMalformedAddress ErrorKind = 1

	// ErrorKindCapacityExceeded indicates the peer reported too many
	// connections.
	ErrorKindCapacityExceeded ErrorKind = 2

	// ErrorKindTransportFailure indicates an unexpected substrate
	// failure during handshake or delivery.
	ErrorKindTransportFailure ErrorKind = 3
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindConnectionTimeout:
		return "CONNECTION_TIMEOUT"
	case ErrorKindMalformedAddress:
		return "MALFORMED_ADDRESS"
	case ErrorKindCapacityExceeded:
		return "CAPACITY_EXCEEDED"
	case ErrorKindTransportFailure:
		return "TRANSPORT_FAILURE"
	default:
		return "UNKNOWN"
	}
}
