package peer

import (
	"errors"
	"fmt"
	"strconv"
)

// Address errors.
var (
	// ErrEmptyAddress indicates an empty address string.
	ErrEmptyAddress = errors.New("empty peer address")

	// ErrMalformedAddress indicates the address failed to parse.
	ErrMalformedAddress = errors.New("malformed peer address")
)

// Address identifies a remote peer on the delivery substrate.
// The zero value is not a valid peer.
type Address uint64

// Parse parses a decimal peer address string.
func Parse(s string) (Address, error) {
	if s == "" {
		return 0, ErrEmptyAddress
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAddress, s)
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: zero address", ErrMalformedAddress)
	}
	return Address(id), nil
}

// String returns the decimal form of the address.
func (a Address) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// IsValid reports whether the address is non-zero.
func (a Address) IsValid() bool {
	return a != 0
}

// Network is the net.Addr network name for SEAM endpoints.
const Network = "seam"

// Endpoint is a net.Addr wrapper over a peer address.
// It carries no port or routing semantics; it exists so callers that
// speak net.Addr can display the remote identity.
type Endpoint struct {
	addr Address
}

// NewEndpoint creates an endpoint for the given peer address.
func NewEndpoint(addr Address) Endpoint {
	return Endpoint{addr: addr}
}

// Network returns the SEAM network name.
func (e Endpoint) Network() string {
	return Network
}

// String returns the peer address in decimal form.
func (e Endpoint) String() string {
	return e.addr.String()
}

// Peer returns the wrapped peer address.
func (e Endpoint) Peer() Address {
	return e.addr
}
