package discovery

import (
	"errors"
	"fmt"
	"time"

	"github.com/seam-protocol/seam-go/pkg/peer"
)

const (
	// ServiceType is the mDNS service type for SEAM peers.
	ServiceType = "_seam._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	// TXTKeyPeer carries the peer address in decimal form.
	TXTKeyPeer = "peer"

	// TXTKeyFingerprint carries the peer fingerprint.
	TXTKeyFingerprint = "fp"
)

// Discovery errors.
var (
	// ErrMissingRequired indicates a TXT record set without a required
	// key.
	ErrMissingRequired = errors.New("missing required TXT record")

	// ErrNotFound indicates the browse ended without finding the peer.
	ErrNotFound = errors.New("peer not found")
)

// Service is a discovered SEAM peer.
type Service struct {
	// InstanceName is the mDNS instance name (SEAM-<fingerprint>).
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the UDP transport port.
	Port uint16

	// Addresses are the resolved IP addresses, as strings.
	Addresses []string

	// Peer is the advertised peer address.
	Peer peer.Address

	// Fingerprint is the advertised peer fingerprint, if present.
	Fingerprint string
}

// InstanceName builds the mDNS instance name for a peer.
func InstanceName(addr peer.Address) string {
	name := fmt.Sprintf("SEAM-%s", peer.Fingerprint(addr))
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}
