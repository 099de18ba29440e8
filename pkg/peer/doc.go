// Package peer defines peer identity types for SEAM.
//
// A peer is identified by a 64-bit numeric address assigned by the
// underlying delivery substrate. Addresses are opaque to this layer:
// they carry no routing information and are only used as the
// substrate's addressing key and for peer-identity matching on
// inbound events.
//
// # Fingerprints
//
// Peer addresses are long and unwieldy in service names and logs.
// Fingerprint derives a short stable hex form (first 64 bits of
// BLAKE2b-256 over the big-endian address), used for mDNS instance
// names and log events.
package peer
