package peer

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// FingerprintLength is the length of a fingerprint string (16 hex chars).
const FingerprintLength = 16

// Fingerprint returns a short stable identifier for a peer address.
//
// The fingerprint is the first 64 bits (16 hex chars) of
// BLAKE2b-256(big-endian address). It is used in mDNS instance names
// and log events where the full decimal address is too unwieldy.
func Fingerprint(addr Address) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(addr))
	hash := blake2b.Sum256(buf[:])
	return hex.EncodeToString(hash[:8])
}

// ValidateFingerprint checks if a string is a valid fingerprint
// (16 lowercase hex chars).
func ValidateFingerprint(fp string) bool {
	if len(fp) != FingerprintLength {
		return false
	}
	for _, c := range fp {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
