package discovery

import (
	"fmt"
	"strings"

	"github.com/seam-protocol/seam-go/pkg/peer"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates TXT records advertising a peer.
func EncodeTXT(addr peer.Address) TXTRecordMap {
	return TXTRecordMap{
		TXTKeyPeer:        addr.String(),
		TXTKeyFingerprint: peer.Fingerprint(addr),
	}
}

// DecodeTXT parses TXT records from a discovered service.
func DecodeTXT(txt TXTRecordMap) (peer.Address, string, error) {
	value, ok := txt[TXTKeyPeer]
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyPeer)
	}
	addr, err := peer.Parse(value)
	if err != nil {
		return 0, "", err
	}

	fp := txt[TXTKeyFingerprint]
	if fp != "" && !peer.ValidateFingerprint(fp) {
		fp = ""
	}
	return addr, fp, nil
}

// TXTRecordsToStrings converts a record map to "key=value" strings for
// zeroconf registration.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	out := make([]string, 0, len(txt))
	for key, value := range txt {
		out = append(out, key+"="+value)
	}
	return out
}

// StringsToTXTRecords parses "key=value" strings from a zeroconf entry.
// Malformed entries are skipped.
func StringsToTXTRecords(records []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(records))
	for _, record := range records {
		key, value, found := strings.Cut(record, "=")
		if !found || key == "" {
			continue
		}
		txt[key] = value
	}
	return txt
}
