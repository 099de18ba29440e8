package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seam-protocol/seam-go/pkg/peer"
)

func TestTXTRoundTrip(t *testing.T) {
	addr := peer.Address(123456789)

	txt := EncodeTXT(addr)
	assert.Equal(t, "123456789", txt[TXTKeyPeer])
	assert.Equal(t, peer.Fingerprint(addr), txt[TXTKeyFingerprint])

	got, fp, err := DecodeTXT(txt)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	assert.Equal(t, peer.Fingerprint(addr), fp)
}

func TestDecodeTXT(t *testing.T) {
	tests := []struct {
		name    string
		txt     TXTRecordMap
		wantErr bool
	}{
		{"valid", TXTRecordMap{TXTKeyPeer: "42"}, false},
		{"missing peer key", TXTRecordMap{TXTKeyFingerprint: "abcd"}, true},
		{"malformed peer", TXTRecordMap{TXTKeyPeer: "bogus"}, true},
		{"zero peer", TXTRecordMap{TXTKeyPeer: "0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeTXT(tt.txt)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeTXTInvalidFingerprintDropped(t *testing.T) {
	addr, fp, err := DecodeTXT(TXTRecordMap{
		TXTKeyPeer:        "42",
		TXTKeyFingerprint: "not-hex!",
	})
	require.NoError(t, err)
	assert.Equal(t, peer.Address(42), addr)
	assert.Empty(t, fp)
}

func TestTXTStringConversion(t *testing.T) {
	txt := TXTRecordMap{"peer": "42", "fp": "0011223344556677"}

	strs := TXTRecordsToStrings(txt)
	assert.Len(t, strs, 2)
	assert.Contains(t, strs, "peer=42")

	back := StringsToTXTRecords(strs)
	assert.Equal(t, txt, back)
}

func TestStringsToTXTRecordsSkipsMalformed(t *testing.T) {
	txt := StringsToTXTRecords([]string{"peer=42", "no-separator", "=empty-key", "fp="})

	assert.Equal(t, TXTRecordMap{"peer": "42", "fp": ""}, txt)
}

func TestInstanceName(t *testing.T) {
	addr := peer.Address(42)
	name := InstanceName(addr)

	assert.True(t, strings.HasPrefix(name, "SEAM-"))
	assert.Equal(t, "SEAM-"+peer.Fingerprint(addr), name)
	assert.LessOrEqual(t, len(name), MaxInstanceNameLen)
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses(
		[]string{"192.168.1.10", "fe80::1"},
		[]string{"192.168.1.10", "10.0.0.2"},
	)

	assert.Equal(t, []string{"192.168.1.10", "fe80::1", "10.0.0.2"}, merged)
}
