package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seam-protocol/seam-go/pkg/connection"
	"github.com/seam-protocol/seam-go/pkg/peer"
)

const fullConfig = `
local:
  peer: "1001"
  listen: "127.0.0.1:47200"
remote:
  peer: "7001"
connection:
  timeout_seconds: 30
  allow_relay: true
  max_peers: 4
  channels:
    - ordered: true
      reliable: true
    - ordered: false
      reliable: false
discovery:
  enabled: true
log:
  file: /tmp/seam-events.cbor
`

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, peer.Address(1001), cfg.LocalPeer())
	assert.Equal(t, peer.Address(7001), cfg.RemotePeer())
	assert.Equal(t, "127.0.0.1:47200", cfg.Local.Listen)
	assert.True(t, cfg.Discovery.Enabled)
	assert.Equal(t, "/tmp/seam-events.cbor", cfg.Log.File)

	opts := cfg.ConnectionOptions()
	assert.Equal(t, "7001", opts.RemoteID)
	assert.Equal(t, 30, opts.TimeoutSeconds)
	assert.True(t, opts.AllowRelay)
	require.Len(t, opts.Channels, 2)
	assert.Equal(t, connection.ChannelConfig{Ordered: true, Reliable: true}, opts.Channels[0])
	assert.Equal(t, connection.ChannelConfig{Ordered: false, Reliable: false}, opts.Channels[1])
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
local:
  peer: "1001"
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddress, cfg.Local.Listen)
	assert.Equal(t, connection.DefaultTimeoutSeconds, cfg.Connection.TimeoutSeconds)
	assert.Equal(t, connection.DefaultMaxPeers, cfg.Connection.MaxPeers)
	require.Len(t, cfg.Connection.Channels, 1)
	assert.Equal(t, Channel{Ordered: true, Reliable: true}, cfg.Connection.Channels[0])
	assert.Equal(t, peer.Address(0), cfg.RemotePeer())
	assert.False(t, cfg.Discovery.Enabled)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing local peer", `
local:
  listen: "0.0.0.0:47100"
`},
		{"malformed local peer", `
local:
  peer: "not-a-number"
`},
		{"zero local peer", `
local:
  peer: "0"
`},
		{"malformed remote peer", `
local:
  peer: "1001"
remote:
  peer: "bogus"
`},
		{"invalid yaml", `: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seam.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, peer.Address(1001), cfg.LocalPeer())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
