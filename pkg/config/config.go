package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seam-protocol/seam-go/pkg/connection"
	"github.com/seam-protocol/seam-go/pkg/peer"
)

// Configuration errors.
var (
	// ErrNoLocalPeer indicates a configuration without a local peer
	// address.
	ErrNoLocalPeer = errors.New("local peer address required")

	// ErrNoListenAddress indicates a configuration without a UDP
	// listen address.
	ErrNoListenAddress = errors.New("listen address required")
)

// DefaultListenAddress is used when the configuration leaves the
// listen address unset.
const DefaultListenAddress = "0.0.0.0:47100"

// Local describes the local node.
type Local struct {
	// Peer is the local peer address in decimal form.
	Peer string `yaml:"peer"`

	// Listen is the UDP listen address (host:port).
	Listen string `yaml:"listen"`
}

// Remote describes the peer to connect to. Optional: a node that only
// listens needs no remote.
type Remote struct {
	// Peer is the remote peer address in decimal form.
	Peer string `yaml:"peer"`
}

// Channel configures delivery semantics for one channel index.
type Channel struct {
	Ordered  bool `yaml:"ordered"`
	Reliable bool `yaml:"reliable"`
}

// Conn holds the connection tunables.
type Conn struct {
	// TimeoutSeconds is the handshake timeout. Values below 1 are
	// clamped up to 1 second at connect time.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// AllowRelay permits relayed delivery routes.
	AllowRelay bool `yaml:"allow_relay"`

	// MaxPeers caps connections accepted from remote initiators.
	MaxPeers int `yaml:"max_peers"`

	// Channels configures delivery semantics per channel index.
	Channels []Channel `yaml:"channels"`
}

// Discovery configures mDNS peer discovery.
type Discovery struct {
	// Enabled turns on mDNS advertise and browse.
	Enabled bool `yaml:"enabled"`
}

// Log configures structured event logging.
type Log struct {
	// File is the CBOR event log path. Empty disables file logging.
	File string `yaml:"file"`
}

// Config is a SEAM node configuration.
type Config struct {
	Local      Local     `yaml:"local"`
	Remote     Remote    `yaml:"remote"`
	Connection Conn      `yaml:"connection"`
	Discovery  Discovery `yaml:"discovery"`
	Log        Log       `yaml:"log"`
}

// New builds a configuration programmatically, with defaults applied.
// Validate before use.
func New(localPeer string) *Config {
	cfg := &Config{Local: Local{Peer: localPeer}}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Local.Listen == "" {
		c.Local.Listen = DefaultListenAddress
	}
	if c.Connection.TimeoutSeconds == 0 {
		c.Connection.TimeoutSeconds = connection.DefaultTimeoutSeconds
	}
	if c.Connection.MaxPeers == 0 {
		c.Connection.MaxPeers = connection.DefaultMaxPeers
	}
	if len(c.Connection.Channels) == 0 {
		c.Connection.Channels = []Channel{{Ordered: true, Reliable: true}}
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Local.Peer == "" {
		return ErrNoLocalPeer
	}
	if _, err := peer.Parse(c.Local.Peer); err != nil {
		return fmt.Errorf("local peer: %w", err)
	}
	if c.Local.Listen == "" {
		return ErrNoListenAddress
	}
	if c.Remote.Peer != "" {
		if _, err := peer.Parse(c.Remote.Peer); err != nil {
			return fmt.Errorf("remote peer: %w", err)
		}
	}
	return nil
}

// LocalPeer returns the parsed local peer address.
func (c *Config) LocalPeer() peer.Address {
	addr, _ := peer.Parse(c.Local.Peer)
	return addr
}

// RemotePeer returns the parsed remote peer address, or the zero
// address when no remote is configured.
func (c *Config) RemotePeer() peer.Address {
	if c.Remote.Peer == "" {
		return 0
	}
	addr, _ := peer.Parse(c.Remote.Peer)
	return addr
}

// ConnectionOptions maps the configuration to connection options.
func (c *Config) ConnectionOptions() connection.Options {
	channels := make([]connection.ChannelConfig, 0, len(c.Connection.Channels))
	for _, ch := range c.Connection.Channels {
		channels = append(channels, connection.ChannelConfig{
			Ordered:  ch.Ordered,
			Reliable: ch.Reliable,
		})
	}
	return connection.Options{
		RemoteID:       c.Remote.Peer,
		TimeoutSeconds: c.Connection.TimeoutSeconds,
		AllowRelay:     c.Connection.AllowRelay,
		Channels:       channels,
	}
}

// ChannelConfigs maps the configured channels for listener use.
func (c *Config) ChannelConfigs() []connection.ChannelConfig {
	return c.ConnectionOptions().Channels
}
