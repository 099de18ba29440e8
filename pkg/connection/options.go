package connection

import (
	"time"

	"github.com/seam-protocol/seam-go/pkg/transport"
)

// Connection timing constants.
const (
	// MinTimeout is the floor for the handshake timeout.
	MinTimeout = 1 * time.Second

	// DefaultTimeoutSeconds is the handshake timeout used when the
	// options leave it unset.
	DefaultTimeoutSeconds = 10

	// DisconnectGracePeriod is how long Disconnect waits after sending
	// the Disconnect control message before tearing down, to improve
	// the odds the best-effort message reaches the peer.
	DisconnectGracePeriod = 1 * time.Second
)

// ChannelConfig selects delivery semantics for one channel index.
type ChannelConfig struct {
	// Ordered preserves send order on the channel.
	Ordered bool

	// Reliable retransmits until the substrate acknowledges delivery.
	Reliable bool
}

// Delivery maps the channel configuration to a substrate delivery mode.
func (c ChannelConfig) Delivery() transport.Delivery {
	switch {
	case c.Reliable && c.Ordered:
		return transport.DeliveryReliableOrdered
	case c.Reliable:
		return transport.DeliveryReliable
	case c.Ordered:
		return transport.DeliveryUnreliableOrdered
	default:
		return transport.DeliveryUnreliable
	}
}

// Options configures a connection. Options are read-only after the
// connection is created.
type Options struct {
	// RemoteID is the peer address in decimal form. It is parsed when
	// Connect runs; a malformed value surfaces as a MalformedAddress
	// error through the handler.
	RemoteID string

	// TimeoutSeconds is the handshake timeout. Values below 1 are
	// clamped up to 1 second.
	TimeoutSeconds int

	// AllowRelay permits the substrate to fall back to relayed routes.
	AllowRelay bool

	// Channels configures delivery semantics per channel index.
	Channels []ChannelConfig
}

// DefaultOptions returns options with a 10-second handshake timeout
// and a single reliable, ordered channel.
func DefaultOptions(remoteID string) Options {
	return Options{
		RemoteID:       remoteID,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Channels:       []ChannelConfig{{Ordered: true, Reliable: true}},
	}
}

// EffectiveTimeout returns the handshake timeout with the one-second
// floor applied.
func (o Options) EffectiveTimeout() time.Duration {
	seconds := o.TimeoutSeconds
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

// ChannelDelivery returns the delivery mode for a channel index, or
// ErrInvalidChannel if the index has no configuration.
func (o Options) ChannelDelivery(channel uint8) (transport.Delivery, error) {
	if int(channel) >= len(o.Channels) {
		return 0, ErrInvalidChannel
	}
	return o.Channels[channel].Delivery(), nil
}
