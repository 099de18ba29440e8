package connection

import (
	"errors"
	"testing"
	"time"

	"github.com/seam-protocol/seam-go/pkg/transport"
)

func TestEffectiveTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"default", 10, 10 * time.Second},
		{"one second", 1, time.Second},
		{"zero clamps to floor", 0, time.Second},
		{"negative clamps to floor", -5, time.Second},
		{"large", 300, 300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{TimeoutSeconds: tt.seconds}
			if got := opts.EffectiveTimeout(); got != tt.want {
				t.Errorf("EffectiveTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChannelDelivery(t *testing.T) {
	opts := Options{
		Channels: []ChannelConfig{
			{Ordered: true, Reliable: true},
			{Ordered: false, Reliable: false},
			{Ordered: true, Reliable: false},
			{Ordered: false, Reliable: true},
		},
	}

	tests := []struct {
		channel uint8
		want    transport.Delivery
	}{
		{0, transport.DeliveryReliableOrdered},
		{1, transport.DeliveryUnreliable},
		{2, transport.DeliveryUnreliableOrdered},
		{3, transport.DeliveryReliable},
	}

	for _, tt := range tests {
		got, err := opts.ChannelDelivery(tt.channel)
		if err != nil {
			t.Fatalf("ChannelDelivery(%d) error: %v", tt.channel, err)
		}
		if got != tt.want {
			t.Errorf("ChannelDelivery(%d) = %v, want %v", tt.channel, got, tt.want)
		}
	}

	if _, err := opts.ChannelDelivery(4); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("ChannelDelivery(4) error = %v, want ErrInvalidChannel", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("123456")

	if opts.RemoteID != "123456" {
		t.Errorf("RemoteID = %q, want %q", opts.RemoteID, "123456")
	}
	if opts.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want %d", opts.TimeoutSeconds, DefaultTimeoutSeconds)
	}

	delivery, err := opts.ChannelDelivery(0)
	if err != nil {
		t.Fatalf("ChannelDelivery(0) error: %v", err)
	}
	if delivery != transport.DeliveryReliableOrdered {
		t.Errorf("channel 0 delivery = %v, want reliable ordered", delivery)
	}
}
