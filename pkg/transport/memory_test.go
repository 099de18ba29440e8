package transport

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

// capturedEvent records one handler callback.
type capturedEvent struct {
	control       *wire.ControlMessage
	payload       []byte
	channel       uint8
	sender        peer.Address
	attemptFailed bool
}

// captureHandler records handler callbacks for assertions.
type captureHandler struct {
	mu     sync.Mutex
	events []capturedEvent
	notify chan struct{}
}

func newCaptureHandler() *captureHandler {
	return &captureHandler{notify: make(chan struct{}, 64)}
}

func (h *captureHandler) OnControlReceived(msg wire.ControlMessage, sender peer.Address) {
	h.record(capturedEvent{control: &msg, sender: sender})
}

func (h *captureHandler) OnDataReceived(payload []byte, sender peer.Address, channel uint8) {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	h.record(capturedEvent{payload: buf, channel: channel, sender: sender})
}

func (h *captureHandler) OnConnectionAttemptFailed(sender peer.Address) {
	h.record(capturedEvent{attemptFailed: true, sender: sender})
}

func (h *captureHandler) record(e capturedEvent) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *captureHandler) waitEvents(t *testing.T, n int) []capturedEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		h.mu.Lock()
		if len(h.events) >= n {
			out := make([]capturedEvent, len(h.events))
			copy(out, h.events)
			h.mu.Unlock()
			return out
		}
		h.mu.Unlock()

		select {
		case <-h.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events", n)
		}
	}
}

func TestMemoryControlDelivery(t *testing.T) {
	a := NewMemory(peer.Address(1))
	defer a.Close()
	b := NewMemory(peer.Address(2))
	defer b.Close()

	h := newCaptureHandler()
	b.SetHandler(h)

	if err := a.SendControl(peer.Address(2), wire.ControlMessage{Type: wire.ControlConnect}); err != nil {
		t.Fatalf("SendControl failed: %v", err)
	}

	events := h.waitEvents(t, 1)
	if events[0].control == nil || events[0].control.Type != wire.ControlConnect {
		t.Errorf("event = %+v, want CONNECT control", events[0])
	}
	if events[0].sender != peer.Address(1) {
		t.Errorf("sender = %v, want 1", events[0].sender)
	}
}

func TestMemoryDataDeliveryFIFO(t *testing.T) {
	a := NewMemory(peer.Address(10))
	defer a.Close()
	b := NewMemory(peer.Address(20))
	defer b.Close()

	h := newCaptureHandler()
	b.SetHandler(h)

	const n = 100
	for i := 0; i < n; i++ {
		payload := []byte(fmt.Sprintf("payload-%03d", i))
		if err := a.SendData(peer.Address(20), payload, 0, DeliveryReliableOrdered); err != nil {
			t.Fatalf("SendData %d failed: %v", i, err)
		}
	}

	events := h.waitEvents(t, n)
	for i := 0; i < n; i++ {
		want := fmt.Sprintf("payload-%03d", i)
		if string(events[i].payload) != want {
			t.Fatalf("event %d payload = %q, want %q", i, events[i].payload, want)
		}
	}
}

func TestMemorySessionTracking(t *testing.T) {
	a := NewMemory(peer.Address(100))
	defer a.Close()
	b := NewMemory(peer.Address(200))
	defer b.Close()

	if a.SessionActive(peer.Address(200)) {
		t.Error("session should not be active before any send")
	}

	if err := a.SendControl(peer.Address(200), wire.ControlMessage{Type: wire.ControlConnect}); err != nil {
		t.Fatalf("SendControl failed: %v", err)
	}

	if !a.SessionActive(peer.Address(200)) {
		t.Error("session should be active after send")
	}

	a.CloseSession(peer.Address(200))
	if a.SessionActive(peer.Address(200)) {
		t.Error("session should be inactive after CloseSession")
	}
}

func TestMemoryUnknownPeerAttemptFailed(t *testing.T) {
	a := NewMemory(peer.Address(1000))
	defer a.Close()

	h := newCaptureHandler()
	a.SetHandler(h)

	// No transport registered under 9999: failure surfaces via callback.
	if err := a.SendControl(peer.Address(9999), wire.ControlMessage{Type: wire.ControlConnect}); err != nil {
		t.Fatalf("SendControl returned error: %v", err)
	}

	events := h.waitEvents(t, 1)
	if !events[0].attemptFailed {
		t.Errorf("event = %+v, want attempt-failed", events[0])
	}
	if events[0].sender != peer.Address(9999) {
		t.Errorf("sender = %v, want 9999", events[0].sender)
	}
}

func TestMemoryClosedTransportErrors(t *testing.T) {
	a := NewMemory(peer.Address(7))
	a.Close()

	err := a.SendControl(peer.Address(8), wire.ControlMessage{Type: wire.ControlConnect})
	if !errors.Is(err, ErrTransportClosed) {
		t.Errorf("SendControl on closed transport: err = %v, want ErrTransportClosed", err)
	}

	err = a.SendData(peer.Address(8), []byte("x"), 0, DeliveryUnreliable)
	if !errors.Is(err, ErrTransportClosed) {
		t.Errorf("SendData on closed transport: err = %v, want ErrTransportClosed", err)
	}

	// Second close is a no-op
	a.Close()
}

func TestMemoryAllowRelay(t *testing.T) {
	a := NewMemory(peer.Address(77))
	defer a.Close()

	if a.RelayAllowed() {
		t.Error("relay should default to false")
	}
	a.AllowRelay(true)
	if !a.RelayAllowed() {
		t.Error("relay flag not recorded")
	}
}
