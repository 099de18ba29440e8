package transport

import (
	"sync"
	"sync/atomic"

	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

// memoryInboxSize bounds the per-transport delivery queue.
const memoryInboxSize = 1024

// Global registry of in-process transports, keyed by peer address.
var (
	registryMu sync.Mutex
	registry   = map[peer.Address]*Memory{}
)

// deliverable is one queued inbound event.
type deliverable struct {
	sender        peer.Address
	control       *wire.ControlMessage
	payload       []byte
	channel       uint8
	attemptFailed bool
}

// Memory is an in-process substrate for tests and examples.
// Two Memory transports in the same process reach each other through a
// global registry; delivery is reliable and ordered regardless of the
// requested Delivery mode.
type Memory struct {
	local peer.Address

	inbox chan deliverable
	quit  chan struct{}
	done  chan struct{}

	handlerMu sync.RWMutex
	handler   Handler

	mu       sync.Mutex
	sessions map[peer.Address]struct{}
	closed   bool

	allowRelay atomic.Bool
}

// NewMemory creates a Memory transport registered under the given
// address and starts its delivery goroutine.
func NewMemory(local peer.Address) *Memory {
	t := &Memory{
		local:    local,
		inbox:    make(chan deliverable, memoryInboxSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		sessions: make(map[peer.Address]struct{}),
	}

	registryMu.Lock()
	registry[local] = t
	registryMu.Unlock()

	go t.deliverLoop()
	return t
}

// Local returns the transport's own peer address.
func (t *Memory) Local() peer.Address {
	return t.local
}

// SetHandler installs the event handler.
func (t *Memory) SetHandler(h Handler) {
	t.handlerMu.Lock()
	t.handler = h
	t.handlerMu.Unlock()
}

// SessionActive reports whether a delivery session with the peer exists.
func (t *Memory) SessionActive(remote peer.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[remote]
	return ok
}

// CloseSession drops the local session with the peer.
func (t *Memory) CloseSession(remote peer.Address) {
	t.mu.Lock()
	delete(t.sessions, remote)
	t.mu.Unlock()
}

// SendControl sends a control message to the peer.
func (t *Memory) SendControl(remote peer.Address, msg wire.ControlMessage) error {
	return t.send(remote, deliverable{sender: t.local, control: &msg})
}

// SendData sends application payload to the peer.
// Delivery mode is accepted but ignored: in-process delivery is always
// reliable and ordered.
func (t *Memory) SendData(remote peer.Address, payload []byte, channel uint8, _ Delivery) error {
	return t.send(remote, deliverable{sender: t.local, payload: payload, channel: channel})
}

// AllowRelay records the relay preference. Memory has no relay path.
func (t *Memory) AllowRelay(allowed bool) {
	t.allowRelay.Store(allowed)
}

// RelayAllowed returns the recorded relay preference.
func (t *Memory) RelayAllowed() bool {
	return t.allowRelay.Load()
}

// Close unregisters the transport and stops its delivery goroutine.
func (t *Memory) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	registryMu.Lock()
	delete(registry, t.local)
	registryMu.Unlock()

	close(t.quit)
	<-t.done
}

// send opens a session with the target and queues the event on its
// inbox. An unreachable target surfaces asynchronously through
// OnConnectionAttemptFailed, mirroring how a real substrate reports
// delivery failure out of band.
func (t *Memory) send(remote peer.Address, d deliverable) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	t.sessions[remote] = struct{}{}
	t.mu.Unlock()

	registryMu.Lock()
	target, ok := registry[remote]
	registryMu.Unlock()

	if !ok {
		t.enqueue(deliverable{sender: remote, attemptFailed: true})
		return nil
	}

	target.enqueueFrom(t.local, d)
	return nil
}

// enqueueFrom queues an inbound event and marks the sender's session
// active on the receiving side.
func (t *Memory) enqueueFrom(sender peer.Address, d deliverable) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.sessions[sender] = struct{}{}
	t.mu.Unlock()

	t.enqueue(d)
}

func (t *Memory) enqueue(d deliverable) {
	select {
	case t.inbox <- d:
	case <-t.quit:
	}
}

// deliverLoop dispatches queued events to the handler in FIFO order.
func (t *Memory) deliverLoop() {
	defer close(t.done)

	for {
		select {
		case <-t.quit:
			return
		case d := <-t.inbox:
			t.dispatch(d)
		}
	}
}

func (t *Memory) dispatch(d deliverable) {
	t.handlerMu.RLock()
	h := t.handler
	t.handlerMu.RUnlock()

	if h == nil {
		return
	}

	switch {
	case d.attemptFailed:
		h.OnConnectionAttemptFailed(d.sender)
	case d.control != nil:
		h.OnControlReceived(*d.control, d.sender)
	default:
		h.OnDataReceived(d.payload, d.sender, d.channel)
	}
}
