package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

// udpReadBufferSize holds one maximum-size tagged frame.
const udpReadBufferSize = wire.DataHeaderSize + wire.MaxPayloadSize

// UDP is a datagram substrate over a single UDP socket.
//
// UDP has no native separation of control and data traffic, so every
// datagram carries the one-byte frame tag from pkg/wire. Peers are
// addressed through an explicit table mapping peer addresses to socket
// addresses, fed by configuration or discovery.
type UDP struct {
	conn *net.UDPConn

	handlerMu sync.RWMutex
	handler   Handler

	mu       sync.Mutex
	peers    map[peer.Address]*net.UDPAddr
	byAddr   map[string]peer.Address
	sessions map[peer.Address]struct{}
	closed   bool

	allowRelay atomic.Bool

	// dropped counts datagrams discarded because the source was
	// unknown or the frame failed to decode.
	dropped atomic.Uint64

	done chan struct{}
}

// NewUDP creates a UDP transport listening on the given address
// (e.g. ":0" or "127.0.0.1:7500") and starts its read loop.
func NewUDP(listen string) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("resolve listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	t := &UDP{
		conn:     conn,
		peers:    make(map[peer.Address]*net.UDPAddr),
		byAddr:   make(map[string]peer.Address),
		sessions: make(map[peer.Address]struct{}),
		done:     make(chan struct{}),
	}

	go t.readLoop()
	return t, nil
}

// LocalAddr returns the socket's local address.
func (t *UDP) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// SetHandler installs the event handler.
func (t *UDP) SetHandler(h Handler) {
	t.handlerMu.Lock()
	t.handler = h
	t.handlerMu.Unlock()
}

// AddPeer maps a peer address to its socket address.
// Replaces any existing mapping for the peer.
func (t *UDP) AddPeer(remote peer.Address, endpoint *net.UDPAddr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.peers[remote]; ok {
		delete(t.byAddr, old.String())
	}
	t.peers[remote] = endpoint
	t.byAddr[endpoint.String()] = remote
}

// RemovePeer drops the peer's socket mapping and session.
func (t *UDP) RemovePeer(remote peer.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.peers[remote]; ok {
		delete(t.byAddr, old.String())
		delete(t.peers, remote)
	}
	delete(t.sessions, remote)
}

// SessionActive reports whether a delivery session with the peer exists.
func (t *UDP) SessionActive(remote peer.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[remote]
	return ok
}

// CloseSession drops the local session with the peer.
// The socket mapping is kept: a new connection to the same peer may
// follow.
func (t *UDP) CloseSession(remote peer.Address) {
	t.mu.Lock()
	delete(t.sessions, remote)
	t.mu.Unlock()
}

// SendControl sends a control message to the peer.
func (t *UDP) SendControl(remote peer.Address, msg wire.ControlMessage) error {
	frame, err := wire.EncodeControlFrame(&msg)
	if err != nil {
		return err
	}
	return t.write(remote, frame)
}

// SendData sends application payload to the peer.
//
// All delivery modes degrade to UDP's native semantics: unreliable,
// ordered only by arrival. Retransmission is out of scope for this
// layer.
func (t *UDP) SendData(remote peer.Address, payload []byte, channel uint8, _ Delivery) error {
	frame, err := wire.EncodeDataFrame(channel, payload)
	if err != nil {
		return err
	}
	return t.write(remote, frame)
}

// AllowRelay records the relay preference. Plain UDP has no relay path.
func (t *UDP) AllowRelay(allowed bool) {
	t.allowRelay.Store(allowed)
}

// RelayAllowed returns the recorded relay preference.
func (t *UDP) RelayAllowed() bool {
	return t.allowRelay.Load()
}

// Dropped returns the number of discarded inbound datagrams.
func (t *UDP) Dropped() uint64 {
	return t.dropped.Load()
}

// Close closes the socket and stops the read loop.
func (t *UDP) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.conn.Close()
	<-t.done
	return err
}

// write resolves the peer's socket address, marks the session active,
// and submits the frame.
func (t *UDP) write(remote peer.Address, frame []byte) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	endpoint, ok := t.peers[remote]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPeer, remote)
	}
	t.sessions[remote] = struct{}{}
	t.mu.Unlock()

	if _, err := t.conn.WriteToUDP(frame, endpoint); err != nil {
		return fmt.Errorf("udp write: %w", err)
	}
	return nil
}

// readLoop reads datagrams, decodes tagged frames, and dispatches them
// to the handler. Datagrams from unmapped sources and undecodable
// frames are counted and dropped.
func (t *UDP) readLoop() {
	defer close(t.done)

	buf := make([]byte, udpReadBufferSize)
	for {
		n, from, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if t.isClosed() || errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		t.mu.Lock()
		sender, known := t.byAddr[from.String()]
		if known {
			t.sessions[sender] = struct{}{}
		}
		t.mu.Unlock()

		if !known {
			t.dropped.Add(1)
			continue
		}

		frame, err := wire.DecodeFrame(buf[:n])
		if err != nil {
			t.dropped.Add(1)
			continue
		}

		t.dispatch(frame, sender)
	}
}

func (t *UDP) dispatch(frame wire.Frame, sender peer.Address) {
	t.handlerMu.RLock()
	h := t.handler
	t.handlerMu.RUnlock()

	if h == nil {
		return
	}

	switch frame.Tag {
	case wire.TagControl:
		h.OnControlReceived(*frame.Control, sender)
	case wire.TagData:
		// Payload aliases the read buffer; valid only during the call.
		h.OnDataReceived(frame.Payload, sender, frame.Channel)
	}
}

func (t *UDP) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
