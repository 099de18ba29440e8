package connection

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/seam-protocol/seam-go/pkg/log"
	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/transport"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

// DefaultMaxPeers is the accept-side connection cap used when the
// listener configuration leaves it unset.
const DefaultMaxPeers = 8

// ListenerConfig configures a listener.
type ListenerConfig struct {
	// Transport is the delivery substrate. Required. The caller wires
	// the listener to the substrate's events with SetHandler.
	Transport transport.Transport

	// MaxPeers caps concurrent accepted connections. Peers connecting
	// beyond the cap are refused with a TooManyPeers message.
	// Defaults to DefaultMaxPeers.
	MaxPeers int

	// Channels configures delivery semantics for accepted connections.
	Channels []ChannelConfig

	// OnAccept is called for each newly accepted connection, on the
	// substrate's delivery goroutine (optional).
	OnAccept func(conn *Connection)

	// ConnectionHandler builds the lifecycle handler for an accepted
	// connection (optional). It is called before the connection can
	// observe any event.
	ConnectionHandler func(remote peer.Address) Handler

	// Logger receives structured events (optional).
	Logger log.Logger

	// Clock drives timers on accepted connections. Defaults to the
	// wall clock.
	Clock clock.Clock
}

// Listener accepts inbound connections on a delivery substrate.
//
// It owns the handshake answer side: a Connect from an unknown peer is
// answered with Accept (or TooManyPeers at capacity) and materialized
// as an already-Connected Connection. All subsequent events from that
// peer are routed to its connection.
type Listener struct {
	cfg ListenerConfig
	id  string

	mu     sync.Mutex
	conns  map[peer.Address]*Connection
	closed bool
}

// NewListener creates a listener.
func NewListener(cfg ListenerConfig) (*Listener, error) {
	if cfg.Transport == nil {
		return nil, ErrTransportRequired
	}
	if cfg.MaxPeers <= 0 {
		cfg.MaxPeers = DefaultMaxPeers
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = []ChannelConfig{{Ordered: true, Reliable: true}}
	}

	return &Listener{
		cfg:   cfg,
		id:    uuid.NewString(),
		conns: make(map[peer.Address]*Connection),
	}, nil
}

// Connections returns the currently accepted, live connections.
func (l *Listener) Connections() []*Connection {
	l.mu.Lock()
	defer l.mu.Unlock()

	conns := make([]*Connection, 0, len(l.conns))
	for _, conn := range l.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Close tears down all accepted connections and stops accepting.
// A best-effort Disconnect is sent to each peer, without the usual
// per-connection grace period.
func (l *Listener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	conns := make([]*Connection, 0, len(l.conns))
	for _, conn := range l.conns {
		conns = append(conns, conn)
	}
	l.conns = make(map[peer.Address]*Connection)
	l.mu.Unlock()

	for _, conn := range conns {
		remote := conn.remotePeer()
		if conn.State() == StateConnected {
			_ = l.cfg.Transport.SendControl(remote, wire.ControlMessage{Type: wire.ControlDisconnect})
		}
		conn.teardown(false, "listener closed")
	}
}

// OnControlReceived dispatches a control message from the substrate.
// Connect messages drive the accept path; everything else is routed to
// the sender's connection.
func (l *Listener) OnControlReceived(msg wire.ControlMessage, sender peer.Address) {
	if msg.Type != wire.ControlConnect {
		if conn := l.lookup(sender); conn != nil {
			conn.OnControlReceived(msg, sender)
			l.pruneIfDead(sender, conn)
		}
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	if existing, ok := l.conns[sender]; ok && existing.State() == StateConnected {
		// Retransmitted Connect: the peer never saw our Accept.
		l.mu.Unlock()
		_ = l.cfg.Transport.SendControl(sender, wire.ControlMessage{Type: wire.ControlAccept})
		return
	}
	// A dead entry does not count against the cap.
	for addr, conn := range l.conns {
		if conn.State() == StateDisconnected {
			delete(l.conns, addr)
		}
	}

	if len(l.conns) >= l.cfg.MaxPeers {
		l.mu.Unlock()
		_ = l.cfg.Transport.SendControl(sender, wire.ControlMessage{Type: wire.ControlTooManyPeers})
		l.logRefusal(sender)
		return
	}

	var handler Handler
	if l.cfg.ConnectionHandler != nil {
		handler = l.cfg.ConnectionHandler(sender)
	}
	conn := newAccepted(Config{
		Transport: l.cfg.Transport,
		Options: Options{
			RemoteID: sender.String(),
			Channels: l.cfg.Channels,
		},
		Handler: handler,
		Logger:  l.cfg.Logger,
		Clock:   l.cfg.Clock,
	}, sender)
	l.conns[sender] = conn
	l.mu.Unlock()

	if err := l.cfg.Transport.SendControl(sender, wire.ControlMessage{Type: wire.ControlAccept}); err != nil {
		conn.teardown(false, "accept send failed")
		l.pruneIfDead(sender, conn)
		return
	}
	l.logAccept(sender, conn.ID())

	if l.cfg.OnAccept != nil {
		l.cfg.OnAccept(conn)
	}
}

// OnDataReceived routes application payload to the sender's connection.
func (l *Listener) OnDataReceived(payload []byte, sender peer.Address, channel uint8) {
	if conn := l.lookup(sender); conn != nil {
		conn.OnDataReceived(payload, sender, channel)
	}
}

// OnConnectionAttemptFailed routes a delivery failure to the sender's
// connection.
func (l *Listener) OnConnectionAttemptFailed(sender peer.Address) {
	if conn := l.lookup(sender); conn != nil {
		conn.OnConnectionAttemptFailed(sender)
		l.pruneIfDead(sender, conn)
	}
}

func (l *Listener) lookup(sender peer.Address) *Connection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conns[sender]
}

func (l *Listener) pruneIfDead(sender peer.Address, conn *Connection) {
	if conn.State() != StateDisconnected {
		return
	}
	l.mu.Lock()
	if l.conns[sender] == conn {
		delete(l.conns, sender)
	}
	l.mu.Unlock()
}

func (l *Listener) logAccept(sender peer.Address, connID string) {
	event := log.NewEvent(connID, log.DirectionIn, log.CategoryControl)
	event.Peer = sender.String()
	event.ControlMsg = &log.ControlMsgEvent{Type: wire.ControlConnect.String()}
	l.cfg.Logger.Log(event)
}

func (l *Listener) logRefusal(sender peer.Address) {
	event := log.NewEvent(l.id, log.DirectionOut, log.CategoryControl)
	event.Peer = sender.String()
	event.ControlMsg = &log.ControlMsgEvent{Type: wire.ControlTooManyPeers.String()}
	event.Error = &log.ErrorEventData{
		Kind:    ErrorKindCapacityExceeded.String(),
		Message: fmt.Sprintf("refusing peer %s: %d connections active", sender, l.cfg.MaxPeers),
	}
	l.cfg.Logger.Log(event)
}

// Compile-time interface satisfaction check.
var _ transport.Handler = (*Listener)(nil)
