package connection

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/seam-protocol/seam-go/pkg/log"
	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/transport"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

// Handler receives connection lifecycle events.
type Handler interface {
	// OnStateChange is called when the connection state changes.
	OnStateChange(oldState, newState State)

	// OnError is called when a failure is reported. Handshake-phase
	// failures arrive here instead of as return values from Connect.
	OnError(kind ErrorKind, err error)
}

// Config configures a new connection.
type Config struct {
	// Transport is the delivery substrate. Required. The caller wires
	// the connection to the substrate's events with SetHandler.
	Transport transport.Transport

	// Options are the connection tunables.
	Options Options

	// Handler receives state changes and errors (optional).
	Handler Handler

	// Logger receives structured events (optional).
	Logger log.Logger

	// Clock drives handshake and grace timers. Defaults to the wall
	// clock; tests inject a mock.
	Clock clock.Clock
}

// Connection is a SEAM connection to a single peer.
//
// The consumer side (Connect/Send/Receive/Disconnect) is a single
// logical task; the transport.Handler side runs on the substrate's
// delivery goroutine. State and the inbound queue are the only data
// shared between the two.
type Connection struct {
	opts    Options
	tr      transport.Transport
	handler Handler
	logger  log.Logger
	clk     clock.Clock
	id      string

	state  atomic.Int32
	remote atomic.Uint64

	queue *inboundQueue

	// signal is the in-flight handshake, nil outside Connect.
	signalMu sync.Mutex
	signal   *handshakeSignal

	closeOnce sync.Once
	closedCh  chan struct{}
}

// New creates a connection in the Idle state.
func New(cfg Config) (*Connection, error) {
	if cfg.Transport == nil {
		return nil, ErrTransportRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	c := &Connection{
		opts:     cfg.Options,
		tr:       cfg.Transport,
		handler:  cfg.Handler,
		logger:   cfg.Logger,
		clk:      cfg.Clock,
		id:       uuid.NewString(),
		queue:    newInboundQueue(),
		closedCh: make(chan struct{}),
	}
	c.state.Store(int32(StateIdle))
	return c, nil
}

// newAccepted creates a server-side connection that is already
// Connected. Used by Listener after answering a Connect.
func newAccepted(cfg Config, remote peer.Address) *Connection {
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	c := &Connection{
		opts:     cfg.Options,
		tr:       cfg.Transport,
		handler:  cfg.Handler,
		logger:   cfg.Logger,
		clk:      cfg.Clock,
		id:       uuid.NewString(),
		queue:    newInboundQueue(),
		closedCh: make(chan struct{}),
	}
	c.remote.Store(uint64(remote))
	c.state.Store(int32(StateConnected))
	return c
}

// ID returns the connection's unique identifier (UUID).
func (c *Connection) ID() string {
	return c.id
}

// State returns the current connection state.
func (c *Connection) State() State {
	return State(c.state.Load())
}

// Address returns a net.Addr wrapper over the peer identifier.
func (c *Connection) Address() peer.Endpoint {
	remote := c.remotePeer()
	if !remote.IsValid() {
		// Connect has not run; best-effort parse of the configured id.
		if addr, err := peer.Parse(c.opts.RemoteID); err == nil {
			remote = addr
		}
	}
	return peer.NewEndpoint(remote)
}

// Connect runs the client-side handshake.
//
// The peer address is parsed from the options; a malformed address is
// reported as MalformedAddress through the handler and leaves the
// connection Idle. Otherwise the connection transitions to Connecting,
// sends a Connect control message, and waits up to max(1, timeout)
// seconds for the peer's Accept. Handshake failures are reported
// through the handler and leave the connection Disconnected; Connect
// returns an error only when the connection is not Idle or ctx is
// cancelled.
func (c *Connection) Connect(ctx context.Context) error {
	remote, err := peer.Parse(c.opts.RemoteID)
	if err != nil {
		c.emitError(ErrorKindMalformedAddress, err)
		return nil
	}

	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		return ErrNotIdle
	}
	c.remote.Store(uint64(remote))
	c.notifyStateChange(StateIdle, StateConnecting, "connect")

	c.tr.AllowRelay(c.opts.AllowRelay)

	// A stale session from an earlier connection object would swallow
	// the new handshake.
	if c.tr.SessionActive(remote) {
		c.tr.CloseSession(remote)
	}

	sig := newHandshakeSignal()
	c.signalMu.Lock()
	c.signal = sig
	c.signalMu.Unlock()

	if err := c.tr.SendControl(remote, wire.ControlMessage{Type: wire.ControlConnect}); err != nil {
		c.emitError(ErrorKindTransportFailure, fmt.Errorf("send connect: %w", err))
		sig.resolve(signalFailed)
		c.teardown(false, "connect send failed")
		return nil
	}
	c.logControl(log.DirectionOut, wire.ControlConnect)

	timer := c.clk.Timer(c.opts.EffectiveTimeout())
	defer timer.Stop()

	select {
	case <-sig.outcome():
		// Resolved by the dispatcher; it already transitioned state and
		// reported any failure.
		return nil

	case <-timer.C:
		if !sig.resolve(signalFailed) {
			// An Accept (or failure) won the race against the timer.
			return nil
		}
		c.emitError(ErrorKindConnectionTimeout,
			fmt.Errorf("no accept from peer %s within %s", remote, c.opts.EffectiveTimeout()))
		c.teardown(false, "handshake timeout")
		return nil

	case <-ctx.Done():
		if sig.resolve(signalCancelled) {
			c.teardown(false, "connect cancelled")
		}
		return ctx.Err()
	}
}

// Send forwards application payload to the peer on the given channel.
//
// Send quietly succeeds when the connection is not Connected, and
// submission is best-effort: there is no delivery acknowledgment and
// substrate-level failures are logged, not returned. The payload is
// copied before handoff, so the caller may reuse its buffer
// immediately.
func (c *Connection) Send(payload []byte, channel uint8) error {
	if len(payload) == 0 {
		return ErrMessageEmpty
	}
	delivery, err := c.opts.ChannelDelivery(channel)
	if err != nil {
		return err
	}

	if c.State() != StateConnected {
		return nil
	}

	owned := make([]byte, len(payload))
	copy(owned, payload)

	remote := c.remotePeer()
	if err := c.tr.SendData(remote, owned, channel, delivery); err != nil {
		// Fire-and-forget: a dead peer surfaces later through control
		// traffic or the substrate's failure callback.
		c.logError("", fmt.Errorf("send data: %w", err))
		return nil
	}
	c.logData(log.DirectionOut, len(payload), channel)
	return nil
}

// Receive dequeues the oldest inbound payload into buf and returns the
// number of bytes copied and the channel it arrived on.
//
// While the queue is empty and the connection is live, Receive blocks
// until data arrives, the connection disconnects, or ctx is cancelled.
// Once the connection is Disconnected with an empty queue, Receive
// fails with ErrEndOfStream. If buf cannot hold the payload the copy
// is truncated and ErrBufferTooSmall is returned.
func (c *Connection) Receive(ctx context.Context, buf []byte) (int, uint8, error) {
	for {
		if item, ok := c.queue.tryDequeue(); ok {
			n := copy(buf, item.payload)
			if n < len(item.payload) {
				return n, item.channel, fmt.Errorf("%w: payload %d bytes, buffer %d",
					ErrBufferTooSmall, len(item.payload), len(buf))
			}
			return n, item.channel, nil
		}

		if c.State() == StateDisconnected {
			return 0, 0, ErrEndOfStream
		}

		select {
		case <-c.queue.wake():
		case <-c.closedCh:
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		}
	}
}

// Disconnect tears the connection down.
//
// A best-effort Disconnect control message is sent first, followed by
// a one-second grace period to improve its delivery odds, then the
// substrate session is closed and any pending handshake is cancelled.
// Idempotent: repeated calls are no-ops and at most one Disconnect
// control message is ever sent.
func (c *Connection) Disconnect() {
	c.teardown(true, "local disconnect")
}

// OnControlReceived dispatches a control message from the substrate.
// Messages are ignored once Disconnected and from senders other than
// the configured peer.
func (c *Connection) OnControlReceived(msg wire.ControlMessage, sender peer.Address) {
	if c.State() == StateDisconnected || sender != c.remotePeer() {
		return
	}
	c.logControl(log.DirectionIn, msg.Type)

	switch msg.Type {
	case wire.ControlAccept:
		c.signalMu.Lock()
		sig := c.signal
		c.signalMu.Unlock()
		if sig == nil || !sig.resolve(signalSuccess) {
			// No handshake in flight, or it already settled: a
			// redundant Accept is a no-op.
			return
		}
		if c.state.CompareAndSwap(int32(StateConnecting), int32(StateConnected)) {
			c.notifyStateChange(StateConnecting, StateConnected, "accept received")
		}

	case wire.ControlDisconnect:
		c.teardown(false, "peer disconnected")

	case wire.ControlTooManyPeers:
		if c.State() != StateConnecting {
			return
		}
		c.emitError(ErrorKindCapacityExceeded,
			fmt.Errorf("peer %s is at connection capacity", sender))
		c.signalMu.Lock()
		sig := c.signal
		c.signalMu.Unlock()
		// Fast-fail the pending handshake rather than waiting out the
		// timer: the refusal is definitive.
		if sig != nil && sig.resolve(signalFailed) {
			c.teardown(false, "peer at capacity")
		}

	case wire.ControlConnect:
		// Server-role signal; meaningless on an initiating connection.
		c.logUnexpectedControl(msg.Type)

	default:
		// Unrecognized control tag: non-fatal, no state change.
		c.logUnexpectedControl(msg.Type)
	}
}

// OnDataReceived queues application payload from the substrate.
// Payload is dropped unless the connection is Connected and the sender
// is the configured peer. The payload is copied: the substrate's
// buffer is only valid for the duration of this call.
func (c *Connection) OnDataReceived(payload []byte, sender peer.Address, channel uint8) {
	if c.State() != StateConnected || sender != c.remotePeer() {
		return
	}

	owned := make([]byte, len(payload))
	copy(owned, payload)
	c.queue.enqueue(inboundItem{sender: sender, channel: channel, payload: owned})
	c.logData(log.DirectionIn, len(payload), channel)
}

// OnConnectionAttemptFailed handles the substrate's delivery-failure
// report. During a handshake it fails the attempt immediately; on an
// established connection it forces a disconnect.
func (c *Connection) OnConnectionAttemptFailed(sender peer.Address) {
	if sender != c.remotePeer() {
		return
	}

	switch c.State() {
	case StateConnecting:
		c.emitError(ErrorKindTransportFailure,
			fmt.Errorf("substrate could not reach peer %s", sender))
		c.signalMu.Lock()
		sig := c.signal
		c.signalMu.Unlock()
		if sig != nil && sig.resolve(signalFailed) {
			c.teardown(false, "delivery failed")
		}
	case StateConnected:
		c.emitError(ErrorKindTransportFailure,
			fmt.Errorf("substrate lost peer %s", sender))
		c.teardown(false, "delivery failed")
	}
}

// teardown is the single exit path to Disconnected. Exactly one caller
// wins; all others are no-ops.
func (c *Connection) teardown(sendDisconnect bool, reason string) {
	c.closeOnce.Do(func() {
		oldState := c.State()
		remote := c.remotePeer()

		if sendDisconnect && remote.IsValid() &&
			(oldState == StateConnecting || oldState == StateConnected) {
			if err := c.tr.SendControl(remote, wire.ControlMessage{Type: wire.ControlDisconnect}); err == nil {
				c.logControl(log.DirectionOut, wire.ControlDisconnect)
				// Grace period: the Disconnect message is fire-and-forget,
				// so give it a moment before the session goes away.
				timer := c.clk.Timer(DisconnectGracePeriod)
				<-timer.C
			}
		}

		c.state.Store(int32(StateDisconnected))
		close(c.closedCh)

		c.signalMu.Lock()
		sig := c.signal
		c.signalMu.Unlock()
		if sig != nil {
			sig.resolve(signalCancelled)
		}

		if remote.IsValid() {
			c.tr.CloseSession(remote)
		}
		c.queue.clear()

		if oldState != StateDisconnected {
			c.notifyStateChange(oldState, StateDisconnected, reason)
		}
	})
}

func (c *Connection) remotePeer() peer.Address {
	return peer.Address(c.remote.Load())
}

func (c *Connection) emitError(kind ErrorKind, err error) {
	if c.handler != nil {
		c.handler.OnError(kind, err)
	}
	c.logError(kind.String(), err)
}

func (c *Connection) notifyStateChange(oldState, newState State, reason string) {
	if c.handler != nil {
		c.handler.OnStateChange(oldState, newState)
	}

	event := log.NewEvent(c.id, log.DirectionNone, log.CategoryState)
	event.Peer = c.peerLabel()
	event.StateChange = &log.StateChangeEvent{
		OldState: oldState.String(),
		NewState: newState.String(),
		Reason:   reason,
	}
	c.logger.Log(event)
}

func (c *Connection) logControl(direction log.Direction, typ wire.ControlMessageType) {
	event := log.NewEvent(c.id, direction, log.CategoryControl)
	event.Peer = c.peerLabel()
	event.ControlMsg = &log.ControlMsgEvent{Type: typ.String()}
	c.logger.Log(event)
}

func (c *Connection) logUnexpectedControl(typ wire.ControlMessageType) {
	event := log.NewEvent(c.id, log.DirectionIn, log.CategoryControl)
	event.Peer = c.peerLabel()
	event.ControlMsg = &log.ControlMsgEvent{Type: typ.String()}
	event.Error = &log.ErrorEventData{Message: fmt.Sprintf("unexpected control message %d ignored", typ)}
	c.logger.Log(event)
}

func (c *Connection) logData(direction log.Direction, size int, channel uint8) {
	event := log.NewEvent(c.id, direction, log.CategoryData)
	event.Peer = c.peerLabel()
	event.Data = &log.DataEvent{Size: size, Channel: channel}
	c.logger.Log(event)
}

func (c *Connection) logError(kind string, err error) {
	event := log.NewEvent(c.id, log.DirectionNone, log.CategoryError)
	event.Peer = c.peerLabel()
	event.Error = &log.ErrorEventData{Kind: kind, Message: err.Error()}
	c.logger.Log(event)
}

func (c *Connection) peerLabel() string {
	if remote := c.remotePeer(); remote.IsValid() {
		return remote.String()
	}
	return ""
}

// Compile-time interface satisfaction check.
var _ transport.Handler = (*Connection)(nil)
