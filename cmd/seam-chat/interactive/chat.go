// Package interactive provides the readline command loop for
// seam-chat.
package interactive

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/seam-protocol/seam-go/pkg/config"
	"github.com/seam-protocol/seam-go/pkg/connection"
	"github.com/seam-protocol/seam-go/pkg/discovery"
	"github.com/seam-protocol/seam-go/pkg/log"
	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/transport"
	"github.com/seam-protocol/seam-go/pkg/wire"
)

const receiveBufferSize = wire.MaxPayloadSize

// Chat handles interactive mode for seam-chat. It also acts as the
// transport event mux: inbound Connect messages go to the listener,
// everything else is routed to the outbound client connection when the
// sender matches it.
type Chat struct {
	cfg    *config.Config
	tr     *transport.UDP
	logger log.Logger
	rl     *readline.Instance

	mu       sync.Mutex
	client   *connection.Connection
	listener *connection.Listener
	peers    map[peer.Address]*net.UDPAddr
}

// New creates the interactive chat handler. The caller installs it on
// the transport with SetHandler after wiring the logger.
func New(cfg *config.Config, tr *transport.UDP) (*Chat, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "seam> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Chat{
		cfg:    cfg,
		tr:     tr,
		logger: log.NoopLogger{},
		rl:     rl,
		peers:  make(map[peer.Address]*net.UDPAddr),
	}

	listener, err := connection.NewListener(connection.ListenerConfig{
		Transport: tr,
		MaxPeers:  cfg.Connection.MaxPeers,
		Channels:  cfg.ChannelConfigs(),
		OnAccept:  c.onAccept,
		ConnectionHandler: func(peer.Address) connection.Handler {
			return &printHandler{out: rl.Stdout()}
		},
	})
	if err != nil {
		return nil, err
	}
	c.listener = listener
	return c, nil
}

// SetLogger installs the event logger. Call before Run.
func (c *Chat) SetLogger(logger log.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// Stdout returns a writer that coordinates with the readline input.
// Use this for log output to avoid interfering with the command
// prompt.
func (c *Chat) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Close shuts the listener, the client connection and the prompt.
func (c *Chat) Close() {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client != nil {
		client.Disconnect()
	}
	c.listener.Close()
	c.rl.Close()
}

// Run starts the interactive command loop.
func (c *Chat) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "connect", "c":
			c.cmdConnect(ctx, args)

		case "send", "s":
			c.cmdSend(args)

		case "disconnect", "d":
			c.cmdDisconnect()

		case "peers":
			c.cmdPeers()

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Chat) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
SEAM Chat Commands:
  connect [peer]          - Connect to a peer (default: configured remote)
  send <text>             - Send text on channel 0
  send @<channel> <text>  - Send text on a specific channel
  disconnect              - Disconnect the outbound connection
  peers                   - List discovered peers
  status                  - Show connection status
  help                    - Show this help
  quit                    - Exit`)
}

// PeerDiscovered records an mDNS-discovered peer.
func (c *Chat) PeerDiscovered(svc *discovery.Service, endpoint *net.UDPAddr) {
	c.mu.Lock()
	c.peers[svc.Peer] = endpoint
	c.mu.Unlock()

	fmt.Fprintf(c.rl.Stdout(), "Discovered peer %s at %s\n", svc.Peer, endpoint)
}

func (c *Chat) cmdConnect(ctx context.Context, args []string) {
	remoteID := c.cfg.Remote.Peer
	if len(args) > 0 {
		remoteID = args[0]
	}
	if remoteID == "" {
		fmt.Fprintln(c.rl.Stdout(), "No remote peer configured; use: connect <peer>")
		return
	}

	c.mu.Lock()
	if c.client != nil && c.client.State() != connection.StateDisconnected {
		c.mu.Unlock()
		fmt.Fprintln(c.rl.Stdout(), "Already connecting or connected; disconnect first")
		return
	}

	opts := c.cfg.ConnectionOptions()
	opts.RemoteID = remoteID
	conn, err := connection.New(connection.Config{
		Transport: c.tr,
		Options:   opts,
		Handler:   &printHandler{out: c.rl.Stdout()},
		Logger:    c.logger,
	})
	if err != nil {
		c.mu.Unlock()
		fmt.Fprintf(c.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}
	c.client = conn
	c.mu.Unlock()

	fmt.Fprintf(c.rl.Stdout(), "Connecting to %s...\n", remoteID)
	go func() {
		if err := conn.Connect(ctx); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Connect failed: %v\n", err)
			return
		}
		if conn.State() == connection.StateConnected {
			go c.pump(ctx, conn)
		}
	}()
}

func (c *Chat) cmdSend(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: send [@channel] <text>")
		return
	}

	channel := uint8(0)
	if strings.HasPrefix(args[0], "@") {
		parsed, err := strconv.ParseUint(strings.TrimPrefix(args[0], "@"), 10, 8)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Bad channel: %s\n", args[0])
			return
		}
		channel = uint8(parsed)
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Nothing to send")
		return
	}

	c.mu.Lock()
	conn := c.client
	c.mu.Unlock()
	if conn == nil || conn.State() != connection.StateConnected {
		fmt.Fprintln(c.rl.Stdout(), "Not connected")
		return
	}

	text := strings.Join(args, " ")
	if err := conn.Send([]byte(text), channel); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Send failed: %v\n", err)
	}
}

func (c *Chat) cmdDisconnect() {
	c.mu.Lock()
	conn := c.client
	c.client = nil
	c.mu.Unlock()

	if conn == nil {
		fmt.Fprintln(c.rl.Stdout(), "Not connected")
		return
	}
	conn.Disconnect()
	fmt.Fprintln(c.rl.Stdout(), "Disconnected")
}

func (c *Chat) cmdPeers() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.peers) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No peers discovered")
		return
	}
	for addr, endpoint := range c.peers {
		fmt.Fprintf(c.rl.Stdout(), "  %s (%s) at %s\n", addr, peer.Fingerprint(addr), endpoint)
	}
}

func (c *Chat) cmdStatus() {
	out := c.rl.Stdout()
	fmt.Fprintf(out, "Local peer:  %s (%s)\n", c.cfg.Local.Peer, peer.Fingerprint(c.cfg.LocalPeer()))
	fmt.Fprintf(out, "Listening:   %s\n", c.tr.LocalAddr())
	fmt.Fprintf(out, "Dropped:     %d frames from unknown peers\n", c.tr.Dropped())

	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client != nil {
		fmt.Fprintf(out, "Outbound:    %s -> %s\n", client.State(), client.Address())
	} else {
		fmt.Fprintln(out, "Outbound:    none")
	}

	accepted := c.listener.Connections()
	fmt.Fprintf(out, "Inbound:     %d connection(s)\n", len(accepted))
	for _, conn := range accepted {
		fmt.Fprintf(out, "  %s from %s\n", conn.State(), conn.Address())
	}
}

// onAccept starts a receive pump for an inbound connection.
func (c *Chat) onAccept(conn *connection.Connection) {
	fmt.Fprintf(c.rl.Stdout(), "Accepted connection from %s\n", conn.Address())
	go c.pump(context.Background(), conn)
}

// pump prints incoming messages until the connection ends.
func (c *Chat) pump(ctx context.Context, conn *connection.Connection) {
	buf := make([]byte, receiveBufferSize)
	remote := conn.Address()
	for {
		n, channel, err := conn.Receive(ctx, buf)
		if err != nil {
			if err == connection.ErrEndOfStream {
				fmt.Fprintf(c.rl.Stdout(), "Connection to %s closed\n", remote)
			}
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "[%s @%d] %s\n", remote, channel, buf[:n])
	}
}

// OnControlReceived routes control messages: Connect to the listener,
// the rest to whichever side owns the sender.
func (c *Chat) OnControlReceived(msg wire.ControlMessage, sender peer.Address) {
	if msg.Type != wire.ControlConnect {
		if conn := c.clientFor(sender); conn != nil {
			conn.OnControlReceived(msg, sender)
			return
		}
	}
	c.listener.OnControlReceived(msg, sender)
}

// OnDataReceived routes payload to the owning connection.
func (c *Chat) OnDataReceived(payload []byte, sender peer.Address, channel uint8) {
	if conn := c.clientFor(sender); conn != nil {
		conn.OnDataReceived(payload, sender, channel)
		return
	}
	c.listener.OnDataReceived(payload, sender, channel)
}

// OnConnectionAttemptFailed routes the failure to the owning
// connection.
func (c *Chat) OnConnectionAttemptFailed(sender peer.Address) {
	if conn := c.clientFor(sender); conn != nil {
		conn.OnConnectionAttemptFailed(sender)
		return
	}
	c.listener.OnConnectionAttemptFailed(sender)
}

// clientFor returns the outbound connection when it owns the sender.
func (c *Chat) clientFor(sender peer.Address) *connection.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.client.Address().Peer() == sender &&
		c.client.State() != connection.StateDisconnected {
		return c.client
	}
	return nil
}

// printHandler prints lifecycle events to the readline-safe writer.
type printHandler struct {
	out io.Writer
}

func (h *printHandler) OnStateChange(oldState, newState connection.State) {
	fmt.Fprintf(h.out, "Connection %s -> %s\n", oldState, newState)
}

func (h *printHandler) OnError(kind connection.ErrorKind, err error) {
	fmt.Fprintf(h.out, "Error [%s]: %v\n", kind, err)
}

var _ transport.Handler = (*Chat)(nil)
