package seam_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seam-protocol/seam-go/pkg/connection"
	"github.com/seam-protocol/seam-go/pkg/peer"
	"github.com/seam-protocol/seam-go/pkg/transport"
)

// testNode bundles one side of an end-to-end pair.
type testNode struct {
	addr peer.Address
	tr   *transport.Memory
}

func newTestNode(t *testing.T, addr peer.Address) *testNode {
	t.Helper()
	tr := transport.NewMemory(addr)
	t.Cleanup(tr.Close)
	return &testNode{addr: addr, tr: tr}
}

// startListener wires a listener as the node's transport handler.
func (n *testNode) startListener(t *testing.T, maxPeers int, onAccept func(*connection.Connection)) *connection.Listener {
	t.Helper()
	l, err := connection.NewListener(connection.ListenerConfig{
		Transport: n.tr,
		MaxPeers:  maxPeers,
		OnAccept:  onAccept,
	})
	require.NoError(t, err)
	n.tr.SetHandler(l)
	t.Cleanup(l.Close)
	return l
}

// dial wires a client connection as the node's transport handler and
// runs the handshake.
func (n *testNode) dial(t *testing.T, remote peer.Address) *connection.Connection {
	t.Helper()
	conn, err := connection.New(connection.Config{
		Transport: n.tr,
		Options:   connection.DefaultOptions(remote.String()),
	})
	require.NoError(t, err)
	n.tr.SetHandler(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Connect(ctx))
	require.Equal(t, connection.StateConnected, conn.State())
	return conn
}

func TestE2E_HandshakeAndData(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	server := newTestNode(t, 9001)
	client := newTestNode(t, 9002)

	acceptedCh := make(chan *connection.Connection, 1)
	server.startListener(t, 4, func(conn *connection.Connection) {
		acceptedCh <- conn
	})

	conn := client.dial(t, server.addr)
	defer conn.Disconnect()

	var accepted *connection.Connection
	select {
	case accepted = <-acceptedCh:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not accept")
	}
	assert.Equal(t, client.addr, accepted.Address().Peer())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Client to server.
	require.NoError(t, conn.Send([]byte("hello from client"), 0))
	buf := make([]byte, 256)
	n, channel, err := accepted.Receive(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello from client", string(buf[:n]))
	assert.Equal(t, uint8(0), channel)

	// Server to client.
	require.NoError(t, accepted.Send([]byte("hello from server"), 0))
	n, _, err = conn.Receive(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello from server", string(buf[:n]))
}

func TestE2E_FIFOOrdering(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	server := newTestNode(t, 9011)
	client := newTestNode(t, 9012)

	acceptedCh := make(chan *connection.Connection, 1)
	server.startListener(t, 4, func(conn *connection.Connection) {
		acceptedCh <- conn
	})

	conn := client.dial(t, server.addr)
	defer conn.Disconnect()
	accepted := <-acceptedCh

	const count = 200
	for i := 0; i < count; i++ {
		require.NoError(t, conn.Send([]byte(fmt.Sprintf("msg-%03d", i)), 0))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	buf := make([]byte, 64)
	for i := 0; i < count; i++ {
		n, _, err := accepted.Receive(ctx, buf)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("msg-%03d", i), string(buf[:n]))
	}
}

func TestE2E_DisconnectPropagates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	server := newTestNode(t, 9021)
	client := newTestNode(t, 9022)

	acceptedCh := make(chan *connection.Connection, 1)
	server.startListener(t, 4, func(conn *connection.Connection) {
		acceptedCh <- conn
	})

	conn := client.dial(t, server.addr)
	accepted := <-acceptedCh

	conn.Disconnect()

	deadline := time.Now().Add(5 * time.Second)
	for accepted.State() != connection.StateDisconnected && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, connection.StateDisconnected, accepted.State())

	// The departed peer's connection drains to end of stream.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := accepted.Receive(ctx, make([]byte, 16))
	assert.ErrorIs(t, err, connection.ErrEndOfStream)
}

type capacityRecorder struct {
	ch chan connection.ErrorKind
}

func (r *capacityRecorder) OnStateChange(oldState, newState connection.State) {}

func (r *capacityRecorder) OnError(kind connection.ErrorKind, err error) {
	select {
	case r.ch <- kind:
	default:
	}
}

func TestE2E_TooManyPeers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	server := newTestNode(t, 9041)
	server.startListener(t, 1, nil)

	first := newTestNode(t, 9042)
	conn := first.dial(t, server.addr)
	defer conn.Disconnect()

	second := newTestNode(t, 9043)
	recorder := &capacityRecorder{ch: make(chan connection.ErrorKind, 1)}
	refused, err := connection.New(connection.Config{
		Transport: second.tr,
		Options:   connection.DefaultOptions(server.addr.String()),
		Handler:   recorder,
	})
	require.NoError(t, err)
	second.tr.SetHandler(refused)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, refused.Connect(ctx))

	select {
	case kind := <-recorder.ch:
		assert.Equal(t, connection.ErrorKindCapacityExceeded, kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no capacity error reported")
	}
	assert.Equal(t, connection.StateDisconnected, refused.State())
}
