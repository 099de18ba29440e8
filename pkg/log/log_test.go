package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	event := NewEvent("conn-1", DirectionIn, CategoryControl)
	event.Peer = "76561198012345678"
	event.ControlMsg = &ControlMsgEvent{Type: "ACCEPT"}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if got.ConnectionID != event.ConnectionID {
		t.Errorf("ConnectionID = %q, want %q", got.ConnectionID, event.ConnectionID)
	}
	if got.Direction != DirectionIn {
		t.Errorf("Direction = %v, want %v", got.Direction, DirectionIn)
	}
	if got.Category != CategoryControl {
		t.Errorf("Category = %v, want %v", got.Category, CategoryControl)
	}
	if got.ControlMsg == nil || got.ControlMsg.Type != "ACCEPT" {
		t.Errorf("ControlMsg = %+v, want ACCEPT", got.ControlMsg)
	}
	if got.Timestamp.Sub(event.Timestamp) > time.Millisecond {
		t.Errorf("Timestamp drifted: %v vs %v", got.Timestamp, event.Timestamp)
	}
}

func TestNoopLogger(t *testing.T) {
	var l NoopLogger
	// Must not panic
	l.Log(NewEvent("conn", DirectionNone, CategoryState))
}

// recordingLogger captures events for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestMultiLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, b)

	m.Log(NewEvent("conn", DirectionOut, CategoryData))

	if a.count() != 1 || b.count() != 1 {
		t.Errorf("event counts = %d, %d, want 1, 1", a.count(), b.count())
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	event := NewEvent("conn-2", DirectionIn, CategoryError)
	event.Error = &ErrorEventData{Kind: "CONNECTION_TIMEOUT", Message: "no accept received"}
	adapter.Log(event)

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("conn-2")) {
		t.Errorf("output missing conn id: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte("CONNECTION_TIMEOUT")) {
		t.Errorf("output missing error kind: %s", out)
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := NewEvent("conn-3", DirectionOut, CategoryControl)
	event.ControlMsg = &ControlMsgEvent{Type: "CONNECT"}
	fl.Log(event)

	if err := fl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close is a no-op
	if err := fl.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	// Log after close is ignored
	fl.Log(event)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	var got Event
	if err := NewDecoder(f).Decode(&got); err != nil {
		t.Fatalf("decode logged event: %v", err)
	}
	if got.ConnectionID != "conn-3" {
		t.Errorf("ConnectionID = %q, want conn-3", got.ConnectionID)
	}
}
