package connection

import "sync"

// signalOutcome is the terminal result of a handshake attempt.
type signalOutcome uint8

const (
	// signalSuccess: the peer accepted the connection.
	signalSuccess signalOutcome = 1

	// signalFailed: the handshake failed (timeout, capacity, transport).
	signalFailed signalOutcome = 2

	// signalCancelled: the handshake was abandoned locally.
	signalCancelled signalOutcome = 3
)

// handshakeSignal is a one-shot completion primitive for a single
// connect attempt. A fresh signal is created per attempt and resolved
// at most once; any resolution after the first is a no-op. Signals are
// never reset or reused.
type handshakeSignal struct {
	once sync.Once
	ch   chan signalOutcome
}

func newHandshakeSignal() *handshakeSignal {
	return &handshakeSignal{ch: make(chan signalOutcome, 1)}
}

// resolve settles the signal with the given outcome. Returns true if
// this call won the resolution, false if the signal was already
// settled.
func (s *handshakeSignal) resolve(outcome signalOutcome) bool {
	won := false
	s.once.Do(func() {
		s.ch <- outcome
		won = true
	})
	return won
}

// outcome returns the channel carrying the terminal outcome.
func (s *handshakeSignal) outcome() <-chan signalOutcome {
	return s.ch
}
