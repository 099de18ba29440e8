package connection

// State represents the connection lifecycle state.
type State int32

const (
	// StateIdle indicates a freshly created connection.
	StateIdle State = iota

	// StateConnecting indicates a handshake in progress.
	StateConnecting

	// StateConnected indicates an established connection.
	StateConnected

	// StateDisconnected is the terminal state. A disconnected
	// connection never reconnects; create a new one to retry.
	StateDisconnected
)

// String returns the connection state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}
