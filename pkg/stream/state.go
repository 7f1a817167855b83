package stream

// ConnectionState represents the lifecycle state of a persistent
// event-stream connection. Transitions are driven by network events;
// the only caller-driven transition is Close, which is terminal until
// the connection is reopened.
type ConnectionState int

const (
	// StateConnecting is the state before the first successful open.
	StateConnecting ConnectionState = iota
	// StateConnected means the stream is open and delivering frames.
	StateConnected
	// StateReconnecting is entered after any broken or failed attempt
	// while the connection is still enabled.
	StateReconnecting
	// StateDisconnected is entered only when the caller closes the
	// connection.
	StateDisconnected
)

// String returns the string representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
