package gateway

import "sync"

// ConnectionState describes the supervisor's view of the connection.
// Exactly one value holds at a time; only the supervisor writes it.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Cell is a thread-safe single-value observable. The client exposes its
// read-only state (connection state, latest streaming text, agent list,
// sticky error flags) through cells that any goroutine may poll.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewCell creates a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Store replaces the current value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}
