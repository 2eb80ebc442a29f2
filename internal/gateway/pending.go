package gateway

import (
	"encoding/json"
	"sync"

	"github.com/clawlink/clawlink/internal/protocol"
)

// RPCResult is the typed outcome of one request. OK false carries the
// server-provided error code and message.
type RPCResult struct {
	OK           bool
	Payload      json.RawMessage
	ErrorCode    string
	ErrorMessage string
}

// Err returns nil for an ok result, otherwise the RPCError.
func (r *RPCResult) Err() error {
	if r.OK {
		return nil
	}
	return &RPCError{Code: r.ErrorCode, Message: r.ErrorMessage}
}

// pendingTable correlates outstanding request ids with waiting callers.
// At most one entry exists per id; an entry is removed exactly once, by
// whichever of response arrival, timeout, or connection loss fires first.
type pendingTable struct {
	mu     sync.Mutex
	m      map[string]chan *protocol.Frame
	closed bool
}

func newPendingTable() *pendingTable {
	return &pendingTable{m: make(map[string]chan *protocol.Frame)}
}

// add registers a new pending request. Returns false once the table has
// been closed by connection loss.
func (t *pendingTable) add(id string) (chan *protocol.Frame, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, false
	}
	ch := make(chan *protocol.Frame, 1)
	t.m[id] = ch
	return ch, true
}

// remove drops a pending entry, typically on timeout or caller
// cancellation. A response arriving afterwards is an orphan and is dropped
// by resolve.
func (t *pendingTable) remove(id string) {
	t.mu.Lock()
	delete(t.m, id)
	t.mu.Unlock()
}

// resolve delivers a response frame to its waiting caller. Returns false
// for orphaned responses (no matching pending entry).
func (t *pendingTable) resolve(f *protocol.Frame) bool {
	t.mu.Lock()
	ch, ok := t.m[f.ID]
	if ok {
		delete(t.m, f.ID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- f // buffered; single send per entry
	return true
}

// failAll atomically clears every pending entry and rejects future adds.
// Waiting callers observe connection loss through the session's closed
// channel rather than through their entry.
func (t *pendingTable) failAll() {
	t.mu.Lock()
	t.closed = true
	t.m = make(map[string]chan *protocol.Frame)
	t.mu.Unlock()
}

// size returns the number of outstanding requests.
func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
