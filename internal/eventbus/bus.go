// Package eventbus provides a typed fan-out broadcast bus. The gateway
// client runs one bus per event stream (chat events, agent stream events)
// so subscribers get typed channels instead of re-decoding JSON.
package eventbus

import "sync"

// defaultBuffer is the per-subscriber channel buffer.
const defaultBuffer = 64

// Bus is a fan-out pub/sub bus for values of type T. Subscribers receive
// values on a buffered channel. Publishing never blocks: when a
// subscriber's buffer is full the value is dropped for that subscriber,
// so slow consumers miss events rather than stalling the producer.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[chan T]struct{}
	closed bool
}

// New creates a new bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[chan T]struct{})}
}

// Subscribe returns a channel that receives every published value. The
// channel is buffered; it is closed by Unsubscribe or Close.
func (b *Bus[T]) Subscribe() chan T {
	ch := make(chan T, defaultBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish sends v to all subscribers. Non-blocking: a full subscriber
// buffer drops the value for that subscriber only.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- v:
		default:
			// slow subscriber, drop
		}
	}
}

// Close unsubscribes everyone and closes their channels. Publishing after
// Close is a no-op.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
