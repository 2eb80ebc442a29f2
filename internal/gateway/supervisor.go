package gateway

import (
	"context"
	"math"
	"time"

	"github.com/clawlink/clawlink/internal/protocol"
)

const (
	backoffBase   = 350 * time.Millisecond
	backoffFactor = 1.7
	backoffMax    = 8 * time.Second

	challengeWait = 2 * time.Second
)

// backoffDelay returns the reconnect delay before attempt n, where n is
// 1-indexed over consecutive failures since the last success:
// min(8s, 350ms × 1.7ⁿ).
func backoffDelay(attempt int) time.Duration {
	d := float64(backoffBase) * math.Pow(backoffFactor, float64(attempt))
	if d > float64(backoffMax) {
		return backoffMax
	}
	return time.Duration(d)
}

// runLoop is the supervisor: it retries the desired endpoint indefinitely
// with capped exponential backoff until the context (one per Connect
// generation) is cancelled. A successful connect resets the attempt
// counter and re-arms fault reporting. Only the first failure of an
// outage is examined for reporting; if that failure was transient, a
// later non-transient failure in the same outage goes unreported until
// the next successful connect re-arms it. The wake channel belongs to
// this generation; Reconnect uses it to cut a backoff wait short.
func (c *Client) runLoop(ctx context.Context, ep Endpoint, wake chan struct{}) {
	attempt := 0
	reported := false

	for {
		if ctx.Err() != nil {
			return
		}

		// Discard a wake token left over from a Reconnect that raced
		// the previous attempt; it must not skip the coming delay.
		select {
		case <-wake:
		default:
		}

		c.state.Store(Connecting)
		reachedConnected, err := c.runSession(ctx, ep)
		if ctx.Err() != nil {
			return
		}

		if reachedConnected {
			attempt = 0
			reported = false
			if err != nil {
				c.logger.Warn("connection lost", "error", err)
			}
		} else {
			attempt++
			if attempt == 1 && !reported && !isTransient(err) {
				c.sink.RecordException(err)
				reported = true
			}
		}

		// An established connection that drops redials after the
		// attempt-1 delay rather than immediately, so a server that
		// closes right after the handshake cannot induce a hot loop.
		n := attempt
		if n == 0 {
			n = 1
		}
		delay := backoffDelay(n)
		c.state.Store(Reconnecting)
		c.logger.Info("reconnecting", "attempt", attempt, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// runSession runs one connection attempt end to end: dial, handshake,
// then block until the session closes. Returns whether the attempt
// reached the Connected state.
func (c *Client) runSession(ctx context.Context, ep Endpoint) (bool, error) {
	s, err := dialSession(ctx, ep, c.opts.TLSFingerprint, c.logger)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.sess == s {
			c.sess = nil
		}
		c.mu.Unlock()
		s.close(nil)
	}()

	go s.readLoop(func(f *protocol.Frame) { c.dispatchEvent(s, f) })

	if err := c.handshake(ctx, s, ep); err != nil {
		return false, err
	}

	c.state.Store(Connected)
	c.logger.Info("connected to gateway", "host", ep.Host, "port", ep.Port, "tls", ep.UseTLS)

	select {
	case <-ctx.Done():
		s.shutdown()
		return true, nil
	case <-s.closed:
		return true, s.closeErr
	}
}
