package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// Sentinel errors returned by request-level operations. Callers can tell a
// per-request timeout apart from losing the whole connection.
var (
	ErrNotConnected   = errors.New("gateway: not connected")
	ErrTimeout        = errors.New("gateway: request timed out")
	ErrConnectionLost = errors.New("gateway: connection lost")
)

// RPCError is a non-ok response from the gateway.
type RPCError struct {
	Code    string
	Message string
}

func (e *RPCError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: %s", e.Message)
}

// isTransient reports whether err looks like an ordinary network hiccup.
// Transient failures are retried silently by the supervisor; anything else
// is reported once per outage to the fault sink before retrying anyway.
func isTransient(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnectionLost) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
