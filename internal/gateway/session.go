package gateway

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/clawlink/clawlink/internal/protocol"
)

const dialTimeout = 10 * time.Second

// session owns one physical WebSocket connection's send/receive lifecycle:
// open, handshake, active, closed. All outbound frames are serialized
// under a single write lock so concurrent requests never interleave.
type session struct {
	conn    *websocket.Conn
	logger  *slog.Logger
	pending *pendingTable

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error

	challengeMu   sync.Mutex
	handshakeDone bool
	challengeCh   chan string
}

// dialSession opens the WebSocket to the endpoint. When a TLS fingerprint
// pin is set, the server certificate must match it exactly.
func dialSession(ctx context.Context, ep Endpoint, pin string, logger *slog.Logger) (*session, error) {
	scheme := "ws"
	if ep.UseTLS {
		scheme = "wss"
	}
	url := fmt.Sprintf("%s://%s:%d", scheme, ep.Host, ep.Port)

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	if ep.UseTLS && pin != "" {
		dialer.TLSClientConfig = &tls.Config{
			// Chain validation is replaced by the exact fingerprint pin.
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: pinVerifier(pin),
		}
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway %s: %w", url, err)
	}

	return &session{
		conn:        conn,
		logger:      logger,
		pending:     newPendingTable(),
		closed:      make(chan struct{}),
		challengeCh: make(chan string, 1),
	}, nil
}

// pinVerifier checks the leaf certificate's SHA-256 fingerprint against
// the stored pin (lowercase hex).
func pinVerifier(pin string) func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("gateway presented no certificate")
		}
		sum := sha256.Sum256(rawCerts[0])
		got := hex.EncodeToString(sum[:])
		if got != pin {
			return fmt.Errorf("gateway certificate fingerprint %s does not match pin %s", got, pin)
		}
		return nil
	}
}

// readLoop parses every inbound text frame and routes it: responses to the
// pending table, events to onEvent. Unparseable or unknown frames are
// logged and dropped without terminating the connection. Returns when the
// socket fails or is closed; the session is then closed exactly once.
func (s *session) readLoop(onEvent func(*protocol.Frame)) {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			s.close(fmt.Errorf("%w: %v", ErrConnectionLost, err))
			return
		}

		var f protocol.Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.logger.Warn("dropping unparseable frame", "error", err)
			continue
		}

		switch f.Type {
		case protocol.FrameTypeResponse:
			if !s.pending.resolve(&f) {
				s.logger.Debug("dropping orphaned response", "id", f.ID)
			}
		case protocol.FrameTypeEvent:
			onEvent(&f)
		default:
			s.logger.Warn("dropping frame with unknown type", "type", f.Type)
		}
	}
}

// writeFrame serializes f to JSON and sends it as one text message under
// the write lock.
func (s *session) writeFrame(f *protocol.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.closed:
		return ErrConnectionLost
	default:
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// request sends a req frame and waits for its response, up to timeout.
// Exactly one of response, timeout, connection loss, or caller
// cancellation resolves the call; the pending entry is removed in every
// path so late responses become orphans.
func (s *session) request(ctx context.Context, method string, params any, timeout time.Duration) (*RPCResult, error) {
	id := uuid.NewString()

	ch, ok := s.pending.add(id)
	if !ok {
		return nil, ErrConnectionLost
	}

	f := &protocol.Frame{Type: protocol.FrameTypeRequest, ID: id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			s.pending.remove(id)
			return nil, fmt.Errorf("marshal %s params: %w", method, err)
		}
		f.Params = raw
	}

	if err := s.writeFrame(f); err != nil {
		s.pending.remove(id)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		res := &RPCResult{OK: resp.OK, Payload: resp.Payload}
		if resp.Error != nil {
			res.ErrorCode = resp.Error.Code
			res.ErrorMessage = resp.Error.Message
		}
		return res, nil
	case <-timer.C:
		s.pending.remove(id)
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, method, timeout)
	case <-s.closed:
		return nil, ErrConnectionLost
	case <-ctx.Done():
		s.pending.remove(id)
		return nil, ctx.Err()
	}
}

// deliverChallenge hands a connect.challenge nonce to the handshake in
// progress. A second challenge after handshake completion is ignored.
func (s *session) deliverChallenge(nonce string) {
	s.challengeMu.Lock()
	defer s.challengeMu.Unlock()
	if s.handshakeDone {
		return
	}
	select {
	case s.challengeCh <- nonce:
	default:
	}
}

// awaitChallenge waits up to timeout for the server's challenge nonce.
// Loopback and trusted transports may skip the challenge entirely, in
// which case the wait times out and the handshake proceeds without one.
func (s *session) awaitChallenge(ctx context.Context, timeout time.Duration) string {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case nonce := <-s.challengeCh:
		return nonce
	case <-timer.C:
		return ""
	case <-s.closed:
		return ""
	case <-ctx.Done():
		return ""
	}
}

// finishHandshake marks the handshake complete so late challenges drop.
func (s *session) finishHandshake() {
	s.challengeMu.Lock()
	s.handshakeDone = true
	s.challengeMu.Unlock()
}

// close marks the session closed exactly once: fails every pending
// request, closes the socket, and signals waiters through the closed
// channel.
func (s *session) close(err error) {
	s.closeOnce.Do(func() {
		s.closeErr = err
		s.pending.failAll()
		_ = s.conn.Close()
		close(s.closed)
	})
}

// shutdown attempts a clean close handshake before tearing down.
func (s *session) shutdown() {
	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"))
	s.writeMu.Unlock()
	s.close(nil)
}
