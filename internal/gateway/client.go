// Package gateway implements the persistent, auto-reconnecting WebSocket
// client for the OpenClaw-style gateway: device-signed connect handshake,
// request/response correlation over event frames, and fan-out of
// server-pushed chat and agent stream events.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clawlink/clawlink/internal/eventbus"
	"github.com/clawlink/clawlink/internal/identity"
	"github.com/clawlink/clawlink/internal/protocol"
)

// Endpoint is the desired gateway endpoint. Compared by value: a Connect
// call with a different tuple supersedes the running connection cycle.
type Endpoint struct {
	Host   string
	Port   int
	Token  string
	UseTLS bool
}

// FaultSink receives non-transient connection failures, at most once per
// outage onset.
type FaultSink interface {
	RecordException(err error)
}

type slogFaultSink struct {
	logger *slog.Logger
}

func (s slogFaultSink) RecordException(err error) {
	s.logger.Error("connection fault", "error", err)
}

// Options configure a Client.
type Options struct {
	ClientID      string
	ClientVersion string
	Platform      string
	Mode          string
	Role          string
	Scopes        []string

	// Identity enables device auth when set. Absent identity means token
	// auth only; that is an allowed downgrade, not an error.
	Identity *identity.Identity

	// TLSFingerprint pins the gateway certificate (lowercase hex SHA-256
	// of the leaf). Empty disables pinning.
	TLSFingerprint string

	RequestTimeout  time.Duration
	ChatSendTimeout time.Duration

	// ChallengeWait bounds the wait for the optional connect.challenge
	// nonce after socket open; when it elapses the handshake proceeds
	// with the nonce-less v1 signature payload.
	ChallengeWait time.Duration

	FaultSink FaultSink
	Logger    *slog.Logger
}

// Client is the gateway connectivity core. One instance manages one
// desired endpoint at a time; construct it at the composition root.
type Client struct {
	opts   Options
	logger *slog.Logger
	sink   FaultSink

	state           *Cell[ConnectionState]
	streamingText   *Cell[string]
	agentList       *Cell[[]protocol.AgentInfo]
	pairingRequired *Cell[bool]
	missingScope    *Cell[string]
	mainSessionKey  *Cell[string]

	chatBus  *eventbus.Bus[protocol.ChatEventPayload]
	agentBus *eventbus.Bus[protocol.AgentEventPayload]

	// connectMu serializes whole Connect/Disconnect transitions so the
	// cancel-join-install sequence is atomic and at most one supervisor
	// loop ever runs. mu guards the individual fields for readers.
	connectMu sync.Mutex

	mu         sync.Mutex
	desired    *Endpoint
	loopCancel context.CancelFunc
	loopDone   chan struct{}
	sess       *session
	wake       chan struct{}
}

// New creates a client. It does not connect; call Connect.
func New(opts Options) *Client {
	if opts.ClientID == "" {
		opts.ClientID = "clawlink"
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = "dev"
	}
	if opts.Platform == "" {
		opts.Platform = "linux"
	}
	if opts.Mode == "" {
		opts.Mode = "backend"
	}
	if opts.Role == "" {
		opts.Role = "operator"
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{"operator.admin"}
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.ChatSendTimeout == 0 {
		opts.ChatSendTimeout = 35 * time.Second
	}
	if opts.ChallengeWait == 0 {
		opts.ChallengeWait = challengeWait
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("component", "gateway-client")
	if opts.FaultSink == nil {
		opts.FaultSink = slogFaultSink{logger: logger}
	}

	return &Client{
		opts:            opts,
		logger:          logger,
		sink:            opts.FaultSink,
		state:           NewCell(Disconnected),
		streamingText:   NewCell(""),
		agentList:       NewCell[[]protocol.AgentInfo](nil),
		pairingRequired: NewCell(false),
		missingScope:    NewCell(""),
		mainSessionKey:  NewCell(""),
		chatBus:         eventbus.New[protocol.ChatEventPayload](),
		agentBus:        eventbus.New[protocol.AgentEventPayload](),
	}
}

// Connect sets the desired endpoint and starts the supervisor loop. A call
// with the same tuple while a loop is running is a no-op; a different
// tuple cancels the current loop, joins it, and starts fresh with the
// attempt counter reset.
func (c *Client) Connect(host string, port int, token string, useTLS bool) {
	ep := Endpoint{Host: host, Port: port, Token: token, UseTLS: useTLS}

	// Hold connectMu across the whole cancel-join-install sequence:
	// concurrent Connect calls serialize here, so two supervisor loops
	// never run at once and no loop's handles get overwritten while it
	// is still alive.
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	if c.desired != nil && *c.desired == ep && c.loopDone != nil {
		c.mu.Unlock()
		return
	}
	cancel, done, sess := c.loopCancel, c.loopDone, c.sess
	c.mu.Unlock()

	// Cancel and join the previous loop before starting the next one.
	if cancel != nil {
		cancel()
		if sess != nil {
			sess.close(nil)
		}
		<-done
	}

	ctx, loopCancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	wake := make(chan struct{}, 1)

	c.mu.Lock()
	c.desired = &ep
	c.loopCancel = loopCancel
	c.loopDone = loopDone
	c.wake = wake
	c.mu.Unlock()

	go func() {
		defer close(loopDone)
		c.runLoop(ctx, ep, wake)
	}()
}

// Reconnect forces an immediate retry: it skips any backoff in progress
// and drops the live socket so the loop redials now. The desired endpoint
// is unchanged; pending requests fail only through the socket close.
// Without a running loop this is a no-op.
func (c *Client) Reconnect() {
	c.mu.Lock()
	sess, wake := c.sess, c.wake
	c.mu.Unlock()

	if sess != nil {
		sess.close(ErrConnectionLost)
	}
	if wake != nil {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// Disconnect clears the desired endpoint, stops the supervisor loop,
// closes the live socket, and resets session-scoped state. Sticky pairing
// and missing-scope flags survive; they clear on the next success.
func (c *Client) Disconnect() {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	cancel, done, sess := c.loopCancel, c.loopDone, c.sess
	c.desired = nil
	c.loopCancel = nil
	c.loopDone = nil
	c.wake = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sess != nil {
		sess.shutdown()
	}
	if done != nil {
		<-done
	}

	c.mainSessionKey.Store("")
	c.streamingText.Store("")
	c.agentList.Store(nil)
	c.state.Store(Disconnected)
}

// Close disconnects and shuts down the event buses.
func (c *Client) Close() {
	c.Disconnect()
	c.chatBus.Close()
	c.agentBus.Close()
}

// IsConnected reports whether a usable (authenticated) connection exists.
func (c *Client) IsConnected() bool {
	return c.state.Load() == Connected
}

// State returns the current connection state.
func (c *Client) State() ConnectionState { return c.state.Load() }

// StreamingText returns the latest partial assistant answer for the most
// recently streaming run. UI layers may poll this instead of subscribing.
func (c *Client) StreamingText() string { return c.streamingText.Load() }

// AgentList returns the most recently fetched agent list.
func (c *Client) AgentList() []protocol.AgentInfo { return c.agentList.Load() }

// PairingRequired reports the sticky pairing flag: the gateway rejected
// the device as unpaired and a remediation prompt should be shown.
func (c *Client) PairingRequired() bool { return c.pairingRequired.Load() }

// MissingScopeError returns the sticky missing-scope message from
// agents.list, or empty.
func (c *Client) MissingScopeError() string { return c.missingScope.Load() }

// MainSessionKey returns the server-assigned default conversation handle
// for the current connection; empty while disconnected.
func (c *Client) MainSessionKey() string { return c.mainSessionKey.Load() }

// SubscribeChat returns a channel of chat lifecycle events. Slow
// subscribers miss events rather than blocking the read loop.
func (c *Client) SubscribeChat() chan protocol.ChatEventPayload { return c.chatBus.Subscribe() }

// UnsubscribeChat removes a chat subscriber.
func (c *Client) UnsubscribeChat(ch chan protocol.ChatEventPayload) { c.chatBus.Unsubscribe(ch) }

// SubscribeAgent returns a channel of agent stream events.
func (c *Client) SubscribeAgent() chan protocol.AgentEventPayload { return c.agentBus.Subscribe() }

// UnsubscribeAgent removes an agent-stream subscriber.
func (c *Client) UnsubscribeAgent(ch chan protocol.AgentEventPayload) { c.agentBus.Unsubscribe(ch) }

// currentSession returns the live session or nil.
func (c *Client) currentSession() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// request issues an RPC on the live connection.
func (c *Client) request(ctx context.Context, method string, params any, timeout time.Duration) (*RPCResult, error) {
	s := c.currentSession()
	if s == nil || c.state.Load() != Connected {
		return nil, ErrNotConnected
	}
	return s.request(ctx, method, params, timeout)
}

// SendChat sends a chat message on the main session and returns the runId
// assigned by the gateway. Uses the longer chat timeout: the gateway waits
// on an upstream model call before acknowledging.
func (c *Client) SendChat(ctx context.Context, message string) (string, error) {
	params := protocol.ChatSendParams{
		SessionKey:     c.mainSessionKey.Load(),
		Message:        message,
		IdempotencyKey: uuid.NewString(),
	}
	res, err := c.request(ctx, protocol.MethodChatSend, params, c.opts.ChatSendTimeout)
	if err != nil {
		return "", err
	}
	if err := res.Err(); err != nil {
		return "", err
	}
	var out protocol.ChatSendResult
	if len(res.Payload) > 0 {
		if err := json.Unmarshal(res.Payload, &out); err != nil {
			return "", err
		}
	}
	return out.RunID, nil
}

// AbortChat aborts a running chat turn. Empty runID aborts the session's
// active run.
func (c *Client) AbortChat(ctx context.Context, runID string) error {
	params := protocol.ChatAbortParams{
		SessionKey: c.mainSessionKey.Load(),
		RunID:      runID,
	}
	res, err := c.request(ctx, protocol.MethodChatAbort, params, c.opts.RequestTimeout)
	if err != nil {
		return err
	}
	return res.Err()
}

// ChatHistory fetches the ordered transcript of the main session.
func (c *Client) ChatHistory(ctx context.Context, limit int) ([]protocol.ChatMessage, error) {
	params := protocol.ChatHistoryParams{
		SessionKey: c.mainSessionKey.Load(),
		Limit:      limit,
	}
	res, err := c.request(ctx, protocol.MethodChatHistory, params, c.opts.RequestTimeout)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	var out protocol.ChatHistoryResult
	if len(res.Payload) > 0 {
		if err := json.Unmarshal(res.Payload, &out); err != nil {
			return nil, err
		}
	}
	return out.Messages, nil
}

// ListAgents fetches the agents visible to this client. A "missing scope"
// rejection is surfaced as a sticky flag so the UI can prompt for
// re-pairing; it clears on the next success.
func (c *Client) ListAgents(ctx context.Context) (*protocol.AgentsListResult, error) {
	res, err := c.request(ctx, protocol.MethodAgentsList, nil, c.opts.RequestTimeout)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		if strings.Contains(strings.ToLower(res.ErrorMessage), "missing scope") {
			c.missingScope.Store(res.ErrorMessage)
		}
		return nil, res.Err()
	}
	c.missingScope.Store("")

	var out protocol.AgentsListResult
	if len(res.Payload) > 0 {
		if err := json.Unmarshal(res.Payload, &out); err != nil {
			return nil, err
		}
	}
	c.agentList.Store(out.Agents)
	return &out, nil
}

// CheckHealth asks the gateway for a liveness verdict.
func (c *Client) CheckHealth(ctx context.Context) (bool, error) {
	res, err := c.request(ctx, protocol.MethodHealth, nil, c.opts.RequestTimeout)
	if err != nil {
		return false, err
	}
	return res.OK, nil
}
