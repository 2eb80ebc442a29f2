// Package protocol defines the JSON wire protocol spoken over the gateway
// WebSocket. Every message is a single text frame carrying a tagged union:
// a client request ("req"), a server response ("res"), or a server-pushed
// event ("event").
package protocol

import "encoding/json"

// Version is the single gateway protocol version this client speaks.
const Version = 3

// Frame types.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Method names.
const (
	MethodConnect     = "connect"
	MethodChatSend    = "chat.send"
	MethodChatAbort   = "chat.abort"
	MethodChatHistory = "chat.history"
	MethodAgentsList  = "agents.list"
	MethodHealth      = "health"
)

// Event names pushed from the gateway.
const (
	EventTick             = "tick"
	EventConnectChallenge = "connect.challenge"
	EventChat             = "chat"
	EventAgent            = "agent"
)

// Error codes returned in response frames.
const (
	ErrorCodeNotPaired     = "NOT_PAIRED"
	ErrorCodeNotAuthorized = "NOT_AUTHORIZED"
	ErrorCodeUnknown       = "UNKNOWN"
)

// Frame is the top-level wire format. Exactly one of the type-specific
// field groups is populated depending on Type.
type Frame struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	OK      bool            `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	Event string `json:"event,omitempty"`
	// Some gateway builds pre-serialize the event payload into a string
	// field instead of nesting an object. Both forms are accepted.
	PayloadJSON string `json:"payloadJSON,omitempty"`
}

// ErrorShape is the error object in a non-ok response.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EventPayload returns the event payload bytes regardless of which of the
// two accepted encodings the server used.
func (f *Frame) EventPayload() json.RawMessage {
	if f.PayloadJSON != "" {
		return json.RawMessage(f.PayloadJSON)
	}
	return f.Payload
}

// ChallengePayload is the connect.challenge event payload.
type ChallengePayload struct {
	Nonce string `json:"nonce"`
	TS    int64  `json:"ts,omitempty"`
}

// ConnectParams are the params of the connect request.
type ConnectParams struct {
	MinProtocol int         `json:"minProtocol"`
	MaxProtocol int         `json:"maxProtocol"`
	Client      ClientInfo  `json:"client"`
	Auth        *AuthInfo   `json:"auth,omitempty"`
	Device      *DeviceInfo `json:"device,omitempty"`
	Role        string      `json:"role,omitempty"`
	Scopes      []string    `json:"scopes,omitempty"`
}

// ClientInfo identifies the connecting client.
type ClientInfo struct {
	ID       string `json:"id"`
	Version  string `json:"version"`
	Platform string `json:"platform"`
	Mode     string `json:"mode"`
}

// AuthInfo carries the bearer token, when one is configured.
type AuthInfo struct {
	Token string `json:"token,omitempty"`
}

// DeviceInfo carries the device identity proof for device auth.
type DeviceInfo struct {
	ID        string `json:"id"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
	SignedAt  int64  `json:"signedAt"`
	Nonce     string `json:"nonce,omitempty"`
}

// HelloPayload is the payload of a successful connect response. Only the
// fields the client consumes are modeled; the rest of the snapshot is
// passed through untouched.
type HelloPayload struct {
	Protocol int `json:"protocol,omitempty"`
	Snapshot struct {
		SessionDefaults struct {
			MainSessionKey string `json:"mainSessionKey"`
		} `json:"sessionDefaults"`
	} `json:"snapshot"`
}

// ChatSendParams are the params of chat.send.
type ChatSendParams struct {
	SessionKey     string `json:"sessionKey"`
	Message        string `json:"message"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// ChatSendResult is the payload of a chat.send response.
type ChatSendResult struct {
	RunID string `json:"runId"`
}

// ChatAbortParams are the params of chat.abort.
type ChatAbortParams struct {
	SessionKey string `json:"sessionKey"`
	RunID      string `json:"runId,omitempty"`
}

// ChatHistoryParams are the params of chat.history.
type ChatHistoryParams struct {
	SessionKey string `json:"sessionKey"`
	Limit      int    `json:"limit,omitempty"`
}

// ChatMessage is one entry in a chat.history response.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ChatHistoryResult is the payload of a chat.history response.
type ChatHistoryResult struct {
	Messages []ChatMessage `json:"messages"`
}

// AgentInfo describes one agent in an agents.list response.
type AgentInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// AgentsListResult is the payload of an agents.list response.
type AgentsListResult struct {
	DefaultID string      `json:"defaultId,omitempty"`
	Agents    []AgentInfo `json:"agents"`
}

// ChatEventPayload is the payload of a "chat" event: one lifecycle update
// for a chat run. State is one of "delta", "final", "aborted", "error".
type ChatEventPayload struct {
	RunID        string `json:"runId"`
	SessionKey   string `json:"sessionKey"`
	State        string `json:"state"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// AgentEventPayload is the payload of an "agent" event. Stream is one of
// "assistant", "tool", "error".
type AgentEventPayload struct {
	RunID  string          `json:"runId"`
	Stream string          `json:"stream"`
	Data   AgentStreamData `json:"data"`
}

// AgentStreamData is the stream-specific body of an agent event.
type AgentStreamData struct {
	Text       string `json:"text,omitempty"`
	Phase      string `json:"phase,omitempty"` // "start" or "result"
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
}
