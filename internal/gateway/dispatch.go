package gateway

import (
	"encoding/json"

	"github.com/clawlink/clawlink/internal/protocol"
)

// dispatchEvent classifies one server-pushed event frame and republishes
// it. Unknown event names and malformed payloads are logged and dropped
// per-event; they never terminate the connection or affect other events.
func (c *Client) dispatchEvent(s *session, f *protocol.Frame) {
	switch f.Event {
	case protocol.EventTick:
		// Keepalive only.

	case protocol.EventConnectChallenge:
		var ch protocol.ChallengePayload
		if err := json.Unmarshal(f.EventPayload(), &ch); err != nil {
			c.logger.Warn("dropping malformed challenge event", "error", err)
			return
		}
		if ch.Nonce != "" {
			s.deliverChallenge(ch.Nonce)
		}

	case protocol.EventChat:
		var ev protocol.ChatEventPayload
		if err := json.Unmarshal(f.EventPayload(), &ev); err != nil {
			c.logger.Warn("dropping malformed chat event", "error", err)
			return
		}
		c.chatBus.Publish(ev)

	case protocol.EventAgent:
		var ev protocol.AgentEventPayload
		if err := json.Unmarshal(f.EventPayload(), &ev); err != nil {
			c.logger.Warn("dropping malformed agent event", "error", err)
			return
		}
		if ev.Stream == "assistant" && ev.Data.Text != "" {
			c.streamingText.Store(ev.Data.Text)
		}
		c.agentBus.Publish(ev)

	default:
		c.logger.Debug("dropping unknown event", "event", f.Event)
	}
}
