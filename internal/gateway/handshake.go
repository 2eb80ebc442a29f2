package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/clawlink/clawlink/internal/protocol"
)

// handshake negotiates protocol version and identity immediately after
// socket open; the connection is not usable before it succeeds. The
// optional connect.challenge nonce upgrades the signature payload from v1
// to v2.
func (c *Client) handshake(ctx context.Context, s *session, ep Endpoint) error {
	nonce := s.awaitChallenge(ctx, c.opts.ChallengeWait)
	defer s.finishHandshake()

	params := protocol.ConnectParams{
		MinProtocol: protocol.Version,
		MaxProtocol: protocol.Version,
		Client: protocol.ClientInfo{
			ID:       c.opts.ClientID,
			Version:  c.opts.ClientVersion,
			Platform: c.opts.Platform,
			Mode:     c.opts.Mode,
		},
	}
	if ep.Token != "" {
		params.Auth = &protocol.AuthInfo{Token: ep.Token}
	}
	if id := c.opts.Identity; id != nil {
		signedAt := time.Now().UnixMilli()
		payload := protocol.SignaturePayload(
			id.DeviceID(), c.opts.ClientID, c.opts.Mode, c.opts.Role,
			c.opts.Scopes, signedAt, ep.Token, nonce)
		params.Device = &protocol.DeviceInfo{
			ID:        id.DeviceID(),
			PublicKey: id.PublicKey(),
			Signature: id.Sign([]byte(payload)),
			SignedAt:  signedAt,
			Nonce:     nonce,
		}
		params.Role = c.opts.Role
		params.Scopes = c.opts.Scopes
	}

	res, err := s.request(ctx, protocol.MethodConnect, params, c.opts.RequestTimeout)
	if err != nil {
		return fmt.Errorf("connect handshake: %w", err)
	}
	if !res.OK {
		if res.ErrorCode == protocol.ErrorCodeNotPaired ||
			strings.Contains(strings.ToLower(res.ErrorMessage), "pairing") {
			c.pairingRequired.Store(true)
		}
		return fmt.Errorf("connect rejected: %w", res.Err())
	}

	c.pairingRequired.Store(false)

	// mainSessionKey is scoped to this connection; absent is fine.
	var hello protocol.HelloPayload
	if len(res.Payload) > 0 {
		if err := json.Unmarshal(res.Payload, &hello); err != nil {
			c.logger.Warn("unparseable connect payload", "error", err)
		}
	}
	c.mainSessionKey.Store(hello.Snapshot.SessionDefaults.MainSessionKey)
	return nil
}
