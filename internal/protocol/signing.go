package protocol

import (
	"strconv"
	"strings"
)

// Signature payload versions. v2 is used when the server issued a
// connect.challenge nonce, v1 otherwise.
const (
	SignatureVersionV1 = "v1"
	SignatureVersionV2 = "v2"
)

// SignaturePayload builds the canonical pipe-delimited byte string signed
// by the device key for the connect handshake. Field order is a wire
// contract with the gateway and must not change:
//
//	version|deviceId|clientId|clientMode|role|scopes|signedAtMs|token[|nonce]
//
// The nonce field is appended only when a nonce was received; without one
// the payload has exactly eight fields and version "v1".
func SignaturePayload(deviceID, clientID, clientMode, role string, scopes []string, signedAtMs int64, token, nonce string) string {
	version := SignatureVersionV1
	if nonce != "" {
		version = SignatureVersionV2
	}

	fields := []string{
		version,
		deviceID,
		clientID,
		clientMode,
		role,
		strings.Join(scopes, ","),
		strconv.FormatInt(signedAtMs, 10),
		token,
	}
	if nonce != "" {
		fields = append(fields, nonce)
	}
	return strings.Join(fields, "|")
}
