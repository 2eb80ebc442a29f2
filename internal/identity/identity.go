// Package identity manages the device's long-lived ed25519 signing keypair.
// The keypair is generated once per installation and persisted under the
// state directory; the device identifier is derived from the public key.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

const (
	privateKeyFile = "device-key"
	publicKeyFile  = "device-key.pub"
)

// Identity is a loaded device identity. Immutable after creation.
type Identity struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// LoadOrCreate loads the device keypair from stateDir, generating and
// persisting a fresh one when none exists. An existing key is never
// rotated: rotation would invalidate the device's pairing with every
// gateway it has been approved on. A key file that exists but cannot be
// read or has the wrong size is an error, not a trigger to regenerate.
func LoadOrCreate(stateDir string) (*Identity, error) {
	id, err := Load(stateDir)
	if err == nil {
		return id, nil
	}

	privatePath := filepath.Join(stateDir, privateKeyFile)
	if _, statErr := os.Stat(privatePath); statErr == nil {
		// File exists but couldn't be loaded: corruption or bad size.
		return nil, err
	}

	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating device keypair: %w", err)
	}

	if err := save(stateDir, public, private); err != nil {
		return nil, err
	}

	return &Identity{public: public, private: private}, nil
}

// Load reads an existing keypair from stateDir.
func Load(stateDir string) (*Identity, error) {
	privateBytes, err := os.ReadFile(filepath.Join(stateDir, privateKeyFile))
	if err != nil {
		return nil, fmt.Errorf("reading device private key: %w", err)
	}
	if len(privateBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("device private key has %d bytes, want %d", len(privateBytes), ed25519.PrivateKeySize)
	}

	publicBytes, err := os.ReadFile(filepath.Join(stateDir, publicKeyFile))
	if err != nil {
		return nil, fmt.Errorf("reading device public key: %w", err)
	}
	if len(publicBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("device public key has %d bytes, want %d", len(publicBytes), ed25519.PublicKeySize)
	}

	return &Identity{
		public:  ed25519.PublicKey(publicBytes),
		private: ed25519.PrivateKey(privateBytes),
	}, nil
}

func save(stateDir string, public ed25519.PublicKey, private ed25519.PrivateKey) error {
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, privateKeyFile), private, 0600); err != nil {
		return fmt.Errorf("writing device private key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, publicKeyFile), public, 0644); err != nil {
		return fmt.Errorf("writing device public key: %w", err)
	}
	return nil
}

// DeviceID returns the stable device identifier: lowercase hex of the
// SHA-256 digest of the raw 32-byte public key. It changes if and only if
// the key changes.
func (i *Identity) DeviceID() string {
	sum := sha256.Sum256(i.public)
	return hex.EncodeToString(sum[:])
}

// PublicKey returns the raw public key encoded for transport: base64url
// without padding.
func (i *Identity) PublicKey() string {
	return base64.RawURLEncoding.EncodeToString(i.public)
}

// Sign produces a deterministic ed25519 signature over payload, encoded
// base64url without padding. Callers canonicalize the payload first.
func (i *Identity) Sign(payload []byte) string {
	sig := ed25519.Sign(i.private, payload)
	return base64.RawURLEncoding.EncodeToString(sig)
}
