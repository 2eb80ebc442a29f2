// Package creds persists gateway credentials (bearer token, TLS
// certificate pin) under the client state directory, separate from the
// main config file so `clawlink init` can rewrite config without touching
// stored secrets.
package creds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const fileName = "credentials.json"

// Credentials holds the persisted secrets for one gateway.
type Credentials struct {
	Token string `json:"token,omitempty"`
	// TLSFingerprint is the lowercase hex SHA-256 of the gateway's leaf
	// certificate, recorded on first trusted connection.
	TLSFingerprint string `json:"tls_fingerprint,omitempty"`
}

// Store reads and writes credentials in a state directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at stateDir.
func NewStore(stateDir string) *Store {
	return &Store{dir: stateDir}
}

// Load reads the stored credentials. A missing file is not an error and
// yields empty credentials.
func (s *Store) Load() (Credentials, error) {
	var c Credentials
	data, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse credentials: %w", err)
	}
	return c, nil
}

// Save writes the credentials with owner-only permissions.
func (s *Store) Save(c Credentials) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, fileName), append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
