// Package config handles client configuration loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level client configuration.
type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Client  ClientConfig  `json:"client"`
	Status  StatusConfig  `json:"status"`
}

// GatewayConfig defines the gateway endpoint the client connects to.
type GatewayConfig struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Token  string `json:"token,omitempty"`
	UseTLS bool   `json:"use_tls,omitempty"`
	// TLSFingerprint pins the gateway certificate: lowercase hex SHA-256
	// of the leaf certificate. Empty disables pinning.
	TLSFingerprint string `json:"tls_fingerprint,omitempty"`

	RequestTimeout  Duration `json:"request_timeout,omitempty"`
	ChatSendTimeout Duration `json:"chat_send_timeout,omitempty"`
}

// ClientConfig identifies this installation to the gateway.
type ClientConfig struct {
	ID       string   `json:"id"`
	Mode     string   `json:"mode,omitempty"`
	Role     string   `json:"role,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
	StateDir string   `json:"state_dir,omitempty"`
	LogLevel string   `json:"log_level,omitempty"`
}

// StatusConfig controls the local read-only status HTTP endpoint.
type StatusConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Addr    string `json:"addr,omitempty"`
}

// Duration is a JSON-friendly time.Duration (accepts strings like "30s", "5m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		dur, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = dur
	case float64:
		d.Duration = time.Duration(val) * time.Second
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clawlink.json"
	}
	return filepath.Join(home, ".clawlink", "clawlink.json")
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the config file, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Gateway.Host == "" {
		return fmt.Errorf("gateway.host is required")
	}
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be 1-65535, got %d", c.Gateway.Port)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Client.ID == "" {
		c.Client.ID = "clawlink"
	}
	if c.Client.Mode == "" {
		c.Client.Mode = "backend"
	}
	if c.Client.Role == "" {
		c.Client.Role = "operator"
	}
	if len(c.Client.Scopes) == 0 {
		c.Client.Scopes = []string{"operator.admin"}
	}
	if c.Client.StateDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.Client.StateDir = filepath.Join(home, ".clawlink")
		} else {
			c.Client.StateDir = ".clawlink"
		}
	}
	if c.Client.LogLevel == "" {
		c.Client.LogLevel = "info"
	}
	if c.Gateway.RequestTimeout.Duration == 0 {
		c.Gateway.RequestTimeout.Duration = 15 * time.Second
	}
	if c.Gateway.ChatSendTimeout.Duration == 0 {
		c.Gateway.ChatSendTimeout.Duration = 35 * time.Second
	}
	if c.Status.Addr == "" {
		c.Status.Addr = "127.0.0.1:7465"
	}
}
