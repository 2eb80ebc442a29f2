package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
	"github.com/clawlink/clawlink/internal/creds"
	"github.com/clawlink/clawlink/internal/gateway"
	"github.com/clawlink/clawlink/internal/identity"
)

// resolveConfigPath returns the config file path from (in priority order):
// 1. Positional argument
// 2. --config / -c flag
// 3. Default location
func resolveConfigPath(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if f := cmd.Flag("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	if f := cmd.Root().PersistentFlags().Lookup("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	return config.DefaultPath()
}

// newLogger builds the structured logger from the configured level.
func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// buildClient assembles a gateway client from config, stored credentials,
// and the device identity, then starts its connection loop.
func buildClient(cfg *config.Config, logger *slog.Logger) (*gateway.Client, error) {
	ident, err := identity.LoadOrCreate(cfg.Client.StateDir)
	if err != nil {
		return nil, fmt.Errorf("load device identity: %w", err)
	}

	stored, err := creds.NewStore(cfg.Client.StateDir).Load()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	token := stored.Token
	if token == "" {
		token = cfg.Gateway.Token
	}
	fingerprint := stored.TLSFingerprint
	if fingerprint == "" {
		fingerprint = cfg.Gateway.TLSFingerprint
	}

	client := gateway.New(gateway.Options{
		ClientID:        cfg.Client.ID,
		ClientVersion:   version,
		Mode:            cfg.Client.Mode,
		Role:            cfg.Client.Role,
		Scopes:          cfg.Client.Scopes,
		Identity:        ident,
		TLSFingerprint:  fingerprint,
		RequestTimeout:  cfg.Gateway.RequestTimeout.Duration,
		ChatSendTimeout: cfg.Gateway.ChatSendTimeout.Duration,
		Logger:          logger,
	})
	client.Connect(cfg.Gateway.Host, cfg.Gateway.Port, token, cfg.Gateway.UseTLS)
	return client, nil
}

// waitConnected blocks until the client authenticates or the timeout
// elapses. Pairing rejections surface immediately with remediation text.
func waitConnected(ctx context.Context, client *gateway.Client, timeout time.Duration) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("gateway not reachable within %s (state: %s)", timeout, client.State())
		case <-ticker.C:
			if client.IsConnected() {
				return nil
			}
			if client.PairingRequired() {
				return fmt.Errorf("device not paired: approve this device on the gateway (see 'clawlink identity' for its id), then retry")
			}
		}
	}
}
