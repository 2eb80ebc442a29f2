package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/cli"
	"github.com/clawlink/clawlink/internal/config"
	"github.com/clawlink/clawlink/internal/creds"
	"github.com/clawlink/clawlink/internal/identity"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactive setup: generate config, credentials, and device identity",
		RunE:  runInit,
	}
	cmd.Flags().StringP("output", "o", "", "output config file path (default: ~/.clawlink/clawlink.json)")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = resolveConfigPath(cmd, nil)
	}

	p := cli.DefaultPrompter()

	fmt.Println("clawlink setup")
	fmt.Println()

	cfg := &config.Config{}
	cfg.Gateway.Host = p.Ask("Gateway host", "127.0.0.1")
	cfg.Gateway.Port = p.AskPort("Gateway port", 18789)
	cfg.Gateway.UseTLS = p.Confirm("Use TLS?", false)
	if cfg.Gateway.UseTLS {
		cfg.Gateway.TLSFingerprint = p.AskFingerprint("TLS certificate fingerprint (sha256, empty to skip pinning)")
	}
	cfg.Client.ID = p.Ask("Client id", "clawlink")

	token := p.AskSecret("Gateway token (empty for device-only auth)")

	cfg.Status.Enabled = p.Confirm("Enable local status API?", false)
	if cfg.Status.Enabled {
		cfg.Status.Addr = p.Ask("Status API address", "127.0.0.1:7465")
	}

	if err := config.Save(output, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)

	// Reload so defaults (state dir, timeouts) are applied.
	cfg, err := config.Load(output)
	if err != nil {
		return err
	}

	if token != "" {
		store := creds.NewStore(cfg.Client.StateDir)
		if err := store.Save(creds.Credentials{Token: token, TLSFingerprint: cfg.Gateway.TLSFingerprint}); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		fmt.Println("stored gateway token")
	}

	ident, err := identity.LoadOrCreate(cfg.Client.StateDir)
	if err != nil {
		return fmt.Errorf("create device identity: %w", err)
	}

	fmt.Println()
	fmt.Printf("device id: %s\n", ident.DeviceID())
	fmt.Fprintln(os.Stdout, "pair this device on the gateway, then start with 'clawlink run'")
	return nil
}
