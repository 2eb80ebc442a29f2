package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
	"github.com/clawlink/clawlink/internal/identity"
)

func newIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Print this device's id and public key",
		RunE:  runIdentity,
	}
}

func runIdentity(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath(cmd, nil))
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	ident, err := identity.LoadOrCreate(cfg.Client.StateDir)
	if err != nil {
		return fmt.Errorf("load device identity: %w", err)
	}

	fmt.Printf("device id:  %s\n", ident.DeviceID())
	fmt.Printf("public key: %s\n", ident.PublicKey())
	return nil
}
