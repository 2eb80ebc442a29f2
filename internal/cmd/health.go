package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check gateway liveness",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath(cmd, nil))
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	client, err := buildClient(cfg, newLogger("error"))
	if err != nil {
		return err
	}
	defer client.Close()

	if err := waitConnected(cmd.Context(), client, 15*time.Second); err != nil {
		return err
	}

	ok, err := client.CheckHealth(cmd.Context())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("gateway reports unhealthy")
	}
	fmt.Println("gateway healthy")
	return nil
}
