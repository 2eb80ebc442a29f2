package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
	"github.com/clawlink/clawlink/internal/tui/chat"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive chat session with the gateway's main session",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath(cmd, nil))
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	logger := newLogger("error") // keep the TTY clean for the TUI

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := waitConnected(cmd.Context(), client, 15*time.Second); err != nil {
		return err
	}

	return chat.Run(client)
}
