package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the main session transcript",
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 20, "maximum number of messages")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	limit, _ := cmd.Flags().GetInt("limit")
	messages, err := client.ChatHistory(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		fmt.Println("no messages")
		return nil
	}

	for _, m := range messages {
		ts := ""
		if m.Timestamp > 0 {
			ts = time.UnixMilli(m.Timestamp).Format("15:04:05") + " "
		}
		fmt.Printf("%s[%s] %s\n", ts, m.Role, m.Content)
	}
	return nil
}
