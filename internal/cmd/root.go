// Package cmd implements the clawlink CLI command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd creates the root cobra command for clawlink.
func NewRootCmd(v string) *cobra.Command {
	version = v

	root := &cobra.Command{
		Use:           "clawlink",
		Short:         "clawlink — persistent gateway client",
		Long:          "clawlink keeps a device-authenticated WebSocket link to an OpenClaw-style gateway and exposes chat, agents, and health over it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newAgentsCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newHealthCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newIdentityCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringP("config", "c", "", "path to config file")

	return root
}
