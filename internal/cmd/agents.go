package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
)

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List agents visible to this client",
		RunE:  runAgents,
	}
}

func runAgents(cmd *cobra.Command, args []string) error {
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

	result, err := client.ListAgents(cmd.Context())
	if err != nil {
		if scope := client.MissingScopeError(); scope != "" {
			return fmt.Errorf("%s: re-pair this device with the operator.admin scope", scope)
		}
		return err
	}

	if len(result.Agents) == 0 {
		fmt.Println("no agents")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\t")
	for _, a := range result.Agents {
		marker := ""
		if a.ID == result.DefaultID {
			marker = "(default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Name, marker)
	}
	return w.Flush()
}
