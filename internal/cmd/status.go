package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
	"github.com/clawlink/clawlink/internal/statusapi"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running clawlink instance",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath(cmd, nil))
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	if !cfg.Status.Enabled {
		return fmt.Errorf("status api disabled in config; enable status.enabled to use this command")
	}

	status, err := queryStatus(cfg.Status.Addr)
	if err != nil {
		fmt.Fprintln(os.Stdout, "Status:  not running (or status api unreachable)")
		return nil
	}

	_, _ = fmt.Fprintf(os.Stdout, "Status:   running\n")
	_, _ = fmt.Fprintf(os.Stdout, "State:    %s\n", status.State)
	_, _ = fmt.Fprintf(os.Stdout, "Version:  %s\n", status.Version)
	_, _ = fmt.Fprintf(os.Stdout, "Uptime:   %s\n", time.Since(status.StartedAt).Round(time.Second))
	if status.MainSessionKey != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Session:  %s\n", status.MainSessionKey)
	}
	if status.PairingRequired {
		_, _ = fmt.Fprintf(os.Stdout, "Pairing:  required — approve this device on the gateway\n")
	}
	if status.MissingScope != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Scope:    %s\n", status.MissingScope)
	}
	return nil
}

func queryStatus(addr string) (*statusapi.Status, error) {
	httpClient := &http.Client{Timeout: 3 * time.Second}
	resp, err := httpClient.Get("http://" + addr + "/status")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var status statusapi.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
