package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawlink/clawlink/internal/config"
	"github.com/clawlink/clawlink/internal/statusapi"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [config-file]",
		Short: "Run the gateway link headless until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath := resolveConfigPath(cmd, args)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	logger := newLogger(cfg.Client.LogLevel)

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	var srv *statusapi.Server
	if cfg.Status.Enabled {
		srv = statusapi.NewServer(client, version, logger)
		go func() {
			if err := srv.ListenAndServe(cfg.Status.Addr); err != nil {
				logger.Error("status api stopped", "error", err)
			}
		}()
	}

	logger.Info("clawlink starting",
		"version", version,
		"config", configPath,
		"gateway", fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received signal, shutting down", "signal", sig.String())

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("status api shutdown", "error", err)
		}
	}
	return nil
}
