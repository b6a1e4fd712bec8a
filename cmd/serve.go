package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/udyogmitra/mitra/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, closeApp, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	srvCfg := &api.Config{
		Runner:  a.assistant,
		Catalog: a.catalog,
		Logger:  a.logger,
	}
	if a.store != nil {
		srvCfg.Queries = a.store
		srvCfg.Pinger = a.pool
	}

	srv, err := api.NewServer(srvCfg)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	return srv.Run(ctx, addr)
}
