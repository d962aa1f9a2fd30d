package main

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/jobscout/internal/app"
	"github.com/honeycarbs/jobscout/pkg/shutdown"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve job_search and friends over MCP streamable HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, cleanup, err := app.Initialize(ctx, cfg, app.Transport{})
			if err != nil {
				return err
			}
			defer cleanup()
			defer func() { _ = a.Logger.Sync() }()

			srv, err := a.MCPServer(version)
			if err != nil {
				return err
			}

			go func() {
				_ = shutdown.Graceful(ctx,
					[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
					shutdownTimeout,
					a.Logger,
					srv,
				)
			}()

			a.Logger.Info("MCP server initialized and starting", "addr", cfg.Server.Addr(), "version", version)

			if err := srv.Run(); err != nil {
				a.Logger.Error("MCP server exited with error", "err", err)
				return err
			}
			a.Logger.Info("MCP server stopped")
			return nil
		},
	}
}
