package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chatshot/internal/daemon"
	"chatshot/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP classification API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			deps, err := buildPipeline(signalCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			d, err := daemon.New(cfg, deps.pipeline, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if err := d.Run(signalCtx); err != nil {
				logger.Error("server exited", logging.Error(err))
				return err
			}
			logger.Info("chatshot server shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	return cmd
}
