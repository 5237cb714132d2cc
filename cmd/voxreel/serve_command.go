package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"voxreel/internal/logging"
	"voxreel/internal/pipeline"
	"voxreel/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API for the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(true)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bind") {
				cfg.Server.Bind = strings.TrimSpace(bind)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			profile := ctx.hardwareProfile(runCtx, logger)
			reportPreflight(runCtx, cfg, logger)

			orch, err := pipeline.NewFromConfig(cfg, profile, nil, logger)
			if err != nil {
				return errors.New(pipeline.StatusMessage(err))
			}
			defer func() {
				if err := orch.Close(); err != nil {
					logger.Debug("release models failed", logging.Error(err))
				}
			}()

			defaults, err := pipeline.DefaultRequest(cfg)
			if err != nil {
				return err
			}
			srv, err := server.New(orch, server.Options{
				Bind:           cfg.Server.Bind,
				UploadDir:      filepath.Join(cfg.Paths.WorkDir, "uploads"),
				MaxUploadBytes: int64(cfg.Server.MaxUploadMiB) << 20,
				Defaults:       defaults,
			}, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", cfg.Server.Bind)
			if err := srv.ListenAndServe(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config)")
	return cmd
}
