package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	httpserver "github.com/fyrsmithlabs/lexisum/internal/http"
	"github.com/fyrsmithlabs/lexisum/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveFlags struct {
	host string
	port int
}

func newServeCmd(c *cli) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the summarization HTTP server",
		Long: `Run the HTTP server exposing POST /api/v1/summarize and POST /api/v1/weights,
plus /health and /metrics. The server shuts down gracefully on SIGINT or
SIGTERM.

Examples:
  lexisum serve
  lexisum serve --host 0.0.0.0 --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, c, f)
		},
	}

	cmd.Flags().StringVar(&f.host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&f.port, "port", 0, "listen port (overrides server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, c *cli, f *serveFlags) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version),
		telemetry.WithLogger(logger.Zap()))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}()

	svc, err := newSummarizer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	logger.Info(ctx, "starting lexisum",
		zap.String("version", version),
		zap.String("similarity", svc.Mode()),
		zap.Int("startup_warnings", len(svc.Warnings())),
		zap.Bool("telemetry_degraded", tel.Health().Degraded),
	)

	srv, err := httpserver.NewServer(svc, logger.Zap(), httpserver.ConfigFrom(cfg.Server))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info(ctx, "server shutdown complete")
	return nil
}
