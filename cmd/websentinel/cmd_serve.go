package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/artifacts"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/config"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/orchestrator"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		configPath   string
		host         string
		port         int
		artifactsDir string
		modelID      string
		mock         bool
		origins      []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the website testing HTTP API",
		Long: `Start the HTTP API for executing and inspecting website tests.

Tasks run in the background; poll /task-status/{id} to follow progress and
fetch /task-results/{id} once a task finishes. The server binds to loopback
by default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath,
				config.WithHost(host),
				config.WithPort(port),
				config.WithArtifactsDir(artifactsDir),
				config.WithModelID(modelID),
				config.WithAllowedOrigins(origins),
			)
			if err != nil {
				return err
			}

			arts, err := artifacts.NewStore(cfg.ArtifactsDir())
			if err != nil {
				return fmt.Errorf("failed to prepare artifacts directory: %w", err)
			}

			orch, err := orchestrator.New(orchestrator.Options{
				Engine:    newEngine(mock, cfg.ModelID()),
				Planner:   newPlanner(mock, cfg.ModelID()),
				Artifacts: arts,
				Timeout:   cfg.TaskTimeout(),
				ModelID:   cfg.ModelID(),
			})
			if err != nil {
				return err
			}

			srv, err := webserver.New(webserver.Config{
				Host:           cfg.Host(),
				Port:           cfg.Port(),
				ScreenshotsDir: arts.ScreenshotsDir,
				AllowedOrigins: cfg.AllowedOrigins(),
			}, orch)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			serveErr := srv.ListenAndServe(ctx)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := orch.Shutdown(shutdownCtx); err != nil {
				slog.Warn("orchestrator shutdown error", "error", err)
			}

			return serveErr
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "websentinel.yaml", "Path to the YAML config file")
	cmd.Flags().StringVar(&host, "host", "", "Listen host (default: 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default: 8000)")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "", "Directory for logs and screenshots (default: logs)")
	cmd.Flags().StringVar(&modelID, "model", "", "Model to use for automation and analysis")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use the mock agent engine instead of Copilot")
	cmd.Flags().StringArrayVar(&origins, "allow-origin", nil, "CORS origin to allow (can be repeated)")

	return cmd
}
