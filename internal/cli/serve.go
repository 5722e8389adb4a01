package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/specgest/internal/api"
	"github.com/dgallion1/specgest/internal/config"
	"github.com/dgallion1/specgest/internal/directive"
	"github.com/dgallion1/specgest/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the HTTP API. Documents posted to /api/parse are parsed
synchronously; /api/parse/batch queues them on the worker pool and their
results are polled from /api/jobs/{id}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			log, err := newLogger(cmd.OutOrStdout(), *cfg, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *cfg, log)
		},
	}

	cmd.Flags().String("port", "", "listen port (default 8090)")
	cmd.Flags().String("api-key", "", "bearer token required on /api routes")
	cmd.Flags().Int("worker-count", 0, "number of background parse workers")
	cmd.Flags().Int("max-queue-size", 0, "queued jobs accepted before rejecting")
	cmd.Flags().Int64("max-upload-bytes", 0, "largest accepted upload")
	cmd.Flags().Duration("job-ttl", 0, "how long finished jobs stay pollable")

	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight
// requests and stops the workers.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	registry := directive.DefaultRegistry()

	orch := pipeline.NewOrchestrator(cfg, registry, log)
	orch.Start(ctx)
	defer orch.Stop()

	srv := api.NewServer(orch, registry, log, cfg)

	eg, egctx := errgroup.WithContext(ctx)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		log.Info("starting specgest", "port", cfg.Port, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
