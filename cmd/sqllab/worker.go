package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sqllab/internal/app"
	"sqllab/internal/config"
	"sqllab/internal/domain"
)

func newWorkerCmd(load configLoader) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run async query workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, load, func(ctx context.Context, a *app.App, cfg *config.Config, logger *slog.Logger) error {
				if !cfg.FeatureAsyncQueue {
					return domain.ErrNotImplemented("async queries are disabled (FEATURE_ASYNC_QUEUE=false)")
				}
				if err := cfg.RequireSharedResults(true); err != nil {
					return err
				}
				if concurrency > 0 {
					cfg.Worker.Concurrency = concurrency
				}
				w, err := a.NewWorker()
				if err != nil {
					return err
				}
				return w.Run(ctx)
			})
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "tasks executed in parallel (overrides WORKER_CONCURRENCY)")
	return cmd
}
