package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sqllab/internal/api"
	"sqllab/internal/app"
	"sqllab/internal/config"
	"sqllab/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(load configLoader) *cobra.Command {
	var (
		noWorker bool
		listen   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, load, func(ctx context.Context, a *app.App, cfg *config.Config, logger *slog.Logger) error {
				if noWorker {
					cfg.Worker.EmbedInServe = false
				}
				if err := cfg.RequireSharedResults(!cfg.Worker.EmbedInServe); err != nil {
					return err
				}
				if addr, ok := flagOverride(cmd.Flags(), "listen"); ok {
					cfg.ListenAddr = addr
				}
				return serve(ctx, a, cfg, logger)
			})
		},
	}
	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "do not run async workers in this process")
	cmd.Flags().StringVar(&listen, "listen", ":8080", "HTTP listen address (overrides LISTEN_ADDR)")
	return cmd
}

func serve(ctx context.Context, a *app.App, cfg *config.Config, logger *slog.Logger) error {
	validator, err := middleware.NewValidator(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	handler, err := api.NewRouter(gctx, api.RouterDeps{
		Handler: api.NewHandler(a.Services.Query, a.Services.Databases, logger),
		Auth:    middleware.NewAuthenticator(validator, cfg.Auth, logger),
		Config:  cfg,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	sched := a.NewMaintenance()
	if err := sched.Start(cfg.MaintenanceSchedule); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		tls := cfg.TLSCertFile != ""
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "url", baseURL(cfg.ListenAddr, tls))
		var err error
		if tls {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP API")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return a.WatchDatabases(gctx) })

	if cfg.Worker.EmbedInServe && cfg.FeatureAsyncQueue {
		w, err := a.NewWorker()
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}

// baseURL is the URL logged at startup. Wildcard and empty hosts are shown
// as localhost.
func baseURL(listenAddr string, tls bool) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return scheme + "://localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return scheme + "://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return scheme + "://" + net.JoinHostPort(host, port)
}
