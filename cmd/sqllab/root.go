package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sqllab/internal/app"
	"sqllab/internal/config"
	internaldb "sqllab/internal/db"
)

const readPoolSize = 4

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "sqllab",
		Short:         "SQL Lab query execution service",
		Long:          "Runs ad-hoc SQL against registered databases, synchronously or on background workers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	load := func() (*config.Config, *slog.Logger, error) {
		return loadConfig(envFile)
	}
	rootCmd.AddCommand(
		newServeCmd(load),
		newWorkerCmd(load),
		newMigrateCmd(load),
		newSyncDatabasesCmd(load),
	)
	return rootCmd
}

type configLoader func() (*config.Config, *slog.Logger, error)

// loadConfig reads envFile and the environment and builds the JSON logger.
// Warnings collected while loading are logged once the logger exists.
func loadConfig(envFile string) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

// openMetastore opens the metastore pools and applies pending migrations.
func openMetastore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (writeDB, readDB *sql.DB, err error) {
	writeDB, readDB, err = internaldb.OpenSQLitePair(cfg.MetaDBPath, readPoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open metastore: %w", err)
	}
	if err := internaldb.RunMigrations(ctx, writeDB); err != nil {
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, nil, fmt.Errorf("migrate metastore: %w", err)
	}
	logger.Info("metastore ready", "path", cfg.MetaDBPath)
	return writeDB, readDB, nil
}

// withApp opens the metastore, wires the application, and runs fn.
func withApp(ctx context.Context, load configLoader, fn func(ctx context.Context, a *app.App, cfg *config.Config, logger *slog.Logger) error) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}
	writeDB, readDB, err := openMetastore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer writeDB.Close() //nolint:errcheck
	defer readDB.Close()  //nolint:errcheck

	a, err := app.New(ctx, app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()
	return fn(ctx, a, cfg, logger)
}

// flagOverride returns the flag's value when it was set on the command line,
// so flags win over the environment only when given explicitly.
func flagOverride(fs *pflag.FlagSet, name string) (string, bool) {
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}
