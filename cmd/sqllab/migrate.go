package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"sqllab/internal/app"
	"sqllab/internal/config"
)

var errNoDatabasesFile = errors.New("no databases file: pass --file or set DATABASES_FILE")

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending metastore migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			writeDB, readDB, err := openMetastore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			_ = readDB.Close()
			return writeDB.Close()
		},
	}
}

func newSyncDatabasesCmd(load configLoader) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "sync-databases",
		Short: "Register the databases listed in a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), load, func(ctx context.Context, a *app.App, cfg *config.Config, logger *slog.Logger) error {
				if file == "" {
					file = cfg.DatabasesFile
				}
				if file == "" {
					return errNoDatabasesFile
				}
				return a.Services.Databases.SyncFile(ctx, file)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "databases file (defaults to DATABASES_FILE)")
	return cmd
}
