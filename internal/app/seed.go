package app

import (
	"context"
	"fmt"

	"sqllab/internal/config"
)

// seedDatabases syncs the configured databases file into the metastore.
// Entries are upserted by name, so repeated syncs are idempotent.
func (a *App) seedDatabases(ctx context.Context) error {
	if a.cfg.DatabasesFile == "" {
		return nil
	}
	if err := a.Services.Databases.SyncFile(ctx, a.cfg.DatabasesFile); err != nil {
		return fmt.Errorf("seed databases: %w", err)
	}
	return nil
}

// WatchDatabases re-syncs the databases file whenever it changes until ctx
// is done. It returns immediately when watching is not enabled. A file that
// fails to load leaves the previous registrations in place.
func (a *App) WatchDatabases(ctx context.Context) error {
	if a.cfg.DatabasesFile == "" || !a.cfg.WatchDatabasesFile {
		return nil
	}
	path := a.cfg.DatabasesFile
	logger := a.logger.With("component", "databases-watch", "path", path)
	logger.Info("watching databases file")
	return config.WatchFile(ctx, path, logger, func() {
		if err := a.Services.Databases.SyncFile(ctx, path); err != nil {
			logger.Error("reload databases file failed", "error", err)
			return
		}
		logger.Info("databases file reloaded")
	})
}
