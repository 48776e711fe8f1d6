// Package database manages registrations of the external databases that
// queries run against.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"sqllab/internal/config"
	"sqllab/internal/domain"
)

// PoolEvictor drops a cached connection pool after a registration changes.
type PoolEvictor interface {
	Evict(id int64)
}

// Service provides database registration operations.
type Service struct {
	repo   domain.DatabaseRepository
	pools  PoolEvictor
	logger *slog.Logger
}

// NewService creates a Service. pools may be nil.
func NewService(repo domain.DatabaseRepository, pools PoolEvictor, logger *slog.Logger) *Service {
	return &Service{repo: repo, pools: pools, logger: logger.With("component", "databases")}
}

// List returns a page of databases. Non-admin callers see only databases
// exposed in SQL Lab.
func (s *Service) List(ctx context.Context, caller domain.Caller, page domain.PageRequest) ([]domain.Database, int64, error) {
	dbs, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	if caller.IsAdmin {
		return dbs, total, nil
	}
	visible := dbs[:0]
	for _, d := range dbs {
		if d.ExposeInSQLLab {
			visible = append(visible, d)
		}
	}
	return visible, total - int64(len(dbs)-len(visible)), nil
}

// Register creates a database registration. Admin only.
func (s *Service) Register(ctx context.Context, caller domain.Caller, d *domain.Database) (*domain.Database, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrAccessDenied("only administrators may register databases")
	}
	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.logger.Info("database registered", "database", created.Name, "engine", created.Engine, "by", caller.UserID)
	return created, nil
}

// Sync upserts every entry of the databases file. Entries are applied in
// order; the first failure stops the sync.
func (s *Service) Sync(ctx context.Context, entries []config.DatabaseEntry) error {
	for _, e := range entries {
		d := e.ToDomain()
		saved, err := s.repo.Upsert(ctx, &d)
		if err != nil {
			return fmt.Errorf("sync database %q: %w", e.Name, err)
		}
		if s.pools != nil {
			s.pools.Evict(saved.ID)
		}
	}
	s.logger.Info("databases synced", "count", len(entries))
	return nil
}

// SyncFile loads path and syncs its entries.
func (s *Service) SyncFile(ctx context.Context, path string) error {
	entries, err := config.LoadDatabasesFile(path)
	if err != nil {
		return err
	}
	return s.Sync(ctx, entries)
}
