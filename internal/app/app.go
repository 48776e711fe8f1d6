// Package app provides application-level wiring and dependency injection
// for the SQL Lab service.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"sqllab/internal/config"
	"sqllab/internal/db/crypto"
	"sqllab/internal/db/repository"
	"sqllab/internal/engine"
	"sqllab/internal/maintenance"
	"sqllab/internal/resultscache"
	"sqllab/internal/service/database"
	"sqllab/internal/service/query"
	"sqllab/internal/service/validation"
	"sqllab/internal/worker"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups the services the API handler needs.
type Services struct {
	Query      *query.QueryService
	Databases  *database.Service
	Validation *validation.Service
}

// App holds the fully-wired application.
type App struct {
	Services Services

	Registry *engine.Registry
	Results  resultscache.Backend
	Queries  *repository.QueryRepo
	Tasks    *repository.TaskQueueRepo

	cfg    *config.Config
	logger *slog.Logger
}

// New wires repositories, the engine registry, the results cache, and the
// services from deps. The databases file, when configured, is synced before
// New returns.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	// === Repositories ===
	queryRepo := repository.NewQueryRepo(deps.WriteDB, deps.ReadDB)
	databaseRepo := repository.NewDatabaseRepo(deps.WriteDB, encryptor)
	taskRepo := repository.NewTaskQueueRepo(deps.WriteDB)

	// === Engine ===
	registry := engine.NewRegistry(engine.OpenDriver, 0, logger)
	executor := engine.NewExecutor(registry, cfg.SQLMaxRow, logger)

	// === Results cache ===
	results, err := resultscache.New(ctx, cfg.Results, logger.With("component", "results-cache"))
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("results cache: %w", err)
	}

	// === Services ===
	validationSvc, err := validation.NewService(cfg.ValidatorsByEngine, executor, cfg.ValidationTimeout, logger)
	if err != nil {
		_ = results.Close()
		_ = registry.Close()
		return nil, fmt.Errorf("validators: %w", err)
	}

	querySvc := query.NewQueryService(query.Deps{
		Queries:   queryRepo,
		Databases: databaseRepo,
		Executor:  executor,
		Results:   results,
		Tasks:     taskRepo,
		Validator: validationSvc,
		Config:    cfg,
		Logger:    logger,
	})
	databaseSvc := database.NewService(databaseRepo, registry, logger)

	a := &App{
		Services: Services{
			Query:      querySvc,
			Databases:  databaseSvc,
			Validation: validationSvc,
		},
		Registry: registry,
		Results:  results,
		Queries:  queryRepo,
		Tasks:    taskRepo,
		cfg:      cfg,
		logger:   logger,
	}

	if err := a.seedDatabases(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewWorker builds a task consumer executing async queries.
func (a *App) NewWorker() (*worker.Worker, error) {
	return worker.New(a.Tasks, a.Services.Query, a.cfg.Worker, a.logger)
}

// NewMaintenance builds the housekeeping scheduler. Records untouched for
// longer than the async time limit plus one lease are considered abandoned.
func (a *App) NewMaintenance() *maintenance.Scheduler {
	staleAfter := a.cfg.AsyncTimeLimit + a.cfg.Worker.Lease
	return maintenance.NewScheduler(a.Queries, a.Results, a.Tasks, staleAfter, a.logger)
}

// Close releases connection pools and the results cache.
func (a *App) Close() error {
	return errors.Join(a.Results.Close(), a.Registry.Close())
}
