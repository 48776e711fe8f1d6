// Package engine adapts registered external databases to database/sql and
// runs SQL against them.
package engine

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver

	"sqllab/internal/domain"
)

// Opener opens a connection pool for an engine and DSN.
type Opener func(engine, dsn string) (*sql.DB, error)

// driverNames maps engines to database/sql driver names.
var driverNames = map[string]string{
	domain.EngineDuckDB:   "duckdb",
	domain.EngineSQLite:   "sqlite3",
	domain.EnginePostgres: "pgx",
}

// OpenDriver is the default Opener.
func OpenDriver(engine, dsn string) (*sql.DB, error) {
	name, ok := driverNames[engine]
	if !ok {
		return nil, domain.ErrValidation("unsupported engine %q", engine)
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", engine, err)
	}
	return db, nil
}

type pool struct {
	db          *sql.DB
	fingerprint string
}

// Registry caches one connection pool per registered database. A pool is
// reopened when the database's engine or DSN changes.
type Registry struct {
	mu      sync.RWMutex
	pools   map[int64]*pool
	open    Opener
	maxOpen int
	logger  *slog.Logger
}

// NewRegistry creates a Registry. maxOpen caps connections per pool; zero
// leaves database/sql's default.
func NewRegistry(open Opener, maxOpen int, logger *slog.Logger) *Registry {
	if open == nil {
		open = OpenDriver
	}
	return &Registry{
		pools:   make(map[int64]*pool),
		open:    open,
		maxOpen: maxOpen,
		logger:  logger.With("component", "engine-registry"),
	}
}

// DB returns the pool for database, opening it on first use. Uses
// double-checked locking to minimise lock contention.
func (r *Registry) DB(database *domain.Database) (*sql.DB, error) {
	fp := database.Engine + "\x00" + database.DSN

	r.mu.RLock()
	if p, ok := r.pools[database.ID]; ok && p.fingerprint == fp {
		r.mu.RUnlock()
		return p.db, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if p, ok := r.pools[database.ID]; ok {
		if p.fingerprint == fp {
			return p.db, nil
		}
		r.logger.Info("database changed, reopening pool", "database", database.Name)
		_ = p.db.Close()
		delete(r.pools, database.ID)
	}

	db, err := r.open(database.Engine, database.DSN)
	if err != nil {
		return nil, err
	}
	if r.maxOpen > 0 {
		db.SetMaxOpenConns(r.maxOpen)
	}
	r.pools[database.ID] = &pool{db: db, fingerprint: fp}
	return db, nil
}

// Evict closes and forgets the pool for a database id.
func (r *Registry) Evict(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pools[id]; ok {
		_ = p.db.Close()
		delete(r.pools, id)
	}
}

// Close closes every pool.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for id, p := range r.pools {
		if err := p.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.pools, id)
	}
	return firstErr
}
