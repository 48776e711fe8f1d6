package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sqllab/internal/db/crypto"
	"sqllab/internal/domain"
)

var _ domain.DatabaseRepository = (*DatabaseRepo)(nil)

const databaseColumns = `id, name, engine, dsn_encrypted, expose_in_sqllab, allow_run_async,
	allow_ctas, allow_dml, force_ctas_schema, created_at`

// DatabaseRepo stores external database registrations. Connection strings
// are sealed with the Encryptor, bound to the database name.
type DatabaseRepo struct {
	db  *sql.DB
	enc *crypto.Encryptor
}

// NewDatabaseRepo creates a new DatabaseRepo.
func NewDatabaseRepo(db *sql.DB, enc *crypto.Encryptor) *DatabaseRepo {
	return &DatabaseRepo{db: db, enc: enc}
}

// Create registers a new database.
func (r *DatabaseRepo) Create(ctx context.Context, d *domain.Database) (*domain.Database, error) {
	if err := validateDatabase(d); err != nil {
		return nil, err
	}
	sealed, err := r.enc.Seal(d.Name, d.DSN)
	if err != nil {
		return nil, fmt.Errorf("seal dsn: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO databases (name, engine, dsn_encrypted, expose_in_sqllab, allow_run_async,
			allow_ctas, allow_dml, force_ctas_schema, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.Name, d.Engine, sealed, boolToInt(d.ExposeInSQLLab), boolToInt(d.AllowRunAsync),
		boolToInt(d.AllowCTAS), boolToInt(d.AllowDML), nullString(d.ForceCTASSchema), toMillis(time.Now()))
	if err != nil {
		var conflict *domain.ConflictError
		if mapped := mapDBError(err); errors.As(mapped, &conflict) {
			return nil, domain.ErrConflict("database %q already exists", d.Name)
		}
		return nil, fmt.Errorf("insert database: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Upsert creates the database or updates the registration with the same name.
func (r *DatabaseRepo) Upsert(ctx context.Context, d *domain.Database) (*domain.Database, error) {
	if err := validateDatabase(d); err != nil {
		return nil, err
	}
	sealed, err := r.enc.Seal(d.Name, d.DSN)
	if err != nil {
		return nil, fmt.Errorf("seal dsn: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO databases (name, engine, dsn_encrypted, expose_in_sqllab, allow_run_async,
			allow_ctas, allow_dml, force_ctas_schema, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			engine = excluded.engine,
			dsn_encrypted = excluded.dsn_encrypted,
			expose_in_sqllab = excluded.expose_in_sqllab,
			allow_run_async = excluded.allow_run_async,
			allow_ctas = excluded.allow_ctas,
			allow_dml = excluded.allow_dml,
			force_ctas_schema = excluded.force_ctas_schema
	`, d.Name, d.Engine, sealed, boolToInt(d.ExposeInSQLLab), boolToInt(d.AllowRunAsync),
		boolToInt(d.AllowCTAS), boolToInt(d.AllowDML), nullString(d.ForceCTASSchema), toMillis(time.Now()))
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByName(ctx, d.Name)
}

// GetByID returns a database by id.
func (r *DatabaseRepo) GetByID(ctx context.Context, id int64) (*domain.Database, error) {
	d, err := r.getOne(ctx, `SELECT `+databaseColumns+` FROM databases WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundAs(err, "database %d not found", id)
	}
	return d, nil
}

// GetByName returns a database by its unique name.
func (r *DatabaseRepo) GetByName(ctx context.Context, name string) (*domain.Database, error) {
	d, err := r.getOne(ctx, `SELECT `+databaseColumns+` FROM databases WHERE name = ?`, name)
	if err != nil {
		return nil, notFoundAs(err, "database %q not found", name)
	}
	return d, nil
}

// List returns a page of databases ordered by name.
func (r *DatabaseRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Database, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM databases`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count databases: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+databaseColumns+` FROM databases
		ORDER BY name LIMIT ? OFFSET ?`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Database
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *DatabaseRepo) getOne(ctx context.Context, stmt string, args ...interface{}) (*domain.Database, error) {
	d, err := r.scan(r.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, mapDBError(err)
	}
	return d, nil
}

func (r *DatabaseRepo) scan(row rowScanner) (*domain.Database, error) {
	var (
		d                                 domain.Database
		sealed                            string
		expose, async, ctas, dml, created int64
		forceSchema                       sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Engine, &sealed, &expose, &async,
		&ctas, &dml, &forceSchema, &created); err != nil {
		return nil, err
	}
	dsn, err := r.enc.Open(d.Name, sealed)
	if err != nil {
		return nil, fmt.Errorf("open dsn for database %q: %w", d.Name, err)
	}
	d.DSN = dsn
	d.ExposeInSQLLab = expose != 0
	d.AllowRunAsync = async != 0
	d.AllowCTAS = ctas != 0
	d.AllowDML = dml != 0
	d.ForceCTASSchema = stringPtr(forceSchema)
	d.CreatedAt = fromMillis(created)
	return &d, nil
}

func validateDatabase(d *domain.Database) error {
	if d == nil {
		return domain.ErrValidation("database is required")
	}
	if d.Name == "" {
		return domain.ErrValidation("database name is required")
	}
	switch d.Engine {
	case domain.EngineDuckDB, domain.EngineSQLite, domain.EnginePostgres:
	default:
		return domain.ErrValidation("unsupported database engine %q", d.Engine)
	}
	if d.Engine == domain.EnginePostgres && d.DSN == "" {
		return domain.ErrValidation("a connection string is required for %s", d.Engine)
	}
	return nil
}
