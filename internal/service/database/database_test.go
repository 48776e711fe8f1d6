package database

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/config"
	"sqllab/internal/db"
	"sqllab/internal/db/crypto"
	"sqllab/internal/db/repository"
	"sqllab/internal/domain"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var (
	admin = domain.Caller{UserID: "root", Username: "root", IsAdmin: true}
	alice = domain.Caller{UserID: "alice", Username: "alice"}
)

type recordingEvictor struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recordingEvictor) Evict(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func setup(t *testing.T) (*Service, *repository.DatabaseRepo, *recordingEvictor) {
	t.Helper()
	writeDB, _ := db.OpenTestSQLite(t)
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	require.NoError(t, err)
	repo := repository.NewDatabaseRepo(writeDB, enc)
	evictor := &recordingEvictor{}
	return NewService(repo, evictor, slog.New(slog.NewTextHandler(io.Discard, nil))), repo, evictor
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := setup(t)

	_, err := svc.Register(ctx, alice, &domain.Database{Name: "warehouse", Engine: domain.EngineDuckDB})
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	created, err := svc.Register(ctx, admin, &domain.Database{Name: "warehouse", Engine: domain.EngineDuckDB, ExposeInSQLLab: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.Register(ctx, admin, &domain.Database{Name: "warehouse", Engine: domain.EngineDuckDB})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = svc.Register(ctx, admin, &domain.Database{Name: "oracle", Engine: "oracle"})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestList_HidesUnexposedFromNonAdmins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := setup(t)

	for _, d := range []*domain.Database{
		{Name: "a-visible", Engine: domain.EngineDuckDB, ExposeInSQLLab: true},
		{Name: "b-hidden", Engine: domain.EngineDuckDB},
		{Name: "c-visible", Engine: domain.EngineSQLite, ExposeInSQLLab: true},
	} {
		_, err := svc.Register(ctx, admin, d)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		caller    domain.Caller
		wantNames []string
		wantTotal int64
	}{
		{"admin", admin, []string{"a-visible", "b-hidden", "c-visible"}, 3},
		{"user", alice, []string{"a-visible", "c-visible"}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dbs, total, err := svc.List(ctx, tc.caller, domain.PageRequest{})
			require.NoError(t, err)
			names := make([]string, 0, len(dbs))
			for _, d := range dbs {
				names = append(names, d.Name)
			}
			assert.Equal(t, tc.wantNames, names)
			assert.Equal(t, tc.wantTotal, total)
		})
	}
}

func TestSyncFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo, evictor := setup(t)

	path := filepath.Join(t.TempDir(), "databases.yaml")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}

	write(`
databases:
  - name: examples
    engine: duckdb
    allow_run_async: true
  - name: scratch
    engine: sqlite
    dsn: ":memory:"
    expose_in_sqllab: false
`)
	require.NoError(t, svc.SyncFile(ctx, path))

	examples, err := repo.GetByName(ctx, "examples")
	require.NoError(t, err)
	assert.True(t, examples.ExposeInSQLLab)
	assert.True(t, examples.AllowRunAsync)
	scratch, err := repo.GetByName(ctx, "scratch")
	require.NoError(t, err)
	assert.False(t, scratch.ExposeInSQLLab)
	assert.Equal(t, ":memory:", scratch.DSN)

	write(`
databases:
  - name: examples
    engine: duckdb
    allow_ctas: true
    force_ctas_schema: tmp
`)
	require.NoError(t, svc.SyncFile(ctx, path))

	updated, err := repo.GetByName(ctx, "examples")
	require.NoError(t, err)
	assert.Equal(t, examples.ID, updated.ID)
	assert.False(t, updated.AllowRunAsync)
	assert.True(t, updated.AllowCTAS)
	require.NotNil(t, updated.ForceCTASSchema)
	assert.Equal(t, "tmp", *updated.ForceCTASSchema)

	assert.Equal(t, []int64{examples.ID, scratch.ID, examples.ID}, evictor.ids)
}

func TestSync_StopsAtInvalidEntry(t *testing.T) {
	t.Parallel()
	svc, repo, _ := setup(t)

	err := svc.Sync(context.Background(), []config.DatabaseEntry{
		{Name: "ok", Engine: domain.EngineDuckDB},
		{Name: "pg", Engine: domain.EnginePostgres},
		{Name: "never", Engine: domain.EngineDuckDB},
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), `"pg"`)

	_, err = repo.GetByName(context.Background(), "ok")
	require.NoError(t, err)
	_, err = repo.GetByName(context.Background(), "never")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSyncFile_MissingFile(t *testing.T) {
	t.Parallel()
	svc, _, _ := setup(t)
	require.Error(t, svc.SyncFile(context.Background(), filepath.Join(t.TempDir(), "absent.yaml")))
}
