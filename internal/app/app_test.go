package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/config"
	"sqllab/internal/db"
	"sqllab/internal/domain"
	"sqllab/internal/service/query"
)

var (
	admin = domain.Caller{UserID: "root", Username: "root", IsAdmin: true}
	alice = domain.Caller{UserID: "alice", Username: "alice"}
)

const databasesYAML = `databases:
  - name: scratch
    engine: duckdb
    dsn: ""
    allow_run_async: true
    allow_ctas: true
  - name: hidden
    engine: sqlite
    dsn: ":memory:"
    expose_in_sqllab: false
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "databases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(databasesYAML), 0o600))
	return &config.Config{
		EncryptionKey:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		SQLMaxRow:         1000,
		DisplayMaxRow:     100,
		SyncTimeout:       10 * time.Second,
		AsyncTimeLimit:    10 * time.Second,
		ValidationTimeout: 5 * time.Second,
		QuerySearchLimit:  100,
		CSVDelimiter:      ',',
		ValidatorsByEngine: map[string]string{
			domain.EngineDuckDB:   config.ValidatorExplain,
			domain.EngineSQLite:   config.ValidatorExplain,
			domain.EnginePostgres: config.ValidatorPostgreSQL,
		},
		FeatureAsyncQueue: true,
		FeatureCSVExport:  true,
		FeatureCTAS:       true,
		Results:           config.ResultsConfig{Backend: config.ResultsBackendBadger, TTL: time.Hour},
		Worker: config.WorkerConfig{
			Concurrency:  2,
			Lease:        time.Minute,
			PollInterval: 10 * time.Millisecond,
			MaxAttempts:  3,
			RetryBackoff: time.Second,
		},
		DatabasesFile: path,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	a, err := New(context.Background(), Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func databaseID(t *testing.T, a *App, name string) int64 {
	t.Helper()
	dbs, _, err := a.Services.Databases.List(context.Background(), admin, domain.PageRequest{})
	require.NoError(t, err)
	for _, d := range dbs {
		if d.Name == name {
			return d.ID
		}
	}
	t.Fatalf("database %q not registered", name)
	return 0
}

func TestNew_SeedsDatabasesFile(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, testConfig(t))

	all, total, err := a.Services.Databases.List(context.Background(), admin, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	visible, total, err := a.Services.Databases.List(context.Background(), alice, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, visible, 1)
	assert.Equal(t, "scratch", visible[0].Name)
}

func TestNew_RejectsBadDatabasesFile(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.DatabasesFile = filepath.Join(t.TempDir(), "missing.yaml")

	writeDB, readDB := db.OpenTestSQLite(t)
	_, err := New(context.Background(), Deps{
		Cfg: cfg, WriteDB: writeDB, ReadDB: readDB,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed databases")
}

func TestApp_SyncQueryEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, testConfig(t))
	id := databaseID(t, a, "scratch")

	res, err := a.Services.Query.Submit(ctx, alice, query.SubmitRequest{
		SQL:        "SELECT i AS n FROM range(3) t(i) ORDER BY i",
		DatabaseID: id,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QueryStatusSuccess, res.Query.Status)
	assert.Equal(t, 3, res.Data.RowCount())
	require.NotNil(t, res.Query.ResultsKey)

	fetched, err := a.Services.Query.GetResults(ctx, alice, *res.Query.ResultsKey, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.Data.RowCount())

	export, err := a.Services.Query.ExportCSV(ctx, alice, res.Query.ClientID)
	require.NoError(t, err)
	assert.False(t, export.Reexecuted)
	assert.Equal(t, "n\n0\n1\n2\n", string(export.Data))
}

func TestApp_AsyncQueryRunsOnWorker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, testConfig(t))
	id := databaseID(t, a, "scratch")

	res, err := a.Services.Query.Submit(ctx, alice, query.SubmitRequest{
		SQL:        "SELECT 42 AS answer",
		DatabaseID: id,
		RunAsync:   true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.QueryStatusPending, res.Query.Status)

	w, err := a.NewWorker()
	require.NoError(t, err)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		q, err := a.Services.Query.Get(ctx, alice, res.Query.ClientID)
		return err == nil && q.Status == domain.QueryStatusSuccess
	}, 10*time.Second, 20*time.Millisecond)

	q, err := a.Services.Query.Get(ctx, alice, res.Query.ClientID)
	require.NoError(t, err)
	require.NotNil(t, q.ResultsKey)
	fetched, err := a.Services.Query.GetResults(ctx, alice, *q.ResultsKey, 0)
	require.NoError(t, err)
	require.Equal(t, 1, fetched.Data.RowCount())

	depth, err := a.Tasks.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestApp_ValidateUsesConfiguredValidator(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, testConfig(t))
	id := databaseID(t, a, "scratch")

	annotations, err := a.Services.Query.Validate(context.Background(), alice, query.ValidateRequest{
		SQL:        "SELECT * FROM no_such_table",
		DatabaseID: id,
	})
	require.NoError(t, err)
	require.NotEmpty(t, annotations)
	assert.Equal(t, domain.SeverityError, annotations[0].Severity)
}

func TestApp_MaintenanceRunsAgainstWiredStores(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, testConfig(t))
	s := a.NewMaintenance()
	s.SetClock(func() time.Time { return time.Now().Add(24 * time.Hour) })

	ctx := context.Background()
	res, err := a.Services.Query.Submit(ctx, alice, query.SubmitRequest{
		SQL: "SELECT 1", DatabaseID: databaseID(t, a, "scratch"), RunAsync: true,
	})
	require.NoError(t, err)

	s.RunOnce(ctx)

	q, err := a.Services.Query.Get(ctx, alice, res.Query.ClientID)
	require.NoError(t, err)
	assert.Equal(t, domain.QueryStatusFailed, q.Status)
}
