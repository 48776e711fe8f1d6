package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/db"
	"sqllab/internal/db/crypto"
	"sqllab/internal/db/repository"
	"sqllab/internal/domain"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type fakeCollector struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCollector) GC(context.Context) error {
	f.calls.Add(1)
	return f.err
}

type fakeReaper struct{ err error }

func (f fakeReaper) FailStale(context.Context, time.Time, string) (int64, error) { return 0, f.err }

type fixture struct {
	queries *repository.QueryRepo
	tasks   *repository.TaskQueueRepo
	dbID    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	require.NoError(t, err)
	d, err := repository.NewDatabaseRepo(writeDB, enc).Create(context.Background(), &domain.Database{
		Name: "examples", Engine: domain.EngineDuckDB, ExposeInSQLLab: true, AllowRunAsync: true,
	})
	require.NoError(t, err)
	return &fixture{
		queries: repository.NewQueryRepo(writeDB, readDB),
		tasks:   repository.NewTaskQueueRepo(writeDB),
		dbID:    d.ID,
	}
}

func (f *fixture) create(t *testing.T, status domain.QueryStatus, at time.Time) *domain.Query {
	t.Helper()
	f.queries.SetClock(func() time.Time { return at })
	q, err := f.queries.Create(context.Background(), &domain.Query{
		DatabaseID: f.dbID, RawSQL: "SELECT 1", RenderedSQL: "SELECT 1", ExecutedSQL: "SELECT 1",
		UserID: "alice", Limit: 1000, Status: status,
	})
	require.NoError(t, err)
	return q
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunOnce_ReapsOnlyStaleRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	stalePending := f.create(t, domain.QueryStatusPending, now.Add(-3*time.Hour))
	staleRunning := f.create(t, domain.QueryStatusRunning, now.Add(-2*time.Hour))
	fresh := f.create(t, domain.QueryStatusRunning, now.Add(-time.Minute))
	done := f.create(t, domain.QueryStatusRunning, now.Add(-4*time.Hour))
	require.NoError(t, f.queries.MarkSucceeded(ctx, done.ID, "key-done", 1))
	f.queries.SetClock(func() time.Time { return now })

	collector := &fakeCollector{}
	s := NewScheduler(f.queries, collector, f.tasks, time.Hour, quietLogger())
	s.SetClock(func() time.Time { return now })
	s.RunOnce(ctx)

	tests := []struct {
		name string
		id   int64
		want domain.QueryStatus
	}{
		{"stale pending", stalePending.ID, domain.QueryStatusFailed},
		{"stale running", staleRunning.ID, domain.QueryStatusFailed},
		{"fresh running", fresh.ID, domain.QueryStatusRunning},
		{"terminal", done.ID, domain.QueryStatusSuccess},
	}
	for _, tc := range tests {
		got, err := f.queries.GetByID(ctx, tc.id)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got.Status, tc.name)
		if tc.want == domain.QueryStatusFailed {
			require.NotNil(t, got.ErrorMessage, tc.name)
			assert.Equal(t, AbandonedMessage, *got.ErrorMessage, tc.name)
			assert.Nil(t, got.ResultsKey, tc.name)
		}
	}
	assert.EqualValues(t, 1, collector.calls.Load())
}

func TestRunOnce_ContinuesAfterFailures(t *testing.T) {
	t.Parallel()
	collector := &fakeCollector{err: errors.New("value log gc failed")}
	s := NewScheduler(fakeReaper{err: errors.New("database is locked")}, collector, nil, time.Hour, quietLogger())

	s.RunOnce(context.Background())
	assert.EqualValues(t, 1, collector.calls.Load())
}

func TestRunOnce_ZeroStaleAfterSkipsReaping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	old := f.create(t, domain.QueryStatusRunning, time.Now().Add(-48*time.Hour))
	f.queries.SetClock(time.Now)

	NewScheduler(f.queries, nil, nil, 0, quietLogger()).RunOnce(ctx)

	got, err := f.queries.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QueryStatusRunning, got.Status)
}

func TestScheduler_Start(t *testing.T) {
	t.Parallel()

	t.Run("invalid schedule", func(t *testing.T) {
		t.Parallel()
		s := NewScheduler(fakeReaper{}, nil, nil, time.Hour, quietLogger())
		require.Error(t, s.Start("every now and then"))
	})

	t.Run("runs on schedule", func(t *testing.T) {
		t.Parallel()
		collector := &fakeCollector{}
		s := NewScheduler(fakeReaper{}, collector, nil, time.Hour, quietLogger())
		require.NoError(t, s.Start("@every 1s"))
		defer s.Stop()

		require.Eventually(t, func() bool { return collector.calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	})
}
