// Package maintenance runs periodic housekeeping for query records, the
// results cache, and the task queue.
package maintenance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sqllab/internal/metrics"
)

// AbandonedMessage is recorded on queries reaped by maintenance.
const AbandonedMessage = "query abandoned: no progress was reported before the time limit"

const jobTimeout = time.Minute

// StaleReaper fails records that stopped making progress.
type StaleReaper interface {
	FailStale(ctx context.Context, idleSince time.Time, message string) (int64, error)
}

// Collector reclaims space held by expired cache entries.
type Collector interface {
	GC(ctx context.Context) error
}

// DepthReporter reports the number of tasks waiting in the queue.
type DepthReporter interface {
	Depth(ctx context.Context) (int64, error)
}

// Scheduler runs the maintenance pass on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	queries StaleReaper
	cache   Collector
	queue   DepthReporter
	// staleAfter is how long a PENDING or RUNNING record may go unchanged.
	staleAfter time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu      sync.Mutex
	entryID cron.EntryID
}

// NewScheduler creates a Scheduler. cache and queue may be nil.
func NewScheduler(queries StaleReaper, cache Collector, queue DepthReporter, staleAfter time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		queries:    queries,
		cache:      cache,
		queue:      queue,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     logger.With("component", "maintenance"),
	}
}

// SetClock overrides the time source.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Start registers the pass under schedule and starts the cron runner.
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "schedule", schedule, "stale_after", s.staleAfter)
	return nil
}

// Stop stops the cron runner and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("maintenance scheduler stopped")
}

// RunOnce performs a single maintenance pass. Each step logs and continues
// on failure.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.staleAfter > 0 {
		n, err := s.queries.FailStale(ctx, s.now().Add(-s.staleAfter), AbandonedMessage)
		switch {
		case err != nil:
			s.logger.Error("failed to reap stale queries", "error", err)
		case n > 0:
			metrics.StaleReaped(n)
			s.logger.Warn("reaped stale queries", "count", n)
		}
	}

	if s.cache != nil {
		if err := s.cache.GC(ctx); err != nil {
			s.logger.Warn("results cache gc failed", "error", err)
		}
	}

	if s.queue != nil {
		depth, err := s.queue.Depth(ctx)
		if err != nil {
			s.logger.Warn("failed to read task queue depth", "error", err)
			return
		}
		metrics.SetQueueDepth(depth)
	}
}

