// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sync"
	"time"

	"sqllab/internal/domain"
)

// === Query Executor Mock ===

// MockExecutor implements domain.QueryExecutor for testing.
type MockExecutor struct {
	ExecuteFn func(ctx context.Context, db *domain.Database, schema *string, sql string) (*domain.ResultSet, error)

	mu    sync.Mutex
	Calls []string // executed statements, in order
}

// Execute implements the interface method for testing.
func (m *MockExecutor) Execute(ctx context.Context, db *domain.Database, schema *string, sql string) (*domain.ResultSet, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, sql)
	m.mu.Unlock()
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, db, schema, sql)
	}
	panic("unexpected call to MockExecutor.Execute")
}

// CallCount returns the number of Execute calls so far.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// === Results Backend Mock ===

// MockResultsBackend implements domain.ResultsBackend with an in-memory map.
// PutFn and GetFn override the map when set.
type MockResultsBackend struct {
	PutFn func(ctx context.Context, key string, payload []byte) error
	GetFn func(ctx context.Context, key string) ([]byte, bool, error)

	mu    sync.Mutex
	blobs map[string][]byte
}

// Put implements the interface method for testing.
func (m *MockResultsBackend) Put(ctx context.Context, key string, payload []byte) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, payload)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blobs == nil {
		m.blobs = make(map[string][]byte)
	}
	m.blobs[key] = append([]byte(nil), payload...)
	return nil
}

// Get implements the interface method for testing.
func (m *MockResultsBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok, nil
}

// Delete drops a stored payload, simulating expiry.
func (m *MockResultsBackend) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
}

// Len returns the number of stored payloads.
func (m *MockResultsBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// === Task Queue Mock ===

// MockTaskQueue implements domain.TaskQueue for testing.
type MockTaskQueue struct {
	PublishFn     func(ctx context.Context, task *domain.Task) error
	ClaimFn       func(ctx context.Context, owner string, lease time.Duration) (*domain.Task, error)
	ExtendLeaseFn func(ctx context.Context, taskID int64, owner string, lease time.Duration) error
	AckFn         func(ctx context.Context, taskID int64) error
	ReleaseFn     func(ctx context.Context, taskID int64, owner string, retryAfter time.Duration) error

	mu        sync.Mutex
	Published []*domain.Task
}

// Publish implements the interface method for testing.
func (m *MockTaskQueue) Publish(ctx context.Context, task *domain.Task) error {
	if m.PublishFn != nil {
		if err := m.PublishFn(ctx, task); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, task)
	return nil
}

// Claim implements the interface method for testing.
func (m *MockTaskQueue) Claim(ctx context.Context, owner string, lease time.Duration) (*domain.Task, error) {
	if m.ClaimFn != nil {
		return m.ClaimFn(ctx, owner, lease)
	}
	return nil, nil
}

// ExtendLease implements the interface method for testing.
func (m *MockTaskQueue) ExtendLease(ctx context.Context, taskID int64, owner string, lease time.Duration) error {
	if m.ExtendLeaseFn != nil {
		return m.ExtendLeaseFn(ctx, taskID, owner, lease)
	}
	return nil
}

// Ack implements the interface method for testing.
func (m *MockTaskQueue) Ack(ctx context.Context, taskID int64) error {
	if m.AckFn != nil {
		return m.AckFn(ctx, taskID)
	}
	return nil
}

// Release implements the interface method for testing.
func (m *MockTaskQueue) Release(ctx context.Context, taskID int64, owner string, retryAfter time.Duration) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(ctx, taskID, owner, retryAfter)
	}
	return nil
}

// PublishedCount returns the number of successfully published tasks.
func (m *MockTaskQueue) PublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}

// === Task Handler Mock ===

// MockTaskHandler implements domain.TaskHandler for testing.
type MockTaskHandler struct {
	HandleTaskFn  func(ctx context.Context, task *domain.Task) error
	AbandonTaskFn func(ctx context.Context, task *domain.Task, cause error) error
}

// HandleTask implements the interface method for testing.
func (m *MockTaskHandler) HandleTask(ctx context.Context, task *domain.Task) error {
	if m.HandleTaskFn != nil {
		return m.HandleTaskFn(ctx, task)
	}
	panic("unexpected call to MockTaskHandler.HandleTask")
}

// AbandonTask implements the interface method for testing.
func (m *MockTaskHandler) AbandonTask(ctx context.Context, task *domain.Task, cause error) error {
	if m.AbandonTaskFn != nil {
		return m.AbandonTaskFn(ctx, task, cause)
	}
	panic("unexpected call to MockTaskHandler.AbandonTask")
}

// === Validator Mock ===

// MockValidator implements query.Validator for testing.
type MockValidator struct {
	ValidateFn func(ctx context.Context, db *domain.Database, schema *string, sql string) ([]domain.Annotation, error)
}

// Validate implements the interface method for testing.
func (m *MockValidator) Validate(ctx context.Context, db *domain.Database, schema *string, sql string) ([]domain.Annotation, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, db, schema, sql)
	}
	panic("unexpected call to MockValidator.Validate")
}
