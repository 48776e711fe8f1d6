// Package resultscache implements the shared results cache: a keyed store
// of compressed result payloads with TTL expiry. Backends are Badger
// (embedded), S3, GCS, and Azure Blob Storage.
package resultscache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sqllab/internal/domain"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("results cache is closed")

// Backend is a results cache with lifecycle hooks.
type Backend interface {
	domain.ResultsBackend
	// GC reclaims space held by expired entries, where the backend needs it.
	GC(ctx context.Context) error
	Close() error
}

// Options are shared by all backends.
type Options struct {
	TTL    time.Duration
	Prefix string // object key prefix for bucket backends
	Logger *slog.Logger
}

// blobStore is the minimal surface of an object store.
type blobStore interface {
	upload(ctx context.Context, key string, data []byte) error
	// download reports a missing object with found=false.
	download(ctx context.Context, key string) (data []byte, found bool, err error)
	remove(ctx context.Context, key string) error
	close() error
}

// ObjectBackend stores payloads in an object store. Object stores have no
// per-object TTL, so each object is prefixed with an 8-byte expiry (unix
// milliseconds, 0 for none) and expired objects read as absent. Bucket
// lifecycle rules reclaim the space.
type ObjectBackend struct {
	store  blobStore
	opts   Options
	now    func() time.Time
	logger *slog.Logger
}

var _ Backend = (*ObjectBackend)(nil)

const envelopeHeader = 8

func newObjectBackend(store blobStore, opts Options) *ObjectBackend {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectBackend{store: store, opts: opts, now: time.Now, logger: logger}
}

// Put stores payload under key.
func (b *ObjectBackend) Put(ctx context.Context, key string, payload []byte) error {
	var expiry int64
	if b.opts.TTL > 0 {
		expiry = b.now().Add(b.opts.TTL).UnixMilli()
	}
	data := make([]byte, envelopeHeader+len(payload))
	binary.BigEndian.PutUint64(data, uint64(expiry)) //nolint:gosec // expiry is non-negative
	copy(data[envelopeHeader:], payload)

	if err := b.store.upload(ctx, b.opts.Prefix+key, data); err != nil {
		return fmt.Errorf("upload results %s: %w", key, err)
	}
	return nil
}

// Get returns the payload under key, or found=false when it is absent or
// expired.
func (b *ObjectBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	objectKey := b.opts.Prefix + key
	data, found, err := b.store.download(ctx, objectKey)
	if err != nil {
		return nil, false, fmt.Errorf("download results %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	if len(data) < envelopeHeader {
		return nil, false, fmt.Errorf("results %s: truncated object", key)
	}

	expiry := int64(binary.BigEndian.Uint64(data[:envelopeHeader])) //nolint:gosec // written by Put
	if expiry > 0 && b.now().UnixMilli() >= expiry {
		if err := b.store.remove(ctx, objectKey); err != nil {
			b.logger.Warn("failed to remove expired results", "key", key, "error", err)
		}
		return nil, false, nil
	}
	return data[envelopeHeader:], true, nil
}

// GC is a no-op; bucket lifecycle rules own object deletion.
func (b *ObjectBackend) GC(context.Context) error { return nil }

// Close releases the store client.
func (b *ObjectBackend) Close() error { return b.store.close() }

// Disabled is the "none" backend: every write is refused, so no query can
// be recorded as SUCCESS with a key that resolves to nothing.
type Disabled struct{}

var _ Backend = Disabled{}

// Put refuses the payload with a *domain.NotImplementedError.
func (Disabled) Put(context.Context, string, []byte) error {
	return domain.ErrNotImplemented("results cannot be stored: RESULTS_BACKEND=none")
}

// Get always misses.
func (Disabled) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// GC does nothing.
func (Disabled) GC(context.Context) error { return nil }

// Close does nothing.
func (Disabled) Close() error { return nil }
