package resultscache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var _ Backend = (*BadgerBackend)(nil)

// BadgerBackend stores payloads in an embedded Badger database with native
// per-entry TTL.
type BadgerBackend struct {
	db       *badger.DB
	opts     Options
	inMemory bool

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens a Badger-backed cache in dir, or in memory when dir is
// empty.
func OpenBadger(dir string, opts Options) (*BadgerBackend, error) {
	badgerOpts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithValueThreshold(64 << 10)
	if dir == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger results cache: %w", err)
	}
	return &BadgerBackend{db: db, opts: opts, inMemory: dir == ""}, nil
}

// Put stores payload under key with the configured TTL.
func (b *BadgerBackend) Put(_ context.Context, key string, payload []byte) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), payload)
		if b.opts.TTL > 0 {
			e = e.WithTTL(b.opts.TTL)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the payload under key. Expired and absent keys report
// found=false.
func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := b.checkOpen(); err != nil {
		return nil, false, err
	}
	var payload []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read results %s: %w", key, err)
	}
	return payload, true, nil
}

// GC reclaims value-log space until nothing more can be rewritten.
func (b *BadgerBackend) GC(_ context.Context) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.inMemory {
		return nil
	}
	for {
		err := b.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("badger value log gc: %w", err)
		}
	}
}

// Close closes the underlying database.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func (b *BadgerBackend) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}
