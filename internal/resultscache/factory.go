package resultscache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sqllab/internal/config"
	"sqllab/internal/metrics"
)

// New builds the backend selected by cfg, wrapped with metrics.
func New(ctx context.Context, cfg config.ResultsConfig, logger *slog.Logger) (Backend, error) {
	opts := Options{TTL: cfg.TTL, Prefix: cfg.Prefix, Logger: logger}

	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case config.ResultsBackendBadger:
		backend, err = OpenBadger(cfg.BadgerDir, opts)
	case config.ResultsBackendS3:
		backend, err = NewS3(S3Options{
			Bucket:   cfg.S3Bucket,
			Endpoint: cfg.S3Endpoint,
			Region:   cfg.S3Region,
			KeyID:    cfg.S3KeyID,
			Secret:   cfg.S3Secret,
		}, opts)
	case config.ResultsBackendGCS:
		backend, err = NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, opts)
	case config.ResultsBackendAzure:
		backend, err = NewAzure(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer, opts)
	case config.ResultsBackendNone:
		backend = Disabled{}
	default:
		return nil, fmt.Errorf("unknown results backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("results cache ready", "backend", cfg.Backend, "ttl", cfg.TTL)
	return Instrument(backend), nil
}

// Instrumented records Prometheus metrics around a Backend.
type Instrumented struct {
	Backend
}

// Instrument wraps b with metrics.
func Instrument(b Backend) *Instrumented {
	return &Instrumented{Backend: b}
}

// Put stores payload and records its size.
func (i *Instrumented) Put(ctx context.Context, key string, payload []byte) error {
	if err := i.Backend.Put(ctx, key, payload); err != nil {
		metrics.CacheOp("put", "error")
		return err
	}
	metrics.CacheOp("put", "ok")
	metrics.CachePayload(len(payload))
	return nil
}

// Get reads payload and records hit, miss, or error with read latency.
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	payload, found, err := i.Backend.Get(ctx, key)
	metrics.ObserveCacheRead(time.Since(start))
	switch {
	case err != nil:
		metrics.CacheOp("get", "error")
	case found:
		metrics.CacheOp("get", "hit")
	default:
		metrics.CacheOp("get", "miss")
	}
	return payload, found, err
}
