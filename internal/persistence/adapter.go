// Package persistence keeps the store's snapshot in a durable blob.
package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/blob"
	"github.com/noah-isme/course-admin-store/internal/codec"
	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

// Recorder receives persistence measurements.
type Recorder interface {
	ObserveSnapshotWrite(duration time.Duration, size int)
	RecordPersistenceFailure(reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSnapshotWrite(time.Duration, int) {}
func (nopRecorder) RecordPersistenceFailure(string)         {}

// Failure reasons reported to the Recorder.
const (
	ReasonQuota   = "quota"
	ReasonWrite   = "write"
	ReasonEncode  = "encode"
	ReasonCorrupt = "corrupt"
	ReasonVersion = "version"
)

// Adapter loads, saves and clears the snapshot blob. Saves are serialized and
// a snapshot older than the last written one is skipped, so concurrent
// committers cannot roll the blob back.
type Adapter struct {
	backend blob.Store
	codec   codec.Codec
	key     string
	version int
	logger  *zap.Logger
	metrics Recorder
	now     func() time.Time

	mu          sync.Mutex
	lastWritten uint64
	lastErr     error
}

// Option configures the adapter.
type Option func(*Adapter)

// WithCodec overrides the JSON default used for writes.
func WithCodec(c codec.Codec) Option {
	return func(a *Adapter) {
		if c != nil {
			a.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(a *Adapter) {
		if r != nil {
			a.metrics = r
		}
	}
}

// WithClock overrides the clock stamping SavedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAdapter builds an adapter writing under key with the expected schema
// version.
func NewAdapter(backend blob.Store, key string, version int, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		codec:   codec.NewJSONCodec(),
		key:     key,
		version: version,
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Version returns the schema version the adapter reads and writes.
func (a *Adapter) Version() int {
	return a.version
}

// Load returns the stored snapshot, or nil when none exists. Unreadable or
// version-skewed blobs are discarded and reported as absent.
func (a *Adapter) Load(ctx context.Context) (*models.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := a.backend.Read(ctx, a.key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read snapshot")
	}

	snap, err := codec.Detect(data).Decode(data)
	if err != nil {
		a.discard(ctx, ReasonCorrupt, appErrors.Wrap(err, appErrors.ErrCorruptSnapshot.Code, appErrors.ErrCorruptSnapshot.Status, appErrors.ErrCorruptSnapshot.Message))
		return nil, nil
	}
	if snap.Version != a.version {
		a.logger.Warn("snapshot version mismatch",
			zap.Int("found", snap.Version),
			zap.Int("expected", a.version))
		a.discard(ctx, ReasonVersion, appErrors.Clone(appErrors.ErrCorruptSnapshot, "snapshot version mismatch"))
		return nil, nil
	}

	a.lastWritten = snap.Sequence
	a.logger.Info("snapshot loaded",
		zap.Uint64("sequence", snap.Sequence),
		zap.Time("saved_at", snap.SavedAt),
		zap.Int("bytes", len(data)))
	return snap, nil
}

func (a *Adapter) discard(ctx context.Context, reason string, cause error) {
	a.metrics.RecordPersistenceFailure(reason)
	a.logger.Warn("discarding stored snapshot", zap.String("reason", reason), zap.Error(cause))
	if err := a.backend.Delete(ctx, a.key); err != nil {
		a.logger.Error("failed to discard stored snapshot", zap.Error(err))
	}
}

// Save writes snap, stamping the version and save time. When the backend
// refuses the write for capacity reasons the whole blob is cleared.
func (a *Adapter) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if snap.Sequence != 0 && snap.Sequence <= a.lastWritten {
		a.logger.Debug("skipping stale snapshot",
			zap.Uint64("sequence", snap.Sequence),
			zap.Uint64("last_written", a.lastWritten))
		return nil
	}

	out := *snap
	out.Version = a.version
	out.SavedAt = a.now()

	start := time.Now()
	data, err := a.codec.Encode(&out)
	if err != nil {
		a.metrics.RecordPersistenceFailure(ReasonEncode)
		return a.fail(appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "failed to encode snapshot"))
	}

	if err := a.backend.Write(ctx, a.key, data); err != nil {
		if errors.Is(err, blob.ErrQuotaExceeded) {
			a.metrics.RecordPersistenceFailure(ReasonQuota)
			a.logger.Error("snapshot exceeds storage quota, clearing durable store",
				zap.Uint64("sequence", snap.Sequence),
				zap.Int("bytes", len(data)),
				zap.Error(err))
			if clearErr := a.backend.Delete(ctx, a.key); clearErr != nil {
				a.logger.Error("failed to clear durable store", zap.Error(clearErr))
			}
			a.lastWritten = snap.Sequence
			return a.fail(appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "snapshot exceeds storage quota"))
		}
		a.metrics.RecordPersistenceFailure(ReasonWrite)
		a.logger.Error("failed to write snapshot", zap.Uint64("sequence", snap.Sequence), zap.Error(err))
		return a.fail(appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, appErrors.ErrPersistenceFailure.Message))
	}

	a.lastWritten = snap.Sequence
	a.lastErr = nil
	a.metrics.ObserveSnapshotWrite(time.Since(start), len(data))
	return nil
}

func (a *Adapter) fail(err error) error {
	a.lastErr = err
	return err
}

// Clear removes the durable blob.
func (a *Adapter) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.backend.Delete(ctx, a.key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "failed to clear snapshot")
	}
	a.logger.Info("durable store cleared")
	return nil
}

// Err returns the error of the latest failed save, or nil once a later save
// succeeded.
func (a *Adapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
