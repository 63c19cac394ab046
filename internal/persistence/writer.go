package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/blob"
	"github.com/noah-isme/course-admin-store/internal/models"
	"github.com/noah-isme/course-admin-store/pkg/jobs"
)

// SyncWriter saves every committed snapshot before returning to the caller.
type SyncWriter struct {
	adapter *Adapter
}

// NewSyncWriter wraps an adapter.
func NewSyncWriter(adapter *Adapter) *SyncWriter {
	return &SyncWriter{adapter: adapter}
}

// Persist saves snap synchronously.
func (w *SyncWriter) Persist(ctx context.Context, snap *models.Snapshot) error {
	return w.adapter.Save(ctx, snap)
}

// Err reports the adapter's last save outcome.
func (w *SyncWriter) Err() error {
	return w.adapter.Err()
}

// Close implements io.Closer.
func (w *SyncWriter) Close() error {
	return nil
}

// QueueWriter hands snapshots to a single background worker so callers do
// not wait for storage I/O. Close flushes the most recent snapshot.
type QueueWriter struct {
	adapter *Adapter
	queue   *jobs.Queue[*models.Snapshot]
	logger  *zap.Logger

	mu     sync.Mutex
	latest *models.Snapshot
}

// NewQueueWriter starts a single-worker queue in front of the adapter.
func NewQueueWriter(ctx context.Context, adapter *Adapter, retries int, logger *zap.Logger) *QueueWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &QueueWriter{adapter: adapter, logger: logger}
	w.queue = jobs.NewQueue[*models.Snapshot]("snapshot-writer", w.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 64,
		MaxRetries: retries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	})
	w.queue.Start(ctx)
	return w
}

func (w *QueueWriter) handle(ctx context.Context, job jobs.Job[*models.Snapshot]) error {
	err := w.adapter.Save(ctx, job.Payload)
	if err != nil && errors.Is(err, blob.ErrQuotaExceeded) {
		// already cleared; retrying the same payload would fail again
		return jobs.Permanent(err)
	}
	return err
}

// Persist enqueues snap. Snapshots can arrive out of commit order, so only a
// newer sequence replaces the one Close flushes.
func (w *QueueWriter) Persist(_ context.Context, snap *models.Snapshot) error {
	w.mu.Lock()
	if w.latest == nil || snap.Sequence > w.latest.Sequence {
		w.latest = snap
	}
	w.mu.Unlock()
	return w.queue.Enqueue(jobs.Job[*models.Snapshot]{
		ID:      fmt.Sprintf("snapshot-%d", snap.Sequence),
		Payload: snap,
	})
}

// Err reports the adapter's last save outcome.
func (w *QueueWriter) Err() error {
	return w.adapter.Err()
}

// Close stops the worker and writes the latest snapshot if it has not been
// written yet.
func (w *QueueWriter) Close() error {
	w.queue.Stop()
	w.mu.Lock()
	latest := w.latest
	w.mu.Unlock()
	if latest == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return w.adapter.Save(ctx, latest)
}
