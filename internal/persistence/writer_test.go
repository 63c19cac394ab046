package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/blob"
	"github.com/noah-isme/course-admin-store/internal/models"
)

func TestSyncWriterPersists(t *testing.T) {
	backend := newMemoryBlob()
	w := NewSyncWriter(newTestAdapter(backend))
	require.NoError(t, w.Persist(context.Background(), &models.Snapshot{Sequence: 1}))
	assert.True(t, backend.has("snapshot"))
	require.NoError(t, w.Close())
}

func TestQueueWriterWritesInBackground(t *testing.T) {
	backend := newMemoryBlob()
	a := newTestAdapter(backend)
	w := NewQueueWriter(context.Background(), a, 1, zap.NewNop())

	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, w.Persist(context.Background(), &models.Snapshot{Sequence: seq}))
	}
	assert.Eventually(t, func() bool {
		snap, err := newTestAdapter(backend).Load(context.Background())
		return err == nil && snap != nil && snap.Sequence == 3
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, w.Close())
}

func TestQueueWriterCloseFlushesLatest(t *testing.T) {
	backend := newMemoryBlob()
	backend.writeErr = blob.ErrQuotaExceeded
	a := newTestAdapter(backend)
	w := NewQueueWriter(context.Background(), a, 3, zap.NewNop())

	require.NoError(t, w.Persist(context.Background(), &models.Snapshot{Sequence: 1}))
	assert.Eventually(t, func() bool { return a.Err() != nil }, 2*time.Second, 10*time.Millisecond)

	backend.mu.Lock()
	backend.writeErr = nil
	backend.mu.Unlock()
	require.NoError(t, w.Persist(context.Background(), &models.Snapshot{Sequence: 2}))
	require.NoError(t, w.Close())

	snap, err := newTestAdapter(backend).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, uint64(2), snap.Sequence)
}

func TestQueueWriterCloseFlushesNewestOutOfOrder(t *testing.T) {
	backend := newMemoryBlob()
	ctx, cancel := context.WithCancel(context.Background())
	w := NewQueueWriter(ctx, newTestAdapter(backend), 1, zap.NewNop())
	cancel()

	// the worker is gone, so Persist may refuse the job; Close still flushes
	_ = w.Persist(context.Background(), &models.Snapshot{Sequence: 2})
	_ = w.Persist(context.Background(), &models.Snapshot{Sequence: 1})
	require.NoError(t, w.Close())

	snap, err := newTestAdapter(backend).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, uint64(2), snap.Sequence)
}
