package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	done := make(chan struct{})

	q := NewQueue[int]("ordered", func(_ context.Context, job Job[int]) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Payload)
		if len(seen) == 5 {
			close(done)
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())
	defer q.Stop()

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Enqueue(Job[int]{Payload: i}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs were not processed")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := NewQueue[string]("retry", func(_ context.Context, job Job[string]) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[string]{ID: "a"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestQueuePermanentErrorIsNotRetried(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	q := NewQueue[string]("permanent", func(_ context.Context, job Job[string]) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return Permanent(errors.New("quota"))
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job[string]{ID: "a"}))
	time.Sleep(50 * time.Millisecond)
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts)
}

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewQueue[int]("idle", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[int]{}))
}
