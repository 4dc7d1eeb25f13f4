package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanQueue is a TaskQueueReader the test feeds directly.
type chanQueue chan Task

func (q chanQueue) GetChannel() <-chan Task { return q }

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func TestNewWorkerPool(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"explicit count", 5, 5},
		{"zero falls back to one", 0, 1},
		{"negative falls back to one", -5, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			queue := make(chanQueue)
			pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: tc.requested}, setupTestLogger())
			require.NotNil(t, pool)
			assert.Equal(t, tc.want, pool.workerCount)
			assert.Nil(t, pool.errorHandler)
		})
	}

	t.Run("nil logger", func(t *testing.T) {
		pool := NewWorkerPool(make(chanQueue), DefaultWorkerPoolConfig(), nil)
		assert.NotNil(t, pool.logger)
		assert.Equal(t, 2, pool.workerCount)
	})
}

func TestWorkerPool_StartAndStopAreIdempotent(t *testing.T) {
	pool := NewWorkerPool(make(chanQueue), WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())

	pool.Start()
	pool.Start()
	pool.Stop()
	pool.Stop()

	assert.Error(t, pool.ctx.Err())
}

func TestWorkerPool_DrainPersistsQueuedStates(t *testing.T) {
	stores := testutils.NewMemStores()
	queue := NewTaskQueue(10, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())

	const items = 6
	for i := 0; i < items; i++ {
		state := testutils.MustCreateStateForTest(t, fmt.Sprintf("w%d", i), testutils.WithReviews(i+1))
		task, err := NewPersistStateTask("s1", state, stores.States, DefaultRetryPolicy(), nil, setupTestLogger())
		require.NoError(t, err)
		require.NoError(t, queue.Enqueue(task))
	}

	pool.Start()
	queue.Close()
	pool.Drain(2 * time.Second)

	saved, err := stores.States.GetAllForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, saved, items)
	for i := 0; i < items; i++ {
		got, err := stores.States.Get(context.Background(), "u1", fmt.Sprintf("w%d", i))
		require.NoError(t, err)
		assert.Equal(t, i+1, got.TotalReviews)
	}
}

func TestWorkerPool_ReportsFailedWrites(t *testing.T) {
	stores := testutils.NewMemStores()
	writeErr := errors.New("database is locked")
	stores.States.FailPut(writeErr, -1)

	failures := make(chan PersistFailure, 1)
	task := newTestPersistTask(t, stores, 3, func(ctx context.Context, f PersistFailure) {
		failures <- f
	})

	queue := make(chanQueue, 1)
	handled := make(chan error, 1)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.SetErrorHandler(func(failed Task, err error) {
		assert.Equal(t, task.ID(), failed.ID())
		handled <- err
	})
	pool.Start()
	defer pool.Stop()

	queue <- task

	err := waitFor(t, handled, "error handler")
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "u1/wabc")

	failure := waitFor(t, failures, "failure hook")
	assert.Equal(t, "s1", failure.SessionID)
	assert.Equal(t, "wabc", failure.ItemID)
	assert.Equal(t, DefaultRetryPolicy().MaxAttempts, stores.States.PutCalls())
	assert.Equal(t, TaskStatusFailed, task.Status())
}

func TestWorkerPool_WorkerSurvivesPanic(t *testing.T) {
	queue := make(chanQueue, 2)
	handled := make(chan error, 1)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.SetErrorHandler(func(_ Task, err error) { handled <- err })
	pool.Start()
	defer pool.Stop()

	panicking := newMockTask()
	panicking.execFn = func(ctx context.Context) error { panic("nil review state") }

	ran := make(chan struct{})
	next := newMockTask()
	next.execFn = func(ctx context.Context) error {
		close(ran)
		return nil
	}

	queue <- panicking
	queue <- next

	err := waitFor(t, handled, "panic report")
	assert.Contains(t, err.Error(), "panic")
	assert.Contains(t, err.Error(), "nil review state")
	waitFor(t, ran, "task after panic")
}

func TestWorkerPool_StopCancelsRunningTask(t *testing.T) {
	queue := make(chanQueue, 1)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()

	started := make(chan struct{})
	canceled := make(chan error, 1)
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		canceled <- ctx.Err()
		return ctx.Err()
	}
	queue <- task
	waitFor(t, started, "task start")

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	assert.ErrorIs(t, waitFor(t, canceled, "cancellation"), context.Canceled)
	waitFor(t, stopped, "pool stop")
}

func TestWorkerPool_DrainTimesOut(t *testing.T) {
	queue := make(chanQueue)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()

	start := time.Now()
	// The queue is never closed, so only the timeout ends the drain.
	pool.Drain(50 * time.Millisecond)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Error(t, pool.ctx.Err())
}
