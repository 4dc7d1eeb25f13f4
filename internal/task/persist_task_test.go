package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/store"
	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersistTask(
	t *testing.T,
	stores *testutils.MemStores,
	total int,
	hook FailureHook,
) *PersistStateTask {
	t.Helper()
	state := testutils.MustCreateStateForTest(t, "wabc", testutils.WithReviews(total))
	task, err := NewPersistStateTask("s1", state, stores.States, DefaultRetryPolicy(), hook, setupTestLogger())
	require.NoError(t, err)
	task.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return task
}

func TestPersistStateTask_Success(t *testing.T) {
	stores := testutils.NewMemStores()
	task := newTestPersistTask(t, stores, 2, nil)
	assert.Equal(t, TaskStatusPending, task.Status())
	assert.Equal(t, TaskTypePersistReviewState, task.Type())

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())

	got, err := stores.States.Get(context.Background(), "u1", "wabc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalReviews)
}

func TestPersistStateTask_RetriesThenSucceeds(t *testing.T) {
	stores := testutils.NewMemStores()
	stores.States.FailPut(errors.New("connection reset"), 3)

	hookCalled := false
	task := newTestPersistTask(t, stores, 1, func(context.Context, PersistFailure) { hookCalled = true })

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, 4, stores.States.PutCalls())
	assert.False(t, hookCalled)
}

func TestPersistStateTask_ReportsFailureAfterRetries(t *testing.T) {
	stores := testutils.NewMemStores()
	boom := errors.New("disk full")
	stores.States.FailPut(boom, -1)

	var failure PersistFailure
	task := newTestPersistTask(t, stores, 1, func(_ context.Context, f PersistFailure) { failure = f })

	err := task.Execute(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TaskStatusFailed, task.Status())
	assert.Equal(t, 5, stores.States.PutCalls())
	assert.Equal(t, "s1", failure.SessionID)
	assert.Equal(t, "u1", failure.UserID)
	assert.Equal(t, "wabc", failure.ItemID)
	assert.ErrorIs(t, failure.Err, boom)
}

func TestPersistStateTask_StaleWriteIsSuccess(t *testing.T) {
	stores := testutils.NewMemStores()
	newer := testutils.MustCreateStateForTest(t, "wabc", testutils.WithReviews(5))
	require.NoError(t, stores.States.Put(context.Background(), newer))

	task := newTestPersistTask(t, stores, 4, nil)
	require.NoError(t, task.Execute(context.Background()))

	got, err := stores.States.Get(context.Background(), "u1", "wabc")
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalReviews)
}

func TestPersistStateTask_InvalidStateNotRetried(t *testing.T) {
	stores := testutils.NewMemStores()
	task := newTestPersistTask(t, stores, 1, nil)
	task.state.EaseFactor = 0.5

	err := task.Execute(context.Background())
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Equal(t, 1, stores.States.PutCalls())
}

func TestNewPersistStateTask_Validation(t *testing.T) {
	stores := testutils.NewMemStores()
	_, err := NewPersistStateTask("s1", nil, stores.States, DefaultRetryPolicy(), nil, nil)
	assert.Error(t, err)

	state := testutils.MustCreateStateForTest(t, "wabc")
	_, err = NewPersistStateTask("s1", state, nil, DefaultRetryPolicy(), nil, nil)
	assert.Error(t, err)
}
