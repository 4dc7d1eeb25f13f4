package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time { return testutils.FixedNow.Add(time.Hour) }
}

func TestEnrichWordTask_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the enriched word", func(t *testing.T) {
		stores := testutils.NewMemStores()
		word := testutils.MustCreateWordForTest(t)
		require.NoError(t, stores.Words.Put(ctx, word))

		task, err := NewEnrichWordTask(word.ID, stores.Words, &testutils.FakeEnricher{}, fixedClock(), setupTestLogger())
		require.NoError(t, err)
		assert.Equal(t, TaskTypeEnrichWord, task.Type())

		require.NoError(t, task.Execute(ctx))
		assert.Equal(t, TaskStatusCompleted, task.Status())

		got, err := stores.Words.Get(ctx, word.ID)
		require.NoError(t, err)
		assert.True(t, got.Enriched)
		assert.False(t, got.EnrichError)
		assert.Equal(t, "kitaab", got.Transliteration)
		assert.NotEmpty(t, got.Examples)
		assert.Equal(t, testutils.FixedNow.Add(time.Hour), got.UpdatedAt)
	})

	t.Run("skips words already enriched", func(t *testing.T) {
		stores := testutils.NewMemStores()
		word := testutils.MustCreateWordForTest(t, testutils.WithEnriched())
		require.NoError(t, stores.Words.Put(ctx, word))

		fake := &testutils.FakeEnricher{}
		task, err := NewEnrichWordTask(word.ID, stores.Words, fake, fixedClock(), setupTestLogger())
		require.NoError(t, err)

		require.NoError(t, task.Execute(ctx))
		assert.Empty(t, fake.EnrichCalls())
	})

	t.Run("transient failure leaves the word for the sweep", func(t *testing.T) {
		stores := testutils.NewMemStores()
		word := testutils.MustCreateWordForTest(t)
		require.NoError(t, stores.Words.Put(ctx, word))

		fake := &testutils.FakeEnricher{Err: fmt.Errorf("%w: timeout", enrichment.ErrTransientFailure)}
		task, err := NewEnrichWordTask(word.ID, stores.Words, fake, fixedClock(), setupTestLogger())
		require.NoError(t, err)

		err = task.Execute(ctx)
		assert.ErrorIs(t, err, enrichment.ErrTransientFailure)
		assert.Equal(t, TaskStatusFailed, task.Status())

		got, err := stores.Words.Get(ctx, word.ID)
		require.NoError(t, err)
		assert.False(t, got.Enriched)
		assert.False(t, got.EnrichError)
	})

	t.Run("permanent failure marks the word", func(t *testing.T) {
		stores := testutils.NewMemStores()
		word := testutils.MustCreateWordForTest(t)
		require.NoError(t, stores.Words.Put(ctx, word))

		fake := &testutils.FakeEnricher{Err: fmt.Errorf("%w: refused", enrichment.ErrContentBlocked)}
		task, err := NewEnrichWordTask(word.ID, stores.Words, fake, fixedClock(), setupTestLogger())
		require.NoError(t, err)

		err = task.Execute(ctx)
		assert.ErrorIs(t, err, enrichment.ErrContentBlocked)

		got, err := stores.Words.Get(ctx, word.ID)
		require.NoError(t, err)
		assert.False(t, got.Enriched)
		assert.True(t, got.EnrichError)
	})

	t.Run("missing word", func(t *testing.T) {
		stores := testutils.NewMemStores()
		task, err := NewEnrichWordTask("wmissing", stores.Words, &testutils.FakeEnricher{}, fixedClock(), setupTestLogger())
		require.NoError(t, err)

		err = task.Execute(ctx)
		assert.ErrorIs(t, err, store.ErrWordNotFound)
	})
}

func TestNewEnrichWordTask_Validation(t *testing.T) {
	stores := testutils.NewMemStores()

	_, err := NewEnrichWordTask("", stores.Words, &testutils.FakeEnricher{}, nil, nil)
	assert.Error(t, err)

	_, err = NewEnrichWordTask("w1", nil, &testutils.FakeEnricher{}, nil, nil)
	assert.Error(t, err)

	_, err = NewEnrichWordTask("w1", stores.Words, nil, nil, nil)
	assert.ErrorIs(t, err, enrichment.ErrDisabled)
}
