package database

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviewStates(t *testing.T) (*ReviewStateStore, *domain.WordItem) {
	t.Helper()
	db := openTestDB(t)
	w := newTestWord(t, "بيت", "house")
	require.NoError(t, NewWordStore(db, nil).Put(context.Background(), w))
	return NewReviewStateStore(db, nil), w
}

func TestReviewStateStore_PutAndGet(t *testing.T) {
	s, w := setupReviewStates(t)
	ctx := context.Background()

	state, err := domain.NewReviewState("u1", w.ID, testNow)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, state))

	got, err := s.Get(ctx, "u1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InitialEaseFactor, got.EaseFactor)
	assert.True(t, got.LastReviewedAt.IsZero())
	assert.WithinDuration(t, testNow, got.DueAt, time.Millisecond)

	state.TotalReviews = 1
	state.Repetitions = 1
	state.IntervalDays = 1
	state.LastGrade = domain.CorrectGrade
	state.LastReviewedAt = testNow
	state.DueAt = testNow.AddDate(0, 0, 1)
	require.NoError(t, s.Put(ctx, state))

	got, err = s.Get(ctx, "u1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalReviews)
	assert.Equal(t, domain.CorrectGrade, got.LastGrade)
	assert.WithinDuration(t, testNow, got.LastReviewedAt, time.Millisecond)
}

func TestReviewStateStore_GetMissing(t *testing.T) {
	s, w := setupReviewStates(t)
	_, err := s.Get(context.Background(), "nobody", w.ID)
	assert.ErrorIs(t, err, store.ErrReviewStateNotFound)
}

func TestReviewStateStore_StaleWriteDropped(t *testing.T) {
	s, w := setupReviewStates(t)
	ctx := context.Background()

	newer, err := domain.NewReviewState("u1", w.ID, testNow)
	require.NoError(t, err)
	newer.TotalReviews = 3
	newer.IntervalDays = 3
	require.NoError(t, s.Put(ctx, newer))

	older := newer.Clone()
	older.TotalReviews = 2
	older.IntervalDays = 1
	err = s.Put(ctx, older)
	assert.ErrorIs(t, err, store.ErrStaleWrite)

	got, err := s.Get(ctx, "u1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalReviews)
	assert.Equal(t, 3, got.IntervalDays)

	// An equal count is a retry of the same answer and is accepted.
	same := newer.Clone()
	same.IntervalDays = 4
	require.NoError(t, s.Put(ctx, same))
}

func TestReviewStateStore_EpochFencesOlderWrites(t *testing.T) {
	s, w := setupReviewStates(t)
	ctx := context.Background()

	before, err := domain.NewReviewState("u1", w.ID, testNow)
	require.NoError(t, err)
	before.TotalReviews = 4
	require.NoError(t, s.Put(ctx, before))

	afterReset, err := domain.NewReviewState("u1", w.ID, testNow)
	require.NoError(t, err)
	afterReset.Epoch = 1
	require.NoError(t, s.Put(ctx, afterReset), "a later epoch replaces more reviews")

	late := before.Clone()
	late.TotalReviews = 5
	assert.ErrorIs(t, s.Put(ctx, late), store.ErrStaleWrite)

	got, err := s.Get(ctx, "u1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Epoch)
	assert.Zero(t, got.TotalReviews)
}

func TestReviewStateStore_PutUnknownWord(t *testing.T) {
	s, _ := setupReviewStates(t)

	state, err := domain.NewReviewState("u1", "wnothere", testNow)
	require.NoError(t, err)
	err = s.Put(context.Background(), state)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestReviewStateStore_PutManySkipsStale(t *testing.T) {
	s, w := setupReviewStates(t)
	ctx := context.Background()

	current, err := domain.NewReviewState("u1", w.ID, testNow)
	require.NoError(t, err)
	current.TotalReviews = 5
	require.NoError(t, s.Put(ctx, current))

	stale := current.Clone()
	stale.TotalReviews = 1
	other, err := domain.NewReviewState("u2", w.ID, testNow)
	require.NoError(t, err)

	require.NoError(t, s.PutMany(ctx, []*domain.ReviewState{stale, other}))

	got, err := s.Get(ctx, "u1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalReviews)

	_, err = s.Get(ctx, "u2", w.ID)
	assert.NoError(t, err)
}

func TestReviewStateStore_GetAllAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	words := NewWordStore(db, nil)
	s := NewReviewStateStore(db, nil)

	a := newTestWord(t, "a", "1")
	b := newTestWord(t, "b", "2")
	require.NoError(t, words.PutMany(ctx, []*domain.WordItem{a, b}))

	for _, id := range []string{a.ID, b.ID} {
		st, err := domain.NewReviewState("u1", id, testNow)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, st))
	}
	other, err := domain.NewReviewState("u2", a.ID, testNow)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, other))

	all, err := s.GetAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteAllForUser(ctx, "u1"))

	all, err = s.GetAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)

	all, err = s.GetAllForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
