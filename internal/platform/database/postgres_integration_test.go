//go:build integration

package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/database"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/phrazzld/scry-words/internal/testdb"
	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_StoresRoundTrip(t *testing.T) {
	db := testdb.OpenPostgres(t)
	assert.Equal(t, database.DialectPostgres, database.DialectOf(db))

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		words := database.NewWordStore(tx, nil)
		states := database.NewReviewStateStore(tx, nil)

		word := testutils.MustCreateWordForTest(t)
		require.NoError(t, words.Put(ctx, word))

		state := testutils.MustCreateStateForTest(t, word.ID, testutils.WithReviews(2))
		require.NoError(t, states.Put(ctx, state))

		older := state.Clone()
		older.TotalReviews = 1
		err := states.Put(ctx, older)
		assert.True(t, errors.Is(err, store.ErrStaleWrite))

		got, err := states.Get(ctx, state.UserID, word.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalReviews)
	})
}

func TestPostgres_DuplicateAndMissing(t *testing.T) {
	db := testdb.OpenPostgres(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		settings := database.NewSettingsStore(tx, nil)

		_, err := settings.Get(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, settings.Put(ctx, domain.DefaultUserSettings("u1")))
		got, err := settings.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDailyNewTarget, got.DailyNewTarget)
	})
}
