package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/store"
)

// ReviewStateStore implements the store.ReviewStateStore interface.
type ReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStateStore creates a new SQL implementation of the ReviewStateStore interface.
// If logger is nil, a default logger will be used.
func NewReviewStateStore(db store.DBTX, logger *slog.Logger) *ReviewStateStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure ReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*ReviewStateStore)(nil)

// WithTx implements store.ReviewStateStore.WithTx
func (s *ReviewStateStore) WithTx(tx *sqlx.Tx) store.ReviewStateStore {
	return &ReviewStateStore{db: tx, logger: s.logger}
}

// Get implements store.ReviewStateStore.Get
// Returns store.ErrReviewStateNotFound if the user has no state for the item.
func (s *ReviewStateStore) Get(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row reviewStateRow
	query := s.db.Rebind(`SELECT ` + reviewStateColumns + ` FROM review_states
		WHERE user_id = ? AND item_id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewStateNotFound
		}
		log.Error("failed to get review state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("item_id", itemID))
		return nil, MapError(err)
	}

	return row.toDomain(), nil
}

// GetAllForUser implements store.ReviewStateStore.GetAllForUser
func (s *ReviewStateStore) GetAllForUser(ctx context.Context, userID string) ([]*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []reviewStateRow
	query := s.db.Rebind(`SELECT ` + reviewStateColumns + ` FROM review_states
		WHERE user_id = ? ORDER BY item_id`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		log.Error("failed to list review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}

	states := make([]*domain.ReviewState, 0, len(rows))
	for i := range rows {
		states = append(states, rows[i].toDomain())
	}
	return states, nil
}

// The WHERE clause drops writes older than the stored record: those from an
// earlier epoch, or from the same epoch with fewer reviews.
const upsertReviewStateQuery = `
	INSERT INTO review_states (` + reviewStateColumns + `)
	VALUES (:user_id, :item_id, :due_at, :interval_days, :ease_factor, :repetitions,
		:lapses, :last_reviewed_at, :last_grade, :total_reviews, :success_streak, :epoch, :created_at, :updated_at)
	ON CONFLICT (user_id, item_id) DO UPDATE SET
		due_at = excluded.due_at,
		interval_days = excluded.interval_days,
		ease_factor = excluded.ease_factor,
		repetitions = excluded.repetitions,
		lapses = excluded.lapses,
		last_reviewed_at = excluded.last_reviewed_at,
		last_grade = excluded.last_grade,
		total_reviews = excluded.total_reviews,
		success_streak = excluded.success_streak,
		epoch = excluded.epoch,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	WHERE review_states.epoch < excluded.epoch
		OR (review_states.epoch = excluded.epoch AND review_states.total_reviews <= excluded.total_reviews)
`

// Put implements store.ReviewStateStore.Put
// Returns store.ErrStaleWrite when the stored record is newer.
func (s *ReviewStateStore) Put(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during put",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID),
			slog.String("item_id", state.ItemID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := sqlx.NamedExecContext(ctx, s.db, upsertReviewStateQuery, newReviewStateRow(state))
	if err != nil {
		log.Error("failed to put review state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID),
			slog.String("item_id", state.ItemID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrStaleWrite); err != nil {
		log.Warn("dropped stale review state write",
			slog.String("user_id", state.UserID),
			slog.String("item_id", state.ItemID),
			slog.Int("total_reviews", state.TotalReviews),
			slog.Int64("epoch", state.Epoch))
		return err
	}

	log.Debug("review state stored",
		slog.String("user_id", state.UserID),
		slog.String("item_id", state.ItemID),
		slog.Int("total_reviews", state.TotalReviews))
	return nil
}

// PutMany implements store.ReviewStateStore.PutMany
// On a plain connection the writes run in one transaction.
func (s *ReviewStateStore) PutMany(ctx context.Context, states []*domain.ReviewState) error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
			return s.WithTx(tx).PutMany(ctx, states)
		})
	}

	for _, st := range states {
		if err := s.Put(ctx, st); err != nil && !errors.Is(err, store.ErrStaleWrite) {
			return err
		}
	}
	return nil
}

// DeleteAllForUser implements store.ReviewStateStore.DeleteAllForUser
func (s *ReviewStateStore) DeleteAllForUser(ctx context.Context, userID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM review_states WHERE user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to delete review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return MapError(err)
	}

	n, _ := result.RowsAffected()
	log.Info("review states deleted",
		slog.String("user_id", userID),
		slog.Int64("count", n))
	return nil
}
