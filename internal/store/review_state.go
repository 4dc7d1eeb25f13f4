package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
)

// ReviewStateStore defines the interface for per-user scheduling state.
// Every write carries the complete record.
type ReviewStateStore interface {
	// Get retrieves the review state of one item for one user.
	// Returns ErrReviewStateNotFound if the user has none.
	Get(ctx context.Context, userID, itemID string) (*domain.ReviewState, error)

	// GetAllForUser returns every review state of the user.
	GetAllForUser(ctx context.Context, userID string) ([]*domain.ReviewState, error)

	// Put inserts or replaces a review state. A write from an older Epoch,
	// or from the same Epoch with a lower TotalReviews, is dropped and
	// ErrStaleWrite returned, so a late retry cannot roll a newer state back.
	Put(ctx context.Context, state *domain.ReviewState) error

	// PutMany inserts or replaces several review states with the same
	// ordering rule as Put; stale entries are skipped silently.
	PutMany(ctx context.Context, states []*domain.ReviewState) error

	// DeleteAllForUser removes every review state of the user.
	DeleteAllForUser(ctx context.Context, userID string) error

	// WithTx returns a new ReviewStateStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) ReviewStateStore
}
