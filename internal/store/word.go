package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
)

// WordStore defines the interface for word content persistence.
// Words are global; the core only reads them.
type WordStore interface {
	// List returns every word ordered by raw form.
	List(ctx context.Context) ([]*domain.WordItem, error)

	// Get retrieves a word by ID.
	// Returns ErrWordNotFound if the word does not exist.
	Get(ctx context.Context, id string) (*domain.WordItem, error)

	// Put inserts or replaces a word. It validates the word first.
	Put(ctx context.Context, word *domain.WordItem) error

	// PutMany inserts or replaces several words. Implementations should run
	// the writes atomically when they can.
	PutMany(ctx context.Context, words []*domain.WordItem) error

	// ListUnenriched returns up to limit words that are neither enriched nor
	// marked as failed, oldest first.
	ListUnenriched(ctx context.Context, limit int) ([]*domain.WordItem, error)

	// Count returns the number of stored words.
	Count(ctx context.Context) (int, error)

	// WithTx returns a new WordStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) WordStore
}
