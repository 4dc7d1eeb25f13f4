package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
)

// TutorSessionStore persists tutor conversations.
type TutorSessionStore interface {
	// Get returns a session by ID.
	// Returns ErrTutorSessionNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.TutorSession, error)

	// ListForUser returns the user's sessions, most recently updated first.
	ListForUser(ctx context.Context, userID string) ([]*domain.TutorSession, error)

	// Put inserts or replaces a session with all of its messages.
	Put(ctx context.Context, session *domain.TutorSession) error

	// DeleteAllForUser removes every session of the user.
	DeleteAllForUser(ctx context.Context, userID string) error

	// WithTx returns a new TutorSessionStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) TutorSessionStore
}
