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

// TutorSessionStore implements the store.TutorSessionStore interface.
type TutorSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTutorSessionStore creates a new SQL implementation of the TutorSessionStore interface.
func NewTutorSessionStore(db store.DBTX, logger *slog.Logger) *TutorSessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TutorSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "tutor_session_store")),
	}
}

// Ensure TutorSessionStore implements store.TutorSessionStore interface
var _ store.TutorSessionStore = (*TutorSessionStore)(nil)

// WithTx implements store.TutorSessionStore.WithTx
func (s *TutorSessionStore) WithTx(tx *sqlx.Tx) store.TutorSessionStore {
	return &TutorSessionStore{db: tx, logger: s.logger}
}

// Get implements store.TutorSessionStore.Get
func (s *TutorSessionStore) Get(ctx context.Context, id string) (*domain.TutorSession, error) {
	var row tutorSessionRow
	query := s.db.Rebind(`SELECT ` + tutorSessionColumns + ` FROM tutor_sessions WHERE id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTutorSessionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get tutor session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return nil, MapError(err)
	}
	return row.toDomain()
}

// ListForUser implements store.TutorSessionStore.ListForUser
func (s *TutorSessionStore) ListForUser(ctx context.Context, userID string) ([]*domain.TutorSession, error) {
	var rows []tutorSessionRow
	query := s.db.Rebind(`SELECT ` + tutorSessionColumns + ` FROM tutor_sessions
		WHERE user_id = ? ORDER BY updated_at DESC, id`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		return nil, MapError(err)
	}

	out := make([]*domain.TutorSession, 0, len(rows))
	for i := range rows {
		sess, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// Put implements store.TutorSessionStore.Put
func (s *TutorSessionStore) Put(ctx context.Context, session *domain.TutorSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row, err := newTutorSessionRow(session)
	if err != nil {
		return err
	}

	_, err = sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO tutor_sessions (`+tutorSessionColumns+`)
		VALUES (:id, :user_id, :language, :messages, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			language = excluded.language,
			messages = excluded.messages,
			updated_at = excluded.updated_at
		WHERE tutor_sessions.user_id = excluded.user_id
	`, row)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to put tutor session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID),
			slog.String("user_id", session.UserID))
		return MapError(err)
	}
	return nil
}

// DeleteAllForUser implements store.TutorSessionStore.DeleteAllForUser
func (s *TutorSessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	query := s.db.Rebind(`DELETE FROM tutor_sessions WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return MapError(err)
	}
	return nil
}
