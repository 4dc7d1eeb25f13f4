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

// WordStore implements the store.WordStore interface.
type WordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWordStore creates a new SQL implementation of the WordStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewWordStore(db store.DBTX, logger *slog.Logger) *WordStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &WordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

// Ensure WordStore implements store.WordStore interface
var _ store.WordStore = (*WordStore)(nil)

// WithTx implements store.WordStore.WithTx
func (s *WordStore) WithTx(tx *sqlx.Tx) store.WordStore {
	return &WordStore{db: tx, logger: s.logger}
}

// List implements store.WordStore.List
func (s *WordStore) List(ctx context.Context) ([]*domain.WordItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []wordRow
	query := s.db.Rebind(`SELECT ` + wordColumns + ` FROM words ORDER BY raw`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query); err != nil {
		log.Error("failed to list words", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return wordsFromRows(rows)
}

// Get implements store.WordStore.Get
// Returns store.ErrWordNotFound if the word does not exist.
func (s *WordStore) Get(ctx context.Context, id string) (*domain.WordItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row wordRow
	query := s.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("word not found", slog.String("word_id", id))
			return nil, store.ErrWordNotFound
		}
		log.Error("failed to get word",
			slog.String("error", err.Error()),
			slog.String("word_id", id))
		return nil, MapError(err)
	}

	return row.toDomain()
}

const upsertWordQuery = `
	INSERT INTO words (` + wordColumns + `)
	VALUES (:id, :raw, :vowelized, :transliteration, :part_of_speech, :english, :dutch,
		:synonyms, :examples, :notes, :enriched, :enrich_error, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		vowelized = excluded.vowelized,
		transliteration = excluded.transliteration,
		part_of_speech = excluded.part_of_speech,
		english = excluded.english,
		dutch = excluded.dutch,
		synonyms = excluded.synonyms,
		examples = excluded.examples,
		notes = excluded.notes,
		enriched = excluded.enriched,
		enrich_error = excluded.enrich_error,
		updated_at = excluded.updated_at
`

// Put implements store.WordStore.Put
// It validates the word and inserts it, or replaces everything but the
// creation time when the ID already exists.
func (s *WordStore) Put(ctx context.Context, word *domain.WordItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := word.Validate(); err != nil {
		log.Warn("word validation failed during put",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row, err := newWordRow(word)
	if err != nil {
		return err
	}

	if _, err := sqlx.NamedExecContext(ctx, s.db, upsertWordQuery, row); err != nil {
		log.Error("failed to put word",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID))
		return MapError(err)
	}

	log.Debug("word stored", slog.String("word_id", word.ID))
	return nil
}

// PutMany implements store.WordStore.PutMany
// On a plain connection the writes run in one transaction.
func (s *WordStore) PutMany(ctx context.Context, words []*domain.WordItem) error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
			return s.WithTx(tx).PutMany(ctx, words)
		})
	}

	for _, w := range words {
		if err := s.Put(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// ListUnenriched implements store.WordStore.ListUnenriched
func (s *WordStore) ListUnenriched(ctx context.Context, limit int) ([]*domain.WordItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []wordRow
	query := s.db.Rebind(`SELECT ` + wordColumns + ` FROM words
		WHERE enriched = ? AND enrich_error = ?
		ORDER BY created_at, id
		LIMIT ?`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, false, false, limit); err != nil {
		log.Error("failed to list unenriched words", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return wordsFromRows(rows)
}

// Count implements store.WordStore.Count
func (s *WordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.db, &n, `SELECT COUNT(*) FROM words`); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func wordsFromRows(rows []wordRow) ([]*domain.WordItem, error) {
	words := make([]*domain.WordItem, 0, len(rows))
	for i := range rows {
		w, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}
