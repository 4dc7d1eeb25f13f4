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

// StatsStore implements the store.StatsStore interface.
type StatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStatsStore creates a new SQL implementation of the StatsStore interface.
func NewStatsStore(db store.DBTX, logger *slog.Logger) *StatsStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure StatsStore implements store.StatsStore interface
var _ store.StatsStore = (*StatsStore)(nil)

// WithTx implements store.StatsStore.WithTx
func (s *StatsStore) WithTx(tx *sqlx.Tx) store.StatsStore {
	return &StatsStore{db: tx, logger: s.logger}
}

const dailyStatsColumns = `user_id, day, reviews_done, new_learned, accuracy, time_spent_seconds`

// GetDay implements store.StatsStore.GetDay
func (s *StatsStore) GetDay(ctx context.Context, userID, day string) (*domain.DailyStats, error) {
	var row dailyStatsRow
	query := s.db.Rebind(`SELECT ` + dailyStatsColumns + ` FROM daily_stats WHERE user_id = ? AND day = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, userID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStatsNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get daily stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("day", day))
		return nil, MapError(err)
	}
	return row.toDomain()
}

// ListForUser implements store.StatsStore.ListForUser
func (s *StatsStore) ListForUser(ctx context.Context, userID string) ([]*domain.DailyStats, error) {
	var rows []dailyStatsRow
	query := s.db.Rebind(`SELECT ` + dailyStatsColumns + ` FROM daily_stats WHERE user_id = ? ORDER BY day`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		return nil, MapError(err)
	}

	out := make([]*domain.DailyStats, 0, len(rows))
	for i := range rows {
		d, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Put implements store.StatsStore.Put
func (s *StatsStore) Put(ctx context.Context, stats *domain.DailyStats) error {
	if stats.UserID == "" || stats.Day == "" {
		return fmt.Errorf("%w: daily stats need a user and a day", store.ErrInvalidEntity)
	}

	row, err := newDailyStatsRow(stats)
	if err != nil {
		return err
	}

	_, err = sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO daily_stats (`+dailyStatsColumns+`)
		VALUES (:user_id, :day, :reviews_done, :new_learned, :accuracy, :time_spent_seconds)
		ON CONFLICT (user_id, day) DO UPDATE SET
			reviews_done = excluded.reviews_done,
			new_learned = excluded.new_learned,
			accuracy = excluded.accuracy,
			time_spent_seconds = excluded.time_spent_seconds
	`, row)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to put daily stats",
			slog.String("error", err.Error()),
			slog.String("user_id", stats.UserID),
			slog.String("day", stats.Day))
		return MapError(err)
	}
	return nil
}

// DeleteAllForUser implements store.StatsStore.DeleteAllForUser
func (s *StatsStore) DeleteAllForUser(ctx context.Context, userID string) error {
	query := s.db.Rebind(`DELETE FROM daily_stats WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return MapError(err)
	}
	return nil
}

// SettingsStore implements the store.SettingsStore interface.
type SettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSettingsStore creates a new SQL implementation of the SettingsStore interface.
func NewSettingsStore(db store.DBTX, logger *slog.Logger) *SettingsStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SettingsStore{
		db:     db,
		logger: logger.With(slog.String("component", "settings_store")),
	}
}

// Ensure SettingsStore implements store.SettingsStore interface
var _ store.SettingsStore = (*SettingsStore)(nil)

// WithTx implements store.SettingsStore.WithTx
func (s *SettingsStore) WithTx(tx *sqlx.Tx) store.SettingsStore {
	return &SettingsStore{db: tx, logger: s.logger}
}

// Get implements store.SettingsStore.Get
func (s *SettingsStore) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	var row settingsRow
	query := s.db.Rebind(`SELECT user_id, daily_new_target, daily_review_target, backfill
		FROM user_settings WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSettingsNotFound
		}
		return nil, MapError(err)
	}

	return &domain.UserSettings{
		UserID:            row.UserID,
		DailyNewTarget:    row.DailyNewTarget,
		DailyReviewTarget: row.DailyReviewTarget,
		Backfill:          row.Backfill,
	}, nil
}

// Put implements store.SettingsStore.Put
func (s *SettingsStore) Put(ctx context.Context, settings *domain.UserSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row := settingsRow{
		UserID:            settings.UserID,
		DailyNewTarget:    settings.DailyNewTarget,
		DailyReviewTarget: settings.DailyReviewTarget,
		Backfill:          settings.Backfill,
	}
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO user_settings (user_id, daily_new_target, daily_review_target, backfill)
		VALUES (:user_id, :daily_new_target, :daily_review_target, :backfill)
		ON CONFLICT (user_id) DO UPDATE SET
			daily_new_target = excluded.daily_new_target,
			daily_review_target = excluded.daily_review_target,
			backfill = excluded.backfill
	`, row)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to put settings",
			slog.String("error", err.Error()),
			slog.String("user_id", settings.UserID))
		return MapError(err)
	}
	return nil
}

// Delete implements store.SettingsStore.Delete
func (s *SettingsStore) Delete(ctx context.Context, userID string) error {
	query := s.db.Rebind(`DELETE FROM user_settings WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return MapError(err)
	}
	return nil
}
