package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
)

// StatsStore persists daily activity statistics.
type StatsStore interface {
	// GetDay returns the stats of a user for a day (YYYY-MM-DD).
	// Returns ErrStatsNotFound if there are none.
	GetDay(ctx context.Context, userID, day string) (*domain.DailyStats, error)

	// ListForUser returns every stats record of the user ordered by day.
	ListForUser(ctx context.Context, userID string) ([]*domain.DailyStats, error)

	// Put inserts or replaces the stats of a user and day.
	Put(ctx context.Context, stats *domain.DailyStats) error

	// DeleteAllForUser removes every stats record of the user.
	DeleteAllForUser(ctx context.Context, userID string) error

	// WithTx returns a new StatsStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) StatsStore
}

// SettingsStore persists user settings.
type SettingsStore interface {
	// Get returns the stored settings of a user.
	// Returns ErrSettingsNotFound if there are none.
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)

	// Put inserts or replaces the settings of a user.
	Put(ctx context.Context, settings *domain.UserSettings) error

	// Delete removes the settings of a user. Deleting absent settings is not an error.
	Delete(ctx context.Context, userID string) error

	// WithTx returns a new SettingsStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) SettingsStore
}
