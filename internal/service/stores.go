package service

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/store"
)

// Stores bundles the stores the services work with.
type Stores struct {
	Words    store.WordStore
	States   store.ReviewStateStore
	Stats    store.StatsStore
	Settings store.SettingsStore
}

// Validate checks that every store is set.
func (s Stores) Validate() error {
	if s.Words == nil || s.States == nil || s.Stats == nil || s.Settings == nil {
		return errors.New("all stores must be provided")
	}
	return nil
}

// WithTx returns the stores bound to tx.
func (s Stores) WithTx(tx *sqlx.Tx) Stores {
	return Stores{
		Words:    s.Words.WithTx(tx),
		States:   s.States.WithTx(tx),
		Stats:    s.Stats.WithTx(tx),
		Settings: s.Settings.WithTx(tx),
	}
}

// inTransaction runs fn against stores bound to one transaction on db. With
// no database, as with in-memory stores, fn runs against the stores directly.
func inTransaction(ctx context.Context, db *sqlx.DB, stores Stores, fn func(ctx context.Context, stores Stores) error) error {
	if db == nil {
		return fn(ctx, stores)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, stores.WithTx(tx))
	})
}
