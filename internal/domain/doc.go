// Package domain contains the core entities of the vocabulary trainer: the
// imported word items, the per-user review state tracked by the scheduler,
// grades, exercise types, daily statistics and user settings. It is
// independent of any storage or delivery mechanism.
package domain
