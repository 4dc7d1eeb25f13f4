// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the scheduling core: word content, per-user review states, daily
// statistics, user settings and tutor conversations.
package store
