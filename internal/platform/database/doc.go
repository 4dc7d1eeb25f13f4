// Package database provides SQL implementations for the data storage
// interfaces defined in the internal/store package. The same stores run on
// PostgreSQL (through the pgx stdlib driver) and on SQLite (through
// go-sqlite3); queries are written once with ? placeholders and rebound by
// sqlx for the active driver. Schema changes are embedded goose migrations,
// one directory per dialect.
package database
