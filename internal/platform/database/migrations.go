package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// goose keeps its dialect, base FS and logger in package state.
var gooseMu sync.Mutex

// Migration commands accepted by Migrate.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateStatus  = "status"
	MigrateVersion = "version"
	MigrateReset   = "reset"
)

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. Unlike goose's default logger it does not
// exit; the error is returned to the caller instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate runs a goose command against db using the embedded migrations for
// the connection's dialect.
func Migrate(ctx context.Context, db *sqlx.DB, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	dialect := DialectOf(db)
	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command),
		slog.String("dialect", string(dialect)),
	)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&slogGooseLogger{logger: log})

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	dir := path.Join("migrations", string(dialect))

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db.DB, dir)
	case MigrateDown:
		err = goose.DownContext(ctx, db.DB, dir)
	case MigrateStatus:
		err = goose.StatusContext(ctx, db.DB, dir)
	case MigrateVersion:
		err = goose.VersionContext(ctx, db.DB, dir)
	case MigrateReset:
		err = goose.ResetContext(ctx, db.DB, dir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration completed")
	return nil
}
