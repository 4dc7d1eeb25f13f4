package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/api"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/database"
	"github.com/phrazzld/scry-words/internal/platform/gemini"
	"github.com/phrazzld/scry-words/internal/service"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/phrazzld/scry-words/internal/sweep"
	"github.com/phrazzld/scry-words/internal/task"
	"github.com/phrazzld/scry-words/internal/tutor"
)

// drainTimeout bounds how long shutdown waits for queued review-state writes.
const drainTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	stores   service.Stores
	tutorDB  store.TutorSessionStore
	enricher enrichment.Enricher
	tutor    tutor.Responder

	// Event system and background work
	emitter *events.InMemoryEventEmitter
	queue   *task.TaskQueue
	pool    *task.WorkerPool
	sweeper *sweep.Sweeper

	words    *service.WordService
	progress *service.ProgressService
	sessions *service.SessionService
	tutors   *service.TutorService
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be migrated.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		stores: service.Stores{
			Words:    database.NewWordStore(db, logger),
			States:   database.NewReviewStateStore(db, logger),
			Stats:    database.NewStatsStore(db, logger),
			Settings: database.NewSettingsStore(db, logger),
		},
		tutorDB: database.NewTutorSessionStore(db, logger),
	}

	if cfg.LLM.Enabled() {
		enricher, err := gemini.NewEnricher(ctx, logger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize enricher: %w", err)
		}
		app.enricher = enricher
		logger.Info("Gemini enricher initialized", "model", cfg.LLM.ModelName)

		responder, err := gemini.NewTutor(ctx, logger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tutor: %w", err)
		}
		app.tutor = responder
	} else {
		logger.Warn("no Gemini API key configured, enrichment and tutor disabled")
	}

	srsService := srs.NewDefaultService()
	clock := func() time.Time { return time.Now().UTC() }

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.queue = task.NewTaskQueue(cfg.Task.QueueSize, logger)
	app.pool = task.NewWorkerPool(app.queue, task.WorkerPoolConfig{WorkerCount: cfg.Task.WorkerCount}, logger)

	var err error
	app.progress, err = service.NewProgressService(app.stores, db, srsService, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}
	app.progress.UseSessionDefaults(cfg.Session)

	app.sessions, err = service.NewSessionService(app.stores, app.progress, app.emitter, srsService, cfg.Session, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	app.words, err = service.NewWordService(app.stores.Words, app.enricher, app.emitter, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create word service: %w", err)
	}

	app.tutors, err = service.NewTutorService(app.stores, app.tutorDB, app.tutor, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tutor service: %w", err)
	}

	handler := task.NewTaskFactoryEventHandler(app.queue, logger)
	handler.Register(events.TypePersistReviewState, &task.PersistStateTaskFactory{
		States: app.stores.States,
		Policy: task.RetryPolicy{
			MaxAttempts: cfg.Task.PersistMaxAttempts,
			BaseDelay:   time.Duration(cfg.Task.PersistBaseDelayMS) * time.Millisecond,
		},
		OnFailure: app.sessions.HandlePersistFailure,
		Logger:    logger,
	})
	if app.enricher != nil {
		handler.Register(events.TypeEnrichWord, &task.EnrichWordTaskFactory{
			Words:    app.stores.Words,
			Enricher: app.enricher,
			Now:      clock,
			Logger:   logger,
		})
	}
	app.emitter.RegisterHandler(handler)

	if cfg.Sweep.Enabled && app.enricher != nil {
		app.sweeper, err = sweep.New(app.stores.Words, app.emitter, cfg.Sweep, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create enrichment sweep: %w", err)
		}
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// router builds the HTTP handler tree.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Words:    api.NewWordHandler(app.words, app.logger),
		Progress: api.NewProgressHandler(app.progress, app.logger),
		Sessions: api.NewSessionHandler(app.sessions, app.logger),
		Tutor:    api.NewTutorHandler(app.tutors, app.logger),
		Health:   app.db.PingContext,
		Logger:   app.logger,
	})
}

// start launches the worker pool and the enrichment sweep.
func (app *application) start(ctx context.Context) error {
	app.pool.Start()
	if app.sweeper != nil {
		if err := app.sweeper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start enrichment sweep: %w", err)
		}
	}
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	if err := app.start(ctx); err != nil {
		app.cleanup()
		return err
	}

	if err := app.startHTTPServer(ctx, app.router()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued
// review-state writes are given drainTimeout to land before the database
// is closed.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	app.queue.Close()
	app.pool.Drain(drainTimeout)

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
