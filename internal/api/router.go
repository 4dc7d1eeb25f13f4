package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/scry-words/internal/api/middleware"
	"github.com/phrazzld/scry-words/internal/api/shared"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig holds the handlers and dependencies served by NewRouter.
type RouterConfig struct {
	Words    *WordHandler
	Progress *ProgressHandler
	Sessions *SessionHandler
	Tutor    *TutorHandler // optional; tutor routes are mounted only when set
	Health   HealthCheck
	Logger   *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/words", func(r chi.Router) {
			r.Get("/", cfg.Words.ListWords)
			r.Get("/{id}", cfg.Words.GetWord)
			r.Post("/{id}/enrich", cfg.Words.RequestEnrichment)
			r.Post("/{id}/examples", cfg.Words.MoreExamples)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/collection", cfg.Progress.InitializeCollection)
			r.Delete("/progress", cfg.Progress.ResetProgress)
			r.Get("/status", cfg.Progress.StatusCounts)
			r.Get("/stats", cfg.Progress.Stats)
			r.Get("/export", cfg.Progress.Export)
			r.Post("/import", cfg.Progress.Import)
			r.Get("/settings", cfg.Progress.GetSettings)
			r.Put("/settings", cfg.Progress.PutSettings)

			r.Post("/sessions", cfg.Sessions.StartSession)
			r.Get("/sessions/current", cfg.Sessions.CurrentStep)
			r.Post("/sessions/current/intro", cfg.Sessions.CompleteIntro)
			r.Post("/sessions/current/answer", cfg.Sessions.SubmitAnswer)
			r.Delete("/sessions/current", cfg.Sessions.AbandonSession)

			if cfg.Tutor != nil {
				r.Post("/tutor", cfg.Tutor.StartSession)
				r.Get("/tutor", cfg.Tutor.ListSessions)
				r.Get("/tutor/{sessionID}", cfg.Tutor.GetSession)
				r.Post("/tutor/{sessionID}/messages", cfg.Tutor.SendMessage)
			}
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Unavailable", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
