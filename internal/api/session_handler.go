package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/service"
)

// SessionService is the part of service.SessionService the handler uses.
type SessionService interface {
	Start(ctx context.Context, userID string) (*service.StepView, error)
	Current(ctx context.Context, userID string) (*service.StepView, error)
	CompleteIntro(ctx context.Context, userID string) (*service.StepView, error)
	Answer(ctx context.Context, userID string, input service.AnswerInput) (*service.AnswerView, error)
	Abandon(ctx context.Context, userID string) error
}

// AnswerRequest is the body of POST /api/users/{userID}/sessions/current/answer.
// At least one field must be set; see service.AnswerInput for precedence.
type AnswerRequest struct {
	Correct *bool  `json:"correct,omitempty"`
	Outcome string `json:"outcome,omitempty" validate:"omitempty,oneof=again hard good easy"`
	Grade   *int   `json:"grade,omitempty" validate:"omitempty,gte=0,lte=5"`
	Answer  string `json:"answer,omitempty" validate:"omitempty,max=200"`
}

// SessionHandler handles study session requests.
type SessionHandler struct {
	sessions SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionService, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session service cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /api/users/{userID}/sessions.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	view, err := h.sessions.Start(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// CurrentStep handles GET /api/users/{userID}/sessions/current. A finished
// session has no current step and answers 204.
func (h *SessionHandler) CurrentStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	view, err := h.sessions.Current(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get current step")
		return
	}
	if view.Done {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// CompleteIntro handles POST /api/users/{userID}/sessions/current/intro.
func (h *SessionHandler) CompleteIntro(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	view, err := h.sessions.CompleteIntro(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete introduction")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// SubmitAnswer handles POST /api/users/{userID}/sessions/current/answer.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.sessions.Answer(r.Context(), userID, service.AnswerInput{
		Correct: req.Correct,
		Outcome: req.Outcome,
		Grade:   req.Grade,
		Answer:  req.Answer,
	})
	if err != nil {
		var opts []shared.ResponseOption
		if errors.Is(err, service.ErrPersistFailed) {
			opts = append(opts, shared.WithElevatedLogLevel())
		}
		HandleAPIError(w, r, err, "Failed to submit answer", opts...)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("answer submitted",
		slog.String("user_id", userID),
		slog.Bool("correct", result.Result.Correct))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// AbandonSession handles DELETE /api/users/{userID}/sessions/current.
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	if err := h.sessions.Abandon(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to abandon session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
