package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
)

// TutorService is the part of service.TutorService the handler uses.
type TutorService interface {
	Start(ctx context.Context, userID string, lang domain.Language) (*domain.TutorSession, error)
	Send(ctx context.Context, userID, sessionID, content string) (*domain.TutorSession, error)
	Get(ctx context.Context, userID, sessionID string) (*domain.TutorSession, error)
	List(ctx context.Context, userID string) ([]*domain.TutorSession, error)
}

// StartTutorRequest is the optional body of POST /api/users/{userID}/tutor.
// The language defaults to English.
type StartTutorRequest struct {
	Language string `json:"language,omitempty" validate:"omitempty,language"`
}

// TutorMessageRequest is the body of
// POST /api/users/{userID}/tutor/{sessionID}/messages.
type TutorMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

// TutorHandler handles tutor chat requests.
type TutorHandler struct {
	tutor  TutorService
	logger *slog.Logger
}

// NewTutorHandler creates a new TutorHandler.
func NewTutorHandler(tutor TutorService, logger *slog.Logger) *TutorHandler {
	if tutor == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tutor service cannot be nil for TutorHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TutorHandler{
		tutor:  tutor,
		logger: logger.With(slog.String("component", "tutor_handler")),
	}
}

// StartSession handles POST /api/users/{userID}/tutor.
func (h *TutorHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	var req StartTutorRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	sess, err := h.tutor.Start(r.Context(), userID, domain.Language(req.Language))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start tutor session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, sess)
}

// ListSessions handles GET /api/users/{userID}/tutor.
func (h *TutorHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	sessions, err := h.tutor.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tutor sessions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessions)
}

// GetSession handles GET /api/users/{userID}/tutor/{sessionID}.
func (h *TutorHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}
	sessionID, ok := pathParam(w, r, "sessionID")
	if !ok {
		return
	}

	sess, err := h.tutor.Get(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tutor session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sess)
}

// SendMessage handles POST /api/users/{userID}/tutor/{sessionID}/messages and
// answers with the session including the tutor's reply.
func (h *TutorHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}
	sessionID, ok := pathParam(w, r, "sessionID")
	if !ok {
		return
	}

	var req TutorMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.tutor.Send(r.Context(), userID, sessionID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send tutor message")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sess)
}
