package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/service"
)

// ProgressService is the part of service.ProgressService the handler uses.
type ProgressService interface {
	InitializeCollection(ctx context.Context, userID string) (int, error)
	ResetProgress(ctx context.Context, userID string) error
	StatusCounts(ctx context.Context, userID string) (service.StatusCounts, error)
	Stats(ctx context.Context, userID string) (*service.StatsSummary, error)
	GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error)
	PutSettings(ctx context.Context, settings *domain.UserSettings) error
	Export(ctx context.Context, userID string) (*service.UserData, error)
	Import(ctx context.Context, userID string, data *service.UserData) error
}

// InitializeResponse reports how many review states were created.
type InitializeResponse struct {
	Created int `json:"created"`
}

// SettingsRequest is the body of PUT /api/users/{userID}/settings.
type SettingsRequest struct {
	DailyNewTarget    int  `json:"daily_new_target" validate:"gte=0,lte=500"`
	DailyReviewTarget int  `json:"daily_review_target" validate:"gte=0,lte=5000"`
	Backfill          bool `json:"backfill"`
}

// ProgressHandler handles per-user progress, statistics and settings.
type ProgressHandler struct {
	progress ProgressService
	logger   *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progress ProgressService, logger *slog.Logger) *ProgressHandler {
	if progress == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progress service cannot be nil for ProgressHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		progress: progress,
		logger:   logger.With(slog.String("component", "progress_handler")),
	}
}

// InitializeCollection handles POST /api/users/{userID}/collection.
func (h *ProgressHandler) InitializeCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	created, err := h.progress.InitializeCollection(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to initialize collection")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, InitializeResponse{Created: created})
}

// ResetProgress handles DELETE /api/users/{userID}/progress.
func (h *ProgressHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	if err := h.progress.ResetProgress(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to reset progress")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("progress reset", slog.String("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

// StatusCounts handles GET /api/users/{userID}/status.
func (h *ProgressHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	counts, err := h.progress.StatusCounts(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count words")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}

// Stats handles GET /api/users/{userID}/stats.
func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	stats, err := h.progress.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetSettings handles GET /api/users/{userID}/settings.
func (h *ProgressHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	settings, err := h.progress.GetSettings(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// PutSettings handles PUT /api/users/{userID}/settings.
func (h *ProgressHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	var req SettingsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	settings := &domain.UserSettings{
		UserID:            userID,
		DailyNewTarget:    req.DailyNewTarget,
		DailyReviewTarget: req.DailyReviewTarget,
		Backfill:          req.Backfill,
	}
	if err := h.progress.PutSettings(r.Context(), settings); err != nil {
		HandleAPIError(w, r, err, "Failed to store settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// Export handles GET /api/users/{userID}/export.
func (h *ProgressHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	data, err := h.progress.Export(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export user data")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="scry-words-`+userID+`.json"`)
	shared.RespondWithJSON(w, r, http.StatusOK, data)
}

// Import handles POST /api/users/{userID}/import. The body is the document
// produced by Export.
func (h *ProgressHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}

	var data service.UserData
	if err := shared.DecodeJSON(r, &data); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.progress.Import(r.Context(), userID, &data); err != nil {
		HandleAPIError(w, r, err, "Failed to import user data")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("user data imported",
		slog.String("user_id", userID),
		slog.Int("states", len(data.States)))
	w.WriteHeader(http.StatusNoContent)
}
