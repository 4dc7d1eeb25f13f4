package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// WordService is the part of service.WordService the handler uses.
type WordService interface {
	List(ctx context.Context) ([]*domain.WordItem, error)
	Get(ctx context.Context, id string) (*domain.WordItem, error)
	RequestEnrichment(ctx context.Context, id string) (bool, error)
	MoreExamples(ctx context.Context, id string) (*domain.WordItem, error)
}

// EnrichmentResponse reports whether an enrichment request was queued.
type EnrichmentResponse struct {
	WordID string `json:"word_id"`
	Queued bool   `json:"queued"`
}

// WordHandler handles word list requests.
type WordHandler struct {
	words  WordService
	logger *slog.Logger
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(words WordService, logger *slog.Logger) *WordHandler {
	if words == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("word service cannot be nil for WordHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WordHandler{
		words:  words,
		logger: logger.With(slog.String("component", "word_handler")),
	}
}

// ListWords handles GET /api/words.
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.words.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list words")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, words)
}

// GetWord handles GET /api/words/{id}.
func (h *WordHandler) GetWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	word, err := h.words.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get word")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, word)
}

// RequestEnrichment handles POST /api/words/{id}/enrich. It answers 202 when
// the word was queued and 200 when it is already enriched.
func (h *WordHandler) RequestEnrichment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	queued, err := h.words.RequestEnrichment(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request enrichment")
		return
	}

	status := http.StatusOK
	if queued {
		status = http.StatusAccepted
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("enrichment request handled",
		slog.String("word_id", id),
		slog.Bool("queued", queued))
	shared.RespondWithJSON(w, r, status, EnrichmentResponse{WordID: id, Queued: queued})
}

// MoreExamples handles POST /api/words/{id}/examples.
func (h *WordHandler) MoreExamples(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	word, err := h.words.MoreExamples(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate examples")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, word)
}
