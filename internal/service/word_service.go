package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/store"
)

// WordService gives access to the shared word list.
type WordService struct {
	words    store.WordStore
	enricher enrichment.Enricher
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

// NewWordService creates a WordService. enricher may be nil when no language
// model is configured; MoreExamples then returns enrichment.ErrDisabled.
func NewWordService(
	words store.WordStore,
	enricher enrichment.Enricher,
	emitter events.EventEmitter,
	clock func() time.Time,
	logger *slog.Logger,
) (*WordService, error) {
	if words == nil {
		return nil, errors.New("word store cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WordService{
		words:    words,
		enricher: enricher,
		emitter:  emitter,
		now:      clock,
		logger:   logger.With(slog.String("component", "word_service")),
	}, nil
}

// List returns every word.
func (s *WordService) List(ctx context.Context) ([]*domain.WordItem, error) {
	words, err := s.words.List(ctx)
	if err != nil {
		return nil, NewServiceError("list_words", "failed to list words", err)
	}
	return words, nil
}

// Get returns one word.
func (s *WordService) Get(ctx context.Context, id string) (*domain.WordItem, error) {
	word, err := s.words.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return word, nil
}

// RequestEnrichment queues the word for enrichment. It reports false without
// queueing when the word is already enriched.
func (s *WordService) RequestEnrichment(ctx context.Context, id string) (bool, error) {
	word, err := s.words.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if word.Enriched {
		return false, nil
	}

	event, err := events.NewEnrichWordEvent(word.ID)
	if err != nil {
		return false, NewServiceError("request_enrichment", "failed to create event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return false, NewServiceError("request_enrichment", "failed to queue enrichment", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("enrichment requested", slog.String("word_id", id))
	return true, nil
}

// MoreExamples asks the enricher for fresh example sentences and stores the
// ones the word does not have yet.
func (s *WordService) MoreExamples(ctx context.Context, id string) (*domain.WordItem, error) {
	if s.enricher == nil {
		return nil, enrichment.ErrDisabled
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	word, err := s.words.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	examples, err := s.enricher.MoreExamples(ctx, word)
	if err != nil {
		log.Warn("failed to generate examples",
			slog.String("word_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	updated := enrichment.AppendExamples(word, examples, s.now())
	if err := s.words.Put(ctx, updated); err != nil {
		return nil, NewServiceError("more_examples", "failed to store examples", err)
	}

	log.Info("examples added",
		slog.String("word_id", id),
		slog.Int("examples", len(updated.Examples)))
	return updated, nil
}
