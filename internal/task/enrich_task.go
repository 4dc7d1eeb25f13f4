package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/store"
)

// EnrichWordTask fetches learning data for one word and stores the merged result.
type EnrichWordTask struct {
	baseTask

	wordID   string
	words    store.WordStore
	enricher enrichment.Enricher
	now      func() time.Time
	logger   *slog.Logger
}

// Ensure EnrichWordTask implements Task interface
var _ Task = (*EnrichWordTask)(nil)

// NewEnrichWordTask creates a task that enriches the word with the given ID.
func NewEnrichWordTask(
	wordID string,
	words store.WordStore,
	enricher enrichment.Enricher,
	now func() time.Time,
	logger *slog.Logger,
) (*EnrichWordTask, error) {
	if wordID == "" {
		return nil, errors.New("word ID cannot be empty")
	}
	if words == nil {
		return nil, errors.New("word store cannot be nil")
	}
	if enricher == nil {
		return nil, enrichment.ErrDisabled
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &EnrichWordTask{
		wordID:   wordID,
		words:    words,
		enricher: enricher,
		now:      now,
		logger:   logger.With("component", "enrich_word_task"),
	}
	t.init(TaskTypeEnrichWord)
	return t, nil
}

// Execute enriches the word unless it already is. Transient enricher
// failures leave the word untouched so a later sweep retries it; any other
// failure marks the word as failed.
func (t *EnrichWordTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	log := t.logger.With("task_id", t.ID(), "word_id", t.wordID)

	word, err := t.words.Get(ctx, t.wordID)
	if err != nil {
		return t.finish(fmt.Errorf("load word %s: %w", t.wordID, err))
	}
	if word.Enriched {
		log.Debug("word already enriched")
		return t.finish(nil)
	}

	result, err := t.enricher.Enrich(ctx, word)
	if err != nil {
		if errors.Is(err, enrichment.ErrTransientFailure) {
			log.Warn("enrichment failed transiently, leaving word for a later sweep", "error", err)
			return t.finish(err)
		}

		log.Error("enrichment failed, marking word", "error", err)
		if putErr := t.words.Put(ctx, enrichment.MarkFailed(word, t.now())); putErr != nil {
			return t.finish(fmt.Errorf("mark word %s failed: %w", t.wordID, putErr))
		}
		return t.finish(err)
	}

	if err := t.words.Put(ctx, enrichment.Apply(word, result, t.now())); err != nil {
		return t.finish(fmt.Errorf("store enriched word %s: %w", t.wordID, err))
	}

	log.Info("word enriched")
	return t.finish(nil)
}
