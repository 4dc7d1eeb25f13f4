// Package sweep periodically requests enrichment for words that have not
// been enriched yet.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/store"
)

// Sweeper emits an enrichment request for each un-enriched word, a batch
// per run.
type Sweeper struct {
	words     store.WordStore
	emitter   events.EventEmitter
	batchSize int
	interval  time.Duration

	mu        sync.Mutex
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// New creates a Sweeper from cfg.
func New(words store.WordStore, emitter events.EventEmitter, cfg config.SweepConfig, logger *slog.Logger) (*Sweeper, error) {
	if words == nil {
		return nil, errors.New("word store cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d minutes", cfg.IntervalMinutes)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		words:     words,
		emitter:   emitter,
		batchSize: cfg.BatchSize,
		interval:  time.Duration(cfg.IntervalMinutes) * time.Minute,
		logger:    logger.With("component", "enrichment_sweep"),
	}, nil
}

// RunOnce requests enrichment for up to one batch of words and returns how
// many requests were emitted.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	words, err := s.words.ListUnenriched(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unenriched words: %w", err)
	}

	emitted := 0
	for _, w := range words {
		event, err := events.NewEnrichWordEvent(w.ID)
		if err != nil {
			return emitted, fmt.Errorf("failed to create enrich event: %w", err)
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to request enrichment",
				"word_id", w.ID,
				"error", err)
			continue
		}
		emitted++
	}

	if emitted > 0 {
		s.logger.InfoContext(ctx, "requested enrichment", "count", emitted)
	}
	return emitted, nil
}

// Start schedules RunOnce every interval. Runs never overlap. ctx bounds
// every run; Stop ends the schedule.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return errors.New("sweep already started")
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(s.interval).Do(func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.ErrorContext(ctx, "enrichment sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule enrichment sweep: %w", err)
	}

	scheduler.StartAsync()
	s.scheduler = scheduler
	s.logger.Info("enrichment sweep started",
		"interval", s.interval.String(),
		"batch_size", s.batchSize)
	return nil
}

// Stop ends the schedule. It is safe to call when not started.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
	s.scheduler = nil
	s.logger.Info("enrichment sweep stopped")
}
