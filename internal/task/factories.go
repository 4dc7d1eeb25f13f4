package task

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/store"
)

// PersistStateTaskFactory creates PersistStateTasks from
// events.TypePersistReviewState events.
type PersistStateTaskFactory struct {
	States    store.ReviewStateStore
	Policy    RetryPolicy
	OnFailure FailureHook
	Logger    *slog.Logger
}

// CreateTask implements TaskFactory.
func (f *PersistStateTaskFactory) CreateTask(event *events.TaskRequestEvent) (Task, error) {
	var payload events.PersistReviewStatePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return NewPersistStateTask(payload.SessionID, payload.State, f.States, f.Policy, f.OnFailure, f.Logger)
}

// EnrichWordTaskFactory creates EnrichWordTasks from events.TypeEnrichWord events.
type EnrichWordTaskFactory struct {
	Words    store.WordStore
	Enricher enrichment.Enricher
	Now      func() time.Time
	Logger   *slog.Logger
}

// CreateTask implements TaskFactory.
func (f *EnrichWordTaskFactory) CreateTask(event *events.TaskRequestEvent) (Task, error) {
	var payload events.EnrichWordPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return NewEnrichWordTask(payload.WordID, f.Words, f.Enricher, f.Now, f.Logger)
}
