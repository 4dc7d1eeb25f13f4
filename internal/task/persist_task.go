package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/store"
)

// PersistFailure describes a review-state write that could not be completed.
type PersistFailure struct {
	SessionID string
	UserID    string
	ItemID    string
	Err       error
}

// FailureHook is told about writes that failed after every retry.
type FailureHook func(ctx context.Context, failure PersistFailure)

// PersistStateTask writes one complete review state to the store, retrying
// transient failures with exponential backoff.
type PersistStateTask struct {
	baseTask

	sessionID string
	state     *domain.ReviewState
	states    store.ReviewStateStore
	policy    RetryPolicy
	sleep     SleepFunc
	onFailure FailureHook
	logger    *slog.Logger
}

// Ensure PersistStateTask implements Task interface
var _ Task = (*PersistStateTask)(nil)

// NewPersistStateTask creates a task that writes state. onFailure may be nil.
func NewPersistStateTask(
	sessionID string,
	state *domain.ReviewState,
	states store.ReviewStateStore,
	policy RetryPolicy,
	onFailure FailureHook,
	logger *slog.Logger,
) (*PersistStateTask, error) {
	if state == nil {
		return nil, errors.New("review state cannot be nil")
	}
	if states == nil {
		return nil, errors.New("review state store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &PersistStateTask{
		sessionID: sessionID,
		state:     state.Clone(),
		states:    states,
		policy:    policy,
		onFailure: onFailure,
		logger:    logger.With("component", "persist_state_task"),
	}
	t.init(TaskTypePersistReviewState)
	return t, nil
}

// Execute writes the state. A stale write means a newer state already landed
// and counts as success; an invalid state is not retried.
func (t *PersistStateTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	log := t.logger.With(
		"task_id", t.ID(),
		"user_id", t.state.UserID,
		"item_id", t.state.ItemID,
		"total_reviews", t.state.TotalReviews,
	)

	attempts := 0
	err := Retry(ctx, t.policy, t.sleep, func(ctx context.Context) error {
		attempts++
		err := t.states.Put(ctx, t.state)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, store.ErrStaleWrite):
			log.Debug("newer review state already stored")
			return nil
		case errors.Is(err, store.ErrInvalidEntity):
			return Permanent(err)
		default:
			log.Warn("review state write failed", "attempt", attempts, "error", err)
			return err
		}
	})

	if err != nil {
		log.Error("giving up on review state write", "attempts", attempts, "error", err)
		if t.onFailure != nil {
			t.onFailure(ctx, PersistFailure{
				SessionID: t.sessionID,
				UserID:    t.state.UserID,
				ItemID:    t.state.ItemID,
				Err:       err,
			})
		}
		return t.finish(fmt.Errorf("persist review state %s/%s: %w", t.state.UserID, t.state.ItemID, err))
	}

	log.Debug("review state persisted", "attempts", attempts)
	return t.finish(nil)
}
