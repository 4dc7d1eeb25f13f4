package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypePersistReviewState writes a review state to the store
	TaskTypePersistReviewState = "persist_review_state"

	// TaskTypeEnrichWord enriches a word through the configured enricher
	TaskTypeEnrichWord = "enrich_word"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// baseTask holds the identity and status shared by all tasks.
type baseTask struct {
	id       uuid.UUID
	taskType string

	mu     sync.RWMutex
	status TaskStatus
}

func (t *baseTask) init(taskType string) {
	t.id = uuid.New()
	t.taskType = taskType
	t.status = TaskStatusPending
}

// ID returns the task's unique identifier
func (t *baseTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *baseTask) Type() string {
	return t.taskType
}

// Status returns the current task status
func (t *baseTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *baseTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// finish records the outcome of Execute and passes err through.
func (t *baseTask) finish(err error) error {
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return err
	}
	t.setStatus(TaskStatusCompleted)
	return nil
}
