package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-words/internal/events"
)

// TaskFactory builds a task from an event of the type it is registered for.
type TaskFactory interface {
	CreateTask(event *events.TaskRequestEvent) (Task, error)
}

// TaskFactoryFunc adapts a function to the TaskFactory interface.
type TaskFactoryFunc func(event *events.TaskRequestEvent) (Task, error)

// CreateTask calls f(event).
func (f TaskFactoryFunc) CreateTask(event *events.TaskRequestEvent) (Task, error) {
	return f(event)
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// by creating a task for each event and enqueueing it.
type TaskFactoryEventHandler struct {
	mu        sync.RWMutex
	factories map[string]TaskFactory
	queue     TaskQueueWriter
	logger    *slog.Logger
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates a new event handler that enqueues
// tasks on queue.
func NewTaskFactoryEventHandler(queue TaskQueueWriter, logger *slog.Logger) *TaskFactoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFactoryEventHandler{
		factories: make(map[string]TaskFactory),
		queue:     queue,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// Register sets the factory used for events of eventType.
func (h *TaskFactoryEventHandler) Register(eventType string, factory TaskFactory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.factories[eventType] = factory
}

// HandleEvent creates the task for the event and enqueues it. Events
// without a registered factory are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	h.mu.RLock()
	factory, ok := h.factories[event.Type]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	t, err := factory.CreateTask(event)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.queue.Enqueue(t); err != nil {
		h.logger.Error("failed to enqueue task",
			"error", err,
			"task_id", t.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	h.logger.Debug("task created and enqueued",
		"task_id", t.ID(),
		"task_type", t.Type(),
		"event_id", event.ID)
	return nil
}
