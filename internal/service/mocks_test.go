package service

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/tutor"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventEmitter mocks the events.EventEmitter interface and keeps every
// event it accepted.
type MockEventEmitter struct {
	mock.Mock

	mu     sync.Mutex
	events []*events.TaskRequestEvent
}

// newMockEmitter returns an emitter that accepts every event.
func newMockEmitter() *MockEventEmitter {
	m := &MockEventEmitter{}
	m.On("EmitEvent", mock.Anything, mock.Anything).Return(nil)
	return m
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	if err := args.Error(0); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventEmitter) ofType(eventType string) []*events.TaskRequestEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.TaskRequestEvent, 0)
	for _, ev := range m.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (m *MockEventEmitter) persistedStates(t *testing.T) []*domain.ReviewState {
	t.Helper()
	out := make([]*domain.ReviewState, 0)
	for _, ev := range m.ofType(events.TypePersistReviewState) {
		var payload events.PersistReviewStatePayload
		require.NoError(t, ev.UnmarshalPayload(&payload))
		out = append(out, payload.State)
	}
	return out
}

// MockEnricher mocks the enrichment.Enricher interface
type MockEnricher struct {
	mock.Mock
}

var _ enrichment.Enricher = (*MockEnricher)(nil)

func (m *MockEnricher) Enrich(ctx context.Context, word *domain.WordItem) (*enrichment.Result, error) {
	args := m.Called(ctx, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.Result), args.Error(1)
}

func (m *MockEnricher) MoreExamples(ctx context.Context, word *domain.WordItem) ([]domain.ExampleSentence, error) {
	args := m.Called(ctx, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExampleSentence), args.Error(1)
}

// MockTutorResponder mocks the tutor.Responder interface
type MockTutorResponder struct {
	mock.Mock
}

var _ tutor.Responder = (*MockTutorResponder)(nil)

func (m *MockTutorResponder) Reply(ctx context.Context, req tutor.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
