package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEnrichWordEvent("wabc")
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("global handlers see every event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &recordingHandler{}
		handler2 := &recordingHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEnrichWordEvent("wabc")
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
	})

	t.Run("subscribers see only their type", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		enrich := &recordingHandler{}
		persist := &recordingHandler{}
		emitter.Subscribe(TypeEnrichWord, enrich)
		emitter.Subscribe(TypePersistReviewState, persist)

		event, err := NewEnrichWordEvent("wabc")
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, enrich.HandledCount)
		assert.Equal(t, 0, persist.HandledCount)
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{HandlerError: errors.New("handler error")}
		success := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.Subscribe(TypeEnrichWord, success)

		event, err := NewEnrichWordEvent("wabc")
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failing.HandledCount)
		assert.Equal(t, 1, success.HandledCount)
	})
}
