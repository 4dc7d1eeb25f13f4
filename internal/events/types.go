package events

import (
	"fmt"

	"github.com/phrazzld/scry-words/internal/domain"
)

// Event types emitted by the services.
const (
	// TypePersistReviewState requests that a review state be written to the store.
	TypePersistReviewState = "persist_review_state"

	// TypeEnrichWord requests enrichment of a single word.
	TypeEnrichWord = "enrich_word"
)

// PersistReviewStatePayload carries the complete review state to write.
// SessionID identifies the session that produced it, so failures can be
// reported back to it.
type PersistReviewStatePayload struct {
	SessionID string              `json:"session_id"`
	State     *domain.ReviewState `json:"state"`
}

// EnrichWordPayload identifies the word to enrich.
type EnrichWordPayload struct {
	WordID string `json:"word_id"`
}

// NewPersistReviewStateEvent creates an event requesting that state be persisted.
func NewPersistReviewStateEvent(sessionID string, state *domain.ReviewState) (*TaskRequestEvent, error) {
	if state == nil {
		return nil, fmt.Errorf("review state cannot be nil")
	}
	return NewTaskRequestEvent(TypePersistReviewState, PersistReviewStatePayload{
		SessionID: sessionID,
		State:     state,
	})
}

// NewEnrichWordEvent creates an event requesting enrichment of a word.
func NewEnrichWordEvent(wordID string) (*TaskRequestEvent, error) {
	if wordID == "" {
		return nil, fmt.Errorf("word ID cannot be empty")
	}
	return NewTaskRequestEvent(TypeEnrichWord, EnrichWordPayload{WordID: wordID})
}
