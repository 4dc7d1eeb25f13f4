package session

import (
	"github.com/phrazzld/scry-words/internal/domain"
)

// Step is the kind of a queued step.
type Step string

// Step kinds
const (
	StepIntro    Step = "intro"
	StepExercise Step = "exercise"
)

// Candidate pairs a word with the user's review state for it.
type Candidate struct {
	Word  *domain.WordItem
	State *domain.ReviewState
}

// Item is one step of a session queue. State is the review-state snapshot the
// step is played with; it is refreshed whenever the same word is answered
// earlier in the session.
type Item struct {
	Word     *domain.WordItem    `json:"word"`
	State    *domain.ReviewState `json:"state"`
	Step     Step                `json:"step"`
	Exercise domain.ExerciseType `json:"exercise"`
	IsNew    bool                `json:"is_new"`
}

// WordID returns the ID of the item's word.
func (i *Item) WordID() string {
	return i.Word.ID
}
