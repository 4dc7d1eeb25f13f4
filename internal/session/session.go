package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
)

// Session errors
var (
	ErrSessionDone = errors.New("session has no remaining steps")
	ErrNotIntro    = errors.New("current step is not an introduction")
	ErrNotExercise = errors.New("current step is not an exercise")
)

// Requeue placement for failed answers: cursor+offset+rand[0,jitter).
const (
	requeueOffset = 3
	requeueJitter = 3
)

// StepResult describes the effect of one answered exercise.
type StepResult struct {
	Item          Item                `json:"item"`
	Previous      *domain.ReviewState `json:"previous"`
	State         *domain.ReviewState `json:"state"`
	Grade         domain.Grade        `json:"grade"`
	Correct       bool                `json:"correct"`
	Requeued      bool                `json:"requeued"`
	RequeuedAt    int                 `json:"requeued_at,omitempty"`
	FirstExposure bool                `json:"first_exposure"`
}

// Session drives a Queue: it advances the scheduler on every answered
// exercise and requeues failed words.
type Session struct {
	queue *Queue
	srs   srs.Service
	rng   *rand.Rand
	now   func() time.Time
}

// New creates a session over a queue. A nil clock uses time.Now in UTC.
func New(queue *Queue, srsService srs.Service, rng *rand.Rand, clock func() time.Time) *Session {
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Session{
		queue: queue,
		srs:   srsService,
		rng:   rng,
		now:   clock,
	}
}

// Queue returns the underlying queue.
func (s *Session) Queue() *Queue {
	return s.queue
}

// Current returns the current step, or nil once the session is done.
func (s *Session) Current() *Item {
	return s.queue.Current()
}

// Done reports whether the session has ended.
func (s *Session) Done() bool {
	return s.queue.Done()
}

// CompleteIntro moves past an introduction step. The scheduler is not involved.
func (s *Session) CompleteIntro() error {
	cur := s.queue.Current()
	if cur == nil {
		return ErrSessionDone
	}
	if cur.Step != StepIntro {
		return ErrNotIntro
	}

	s.queue.Advance()
	return nil
}

// Answer grades the current exercise.
//
// The word's review state is advanced with the grade and every queued step
// for the same word picks up the new state. A failed answer inserts a
// recognition retry three to five steps after the current one, clamped to the
// end of the queue. An invalid grade leaves the session untouched.
func (s *Session) Answer(grade domain.Grade) (*StepResult, error) {
	cur := s.queue.Current()
	if cur == nil {
		return nil, ErrSessionDone
	}
	if cur.Step != StepExercise {
		return nil, ErrNotExercise
	}

	previous := cur.State
	next, err := s.srs.Advance(previous, grade, s.now())
	if err != nil {
		return nil, err
	}

	result := &StepResult{
		Item:          *cur,
		Previous:      previous,
		State:         next,
		Grade:         grade,
		Correct:       grade.IsSuccess(),
		FirstExposure: cur.IsNew,
	}
	result.Item.State = next

	s.queue.updateWord(cur.WordID(), func(item *Item) {
		item.State = next
	})

	if !grade.IsSuccess() {
		pos := s.queue.Cursor() + requeueOffset + s.rng.Intn(requeueJitter)
		result.RequeuedAt = s.queue.InsertAt(pos, Item{
			Word:     cur.Word,
			State:    next,
			Step:     StepExercise,
			Exercise: domain.ExerciseRecognition,
		})
		result.Requeued = true
	}

	s.queue.Advance()
	return result, nil
}

// AnswerCorrect grades the current exercise from binary correctness.
func (s *Session) AnswerCorrect(correct bool) (*StepResult, error) {
	return s.Answer(domain.GradeFromCorrect(correct))
}

// UpdateWord replaces the word of every queued step with the same ID, for
// example after the word has been enriched.
func (s *Session) UpdateWord(word *domain.WordItem) {
	s.queue.updateWord(word.ID, func(item *Item) {
		item.Word = word
	})
}
