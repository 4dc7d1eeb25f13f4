package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// Common errors
var (
	ErrNilState     = errors.New("review state cannot be nil")
	ErrInvalidGrade = errors.New("grade must be between 0 and 5")
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
)

// Status is the derived learning status of a review state. It is computed,
// never stored.
type Status string

// Possible status values
const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusDue      Status = "due"
	StatusMastered Status = "mastered"
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Advance computes the review state that follows a graded review
	Advance(state *domain.ReviewState, grade domain.Grade, now time.Time) (*domain.ReviewState, error)

	// Status classifies a review state at the given time
	Status(state *domain.ReviewState, now time.Time) Status

	// Postpone pushes the due time forward by a number of days
	Postpone(state *domain.ReviewState, days int, now time.Time) (*domain.ReviewState, error)

	// Params returns the parameters in use
	Params() *Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

var defaultSvc = NewDefaultService()

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Advance computes the next state with the default parameters.
func Advance(state *domain.ReviewState, grade domain.Grade, now time.Time) (*domain.ReviewState, error) {
	return defaultSvc.Advance(state, grade, now)
}

// Classify derives the status of a state with the default parameters.
func Classify(state *domain.ReviewState, now time.Time) Status {
	return defaultSvc.Status(state, now)
}

// NewState creates the initial review state of an item with the default parameters.
func NewState(userID, itemID string, now time.Time) (*domain.ReviewState, error) {
	return domain.NewReviewState(userID, itemID, now)
}

func (s *defaultService) Params() *Params {
	return s.params
}

// Advance implements the Service interface
func (s *defaultService) Advance(
	state *domain.ReviewState,
	grade domain.Grade,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if !grade.IsValid() {
		return nil, ErrInvalidGrade
	}

	return calculateNextState(state, grade, now, s.params), nil
}

// Status implements the Service interface. A nil state counts as new.
func (s *defaultService) Status(state *domain.ReviewState, now time.Time) Status {
	if state == nil {
		return StatusNew
	}
	return classify(state, now, s.params)
}

// Postpone implements the Service interface
func (s *defaultService) Postpone(
	state *domain.ReviewState,
	days int,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := state.Clone()
	next.DueAt = state.DueAt.AddDate(0, 0, days)
	next.UpdatedAt = now

	return next, nil
}
