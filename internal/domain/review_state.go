package domain

import (
	"errors"
	"time"
)

// Initial values of a freshly created review state.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Common validation errors for ReviewState
var (
	ErrEmptyStateUserID  = errors.New("review state user ID cannot be empty")
	ErrEmptyStateItemID  = errors.New("review state item ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrNegativeCounter   = errors.New("review counters cannot be negative")
)

// ReviewState is the scheduling record of one user for one word item.
// It is created once per item when the user's collection is initialised and
// replaced by a new value after every completed exercise.
type ReviewState struct {
	UserID         string    `json:"user_id"`
	ItemID         string    `json:"item_id"`
	DueAt          time.Time `json:"due_at"`
	IntervalDays   int       `json:"interval_days"`
	EaseFactor     float64   `json:"ease_factor"`
	Repetitions    int       `json:"repetitions"`
	Lapses         int       `json:"lapses"`
	LastReviewedAt time.Time `json:"last_reviewed_at"` // zero when never reviewed
	LastGrade      Grade     `json:"last_grade"`
	TotalReviews   int       `json:"total_reviews"`
	SuccessStreak  int       `json:"success_streak"`
	// Epoch counts progress resets. A write from an older epoch is stale.
	Epoch          int64     `json:"epoch"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewReviewState creates the initial review state of an item for a user.
// The item is due immediately.
func NewReviewState(userID, itemID string, now time.Time) (*ReviewState, error) {
	s := &ReviewState{
		UserID:       userID,
		ItemID:       itemID,
		DueAt:        now,
		IntervalDays: 0,
		EaseFactor:   InitialEaseFactor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks if the review state has valid data.
func (s *ReviewState) Validate() error {
	if s.UserID == "" {
		return ErrEmptyStateUserID
	}

	if s.ItemID == "" {
		return ErrEmptyStateItemID
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.Repetitions < 0 || s.Lapses < 0 || s.TotalReviews < 0 || s.SuccessStreak < 0 || s.Epoch < 0 {
		return ErrNegativeCounter
	}

	return nil
}

// Supersedes reports whether s may replace stored. A later epoch always
// wins; within an epoch the record with at least as many reviews wins.
func (s *ReviewState) Supersedes(stored *ReviewState) bool {
	if s.Epoch != stored.Epoch {
		return s.Epoch > stored.Epoch
	}
	return s.TotalReviews >= stored.TotalReviews
}

// Clone returns a copy of the review state.
func (s *ReviewState) Clone() *ReviewState {
	c := *s
	return &c
}
