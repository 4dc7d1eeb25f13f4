package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewState(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	s, err := NewReviewState("u1", "w1", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "w1", s.ItemID)
	assert.Equal(t, 0, s.IntervalDays)
	assert.Equal(t, InitialEaseFactor, s.EaseFactor)
	assert.Equal(t, now, s.DueAt)
	assert.True(t, s.LastReviewedAt.IsZero())
	assert.Zero(t, s.TotalReviews)

	_, err = NewReviewState("", "w1", now)
	assert.ErrorIs(t, err, ErrEmptyStateUserID)

	_, err = NewReviewState("u1", "", now)
	assert.ErrorIs(t, err, ErrEmptyStateItemID)
}

func TestReviewStateValidate(t *testing.T) {
	t.Parallel()
	valid := ReviewState{UserID: "u", ItemID: "w", EaseFactor: 2.5}

	tests := []struct {
		name    string
		mutate  func(s *ReviewState)
		wantErr error
	}{
		{"valid", func(s *ReviewState) {}, nil},
		{"minimum ease", func(s *ReviewState) { s.EaseFactor = 1.3 }, nil},
		{"negative interval", func(s *ReviewState) { s.IntervalDays = -1 }, ErrInvalidInterval},
		{"ease too low", func(s *ReviewState) { s.EaseFactor = 1.29 }, ErrInvalidEaseFactor},
		{"negative lapses", func(s *ReviewState) { s.Lapses = -1 }, ErrNegativeCounter},
		{"negative streak", func(s *ReviewState) { s.SuccessStreak = -1 }, ErrNegativeCounter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReviewStateClone(t *testing.T) {
	s := &ReviewState{UserID: "u", ItemID: "w", EaseFactor: 2.5, Lapses: 2}
	c := s.Clone()
	c.Lapses = 5
	assert.Equal(t, 2, s.Lapses)
}

func TestReviewStateSupersedes(t *testing.T) {
	stored := &ReviewState{Epoch: 1, TotalReviews: 3}

	tests := []struct {
		name     string
		incoming ReviewState
		want     bool
	}{
		{"more reviews", ReviewState{Epoch: 1, TotalReviews: 4}, true},
		{"same reviews", ReviewState{Epoch: 1, TotalReviews: 3}, true},
		{"fewer reviews", ReviewState{Epoch: 1, TotalReviews: 2}, false},
		{"later epoch", ReviewState{Epoch: 2, TotalReviews: 0}, true},
		{"earlier epoch", ReviewState{Epoch: 0, TotalReviews: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.incoming.Supersedes(stored))
		})
	}
}
