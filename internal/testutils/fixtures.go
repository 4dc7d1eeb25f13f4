package testutils

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/stretchr/testify/require"
)

// FixedNow is the reference time used by fixtures.
var FixedNow = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

// WordOption customises a word created by MustCreateWordForTest.
type WordOption func(w *domain.WordItem)

// WithRaw sets the raw form and recomputes the ID.
func WithRaw(raw string) WordOption {
	return func(w *domain.WordItem) {
		w.Raw = raw
		w.ID = domain.WordID(raw)
	}
}

// WithGlosses sets the English and Dutch glosses.
func WithGlosses(english, dutch string) WordOption {
	return func(w *domain.WordItem) {
		w.English = english
		w.Dutch = dutch
	}
}

// WithExamples sets the example sentences.
func WithExamples(examples ...domain.ExampleSentence) WordOption {
	return func(w *domain.WordItem) {
		w.Examples = examples
	}
}

// WithEnriched marks the word as enriched.
func WithEnriched() WordOption {
	return func(w *domain.WordItem) {
		w.Enriched = true
	}
}

// MustCreateWordForTest creates a valid word. It does not store it.
func MustCreateWordForTest(t *testing.T, opts ...WordOption) *domain.WordItem {
	t.Helper()
	w, err := domain.NewWordItem("كتاب", "book", "boek", FixedNow)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(w)
	}
	require.NoError(t, w.Validate())
	return w
}

// MustCreateWordsForTest creates n distinct valid words named word0..word(n-1).
func MustCreateWordsForTest(t *testing.T, n int) []*domain.WordItem {
	t.Helper()
	words := make([]*domain.WordItem, 0, n)
	for i := 0; i < n; i++ {
		raw := "word" + string(rune('a'+i/26)) + string(rune('a'+i%26))
		words = append(words, MustCreateWordForTest(t, WithRaw(raw), WithGlosses(raw+"-en", raw+"-nl")))
	}
	return words
}

// StateOption customises a review state created by MustCreateStateForTest.
type StateOption func(s *domain.ReviewState)

// WithUser sets the owning user.
func WithUser(userID string) StateOption {
	return func(s *domain.ReviewState) {
		s.UserID = userID
	}
}

// WithInterval sets the interval in days.
func WithInterval(days int) StateOption {
	return func(s *domain.ReviewState) {
		s.IntervalDays = days
	}
}

// WithStreak sets the success streak.
func WithStreak(streak int) StateOption {
	return func(s *domain.ReviewState) {
		s.SuccessStreak = streak
	}
}

// WithReviews sets the total review count and repetitions.
func WithReviews(total int) StateOption {
	return func(s *domain.ReviewState) {
		s.TotalReviews = total
		s.Repetitions = total
		s.LastReviewedAt = FixedNow.Add(-24 * time.Hour)
		s.LastGrade = domain.CorrectGrade
	}
}

// WithLapses sets the lapse count.
func WithLapses(lapses int) StateOption {
	return func(s *domain.ReviewState) {
		s.Lapses = lapses
	}
}

// WithDue sets the due time.
func WithDue(due time.Time) StateOption {
	return func(s *domain.ReviewState) {
		s.DueAt = due
	}
}

// MustCreateStateForTest creates a valid initial review state for user "u1",
// then applies opts.
func MustCreateStateForTest(t *testing.T, itemID string, opts ...StateOption) *domain.ReviewState {
	t.Helper()
	s, err := domain.NewReviewState("u1", itemID, FixedNow)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(s)
	}
	require.NoError(t, s.Validate())
	return s
}
