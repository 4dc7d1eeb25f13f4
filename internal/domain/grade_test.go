package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade(t *testing.T) {
	t.Parallel()

	for g := Grade(-1); g <= 6; g++ {
		assert.Equal(t, g >= 0 && g <= 5, g.IsValid(), "grade %d", g)
	}
	assert.False(t, Grade(2).IsSuccess())
	assert.True(t, Grade(3).IsSuccess())

	assert.Equal(t, Grade(4), GradeFromCorrect(true))
	assert.Equal(t, Grade(1), GradeFromCorrect(false))
}

func TestGradeFromOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome ReviewOutcome
		want    Grade
	}{
		{ReviewOutcomeAgain, 1},
		{ReviewOutcomeHard, 3},
		{ReviewOutcomeGood, 4},
		{ReviewOutcomeEasy, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			g, err := GradeFromOutcome(tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}

	_, err := GradeFromOutcome("meh")
	assert.ErrorIs(t, err, ErrInvalidReviewOutcome)
}
