package textmatch

import (
	"testing"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips harakat", "كِتَابٌ", "كتاب"},
		{"strips tatweel", "كتــاب", "كتاب"},
		{"folds hamza alif", "أكل", "اكل"},
		{"folds alif below", "إسلام", "اسلام"},
		{"folds madda", "آخر", "اخر"},
		{"ta marbuta", "مدرسة", "مدرسه"},
		{"alif maqsura", "على", "علي"},
		{"drops punctuation and spaces", " هل أنت؟ ", "هلانت"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestForms(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, Forms("a, b / c;d"))
	assert.Equal(t, []string{"دار", "بيت"}, Forms("دار، بيت"))
	assert.Empty(t, Forms(" , ;"))
}

func TestMatch(t *testing.T) {
	t.Parallel()
	assert.True(t, Match("كتاب", "كِتَاب"))
	assert.True(t, Match("كتاب؟", "قلم / كتاب"))
	assert.False(t, Match("قلم", "كتاب"))
	assert.True(t, MatchStrict(" كتاب ", "كتاب"))
	assert.False(t, MatchStrict("كتاب", "كِتَاب"))
}

func TestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		target string
		want   domain.Grade
	}{
		{"exact ignoring harakat", "كتاب", "كِتَاب", 5},
		{"normalized match", "مدرسه", "مدرسة", 4},
		{"hamza folded", "اكل", "أكل", 4},
		{"one letter off a long word", "مستشفيت", "مستشفيات", 3},
		{"one letter off a short word", "مكتب", "مكتبة", 2},
		{"half right", "كلب", "كتاب", 1},
		{"unrelated", "قلم", "كتاب", 0},
		{"best of several forms", "بيت", "دار، بيت", 5},
		{"empty input", "", "كتاب", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.input, tt.target))
		})
	}
}

func TestTransliterate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "كتاب", Transliterate("ktaab"))
	assert.Equal(t, "شمس", Transliterate("shms"))
	assert.Equal(t, "القمر", Transliterate("alqmr"))
	assert.Equal(t, "ب?", Transliterate("b?"))
}
