package tutor

import (
	"context"
	"errors"
	"sort"

	"github.com/phrazzld/scry-words/internal/domain"
)

var (
	// ErrDisabled is returned when no language model is configured.
	ErrDisabled = errors.New("tutor is not configured")

	// ErrReplyFailed is returned when the model could not produce a reply.
	ErrReplyFailed = errors.New("tutor reply failed")
)

// LearnedWord is a word the tutor may use, written the way the learner saw it.
type LearnedWord struct {
	Arabic  string `json:"arabic"`
	Meaning string `json:"meaning"`
}

// Request is everything a Responder needs for the next reply.
type Request struct {
	Language   domain.Language
	Vocabulary []LearnedWord
	History    []domain.TutorMessage
}

// Responder writes the next assistant message of a tutor conversation.
type Responder interface {
	Reply(ctx context.Context, req Request) (string, error)
}

// LearnedVocabulary returns the enriched words the user has reviewed at
// least once, glossed in lang and ordered by Arabic form.
func LearnedVocabulary(words []*domain.WordItem, states map[string]*domain.ReviewState, lang domain.Language) []LearnedWord {
	out := make([]LearnedWord, 0, len(states))
	for _, w := range words {
		st, ok := states[w.ID]
		if !ok || st.TotalReviews == 0 || !w.Enriched {
			continue
		}
		arabic := w.Vowelized
		if arabic == "" {
			arabic = w.Raw
		}
		out = append(out, LearnedWord{Arabic: arabic, Meaning: lang.Gloss(w)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Arabic < out[j].Arabic })
	return out
}

var intros = map[domain.Language]string{
	domain.LanguageEnglish: "Hi! I'm your Arabic tutor. I'll help you practice using the words you've learned. Let's start!",
	domain.LanguageDutch:   "Hoi! Ik ben je Arabische tutor. Ik help je oefenen met de woorden die je hebt geleerd. Laten we beginnen!",
}

// Intro is the greeting that opens every session.
func Intro(lang domain.Language) string {
	if s, ok := intros[lang]; ok {
		return s
	}
	return intros[domain.LanguageEnglish]
}
