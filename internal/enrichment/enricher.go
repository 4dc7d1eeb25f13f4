package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// ExampleCount is the number of example sentences an enrichment should carry.
const ExampleCount = 3

// Enricher defines the interface for producing learning data for a word.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Enricher interface {
	// Enrich produces learning data for the word's raw form.
	// It returns an error wrapping one of the package's sentinel errors on failure.
	Enrich(ctx context.Context, word *domain.WordItem) (*Result, error)

	// MoreExamples produces fresh example sentences for the word.
	MoreExamples(ctx context.Context, word *domain.WordItem) ([]domain.ExampleSentence, error)
}

// Result is the learning data returned by an Enricher.
type Result struct {
	Vowelized       string                   `json:"vowelized"`
	Transliteration string                   `json:"transliteration"`
	PartOfSpeech    string                   `json:"part_of_speech"`
	English         string                   `json:"english"`
	Dutch           string                   `json:"dutch"`
	Synonyms        []domain.Synonym         `json:"synonyms"`
	Examples        []domain.ExampleSentence `json:"examples"`
	Notes           string                   `json:"notes"`
}

// Validate checks that the result is usable: at least one complete example
// sentence and no synonym without its native form.
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidResponse)
	}

	if len(r.Examples) == 0 {
		return fmt.Errorf("%w: no example sentences", ErrInvalidResponse)
	}

	for i, ex := range r.Examples {
		if strings.TrimSpace(ex.Native) == "" {
			return fmt.Errorf("%w: example %d has no sentence", ErrInvalidResponse, i)
		}
	}

	for i, syn := range r.Synonyms {
		if strings.TrimSpace(syn.Native) == "" {
			return fmt.Errorf("%w: synonym %d has no native form", ErrInvalidResponse, i)
		}
	}

	return nil
}

// Apply returns a copy of word with the result merged in. Glosses from the
// word list always win over the model's; empty result fields keep the
// word's current value. Synonyms are capped at domain.MaxSynonyms.
func Apply(word *domain.WordItem, result *Result, now time.Time) *domain.WordItem {
	out := *word

	out.Vowelized = firstNonEmpty(result.Vowelized, word.Vowelized)
	out.Transliteration = firstNonEmpty(result.Transliteration, word.Transliteration)
	out.PartOfSpeech = firstNonEmpty(result.PartOfSpeech, word.PartOfSpeech)
	out.English = firstNonEmpty(word.English, result.English)
	out.Dutch = firstNonEmpty(word.Dutch, result.Dutch)

	synonyms := result.Synonyms
	if len(synonyms) > domain.MaxSynonyms {
		synonyms = synonyms[:domain.MaxSynonyms]
	}
	out.Synonyms = append([]domain.Synonym{}, synonyms...)
	out.Examples = append([]domain.ExampleSentence{}, result.Examples...)
	out.Notes = result.Notes

	out.Enriched = true
	out.EnrichError = false
	out.UpdatedAt = now
	return &out
}

// MarkFailed returns a copy of word flagged as failed so background sweeps
// stop picking it up.
func MarkFailed(word *domain.WordItem, now time.Time) *domain.WordItem {
	out := *word
	out.EnrichError = true
	out.UpdatedAt = now
	return &out
}

// AppendExamples returns a copy of word with examples added after the
// existing ones. Sentences already present are skipped.
func AppendExamples(word *domain.WordItem, examples []domain.ExampleSentence, now time.Time) *domain.WordItem {
	out := *word
	out.Examples = append([]domain.ExampleSentence{}, word.Examples...)

	seen := make(map[string]struct{}, len(out.Examples))
	for _, ex := range out.Examples {
		seen[strings.TrimSpace(ex.Native)] = struct{}{}
	}
	for _, ex := range examples {
		key := strings.TrimSpace(ex.Native)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Examples = append(out.Examples, ex)
	}

	out.UpdatedAt = now
	return &out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
