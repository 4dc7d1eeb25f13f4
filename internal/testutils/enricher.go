package testutils

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
)

// FakeEnricher is a scriptable enrichment.Enricher.
type FakeEnricher struct {
	mu sync.Mutex

	// EnrichFn overrides the default behaviour of Enrich when set.
	EnrichFn func(ctx context.Context, word *domain.WordItem) (*enrichment.Result, error)
	// Examples are returned by MoreExamples.
	Examples []domain.ExampleSentence
	// Err, when set, is returned by both methods.
	Err error

	enrichCalls []string
}

var _ enrichment.Enricher = (*FakeEnricher)(nil)

// StandardResult returns a valid enrichment result for raw.
func StandardResult(raw string) *enrichment.Result {
	return &enrichment.Result{
		Vowelized:       raw + "ُ",
		Transliteration: "kitaab",
		PartOfSpeech:    "noun",
		English:         "book",
		Dutch:           "boek",
		Synonyms: []domain.Synonym{
			{Native: "مؤلف", English: "work", Dutch: "werk"},
		},
		Examples: []domain.ExampleSentence{
			{Native: "هذا " + raw, English: "This is a book", Dutch: "Dit is een boek"},
		},
	}
}

// Enrich implements enrichment.Enricher.
func (f *FakeEnricher) Enrich(ctx context.Context, word *domain.WordItem) (*enrichment.Result, error) {
	f.mu.Lock()
	f.enrichCalls = append(f.enrichCalls, word.ID)
	fn, err := f.EnrichFn, f.Err
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, word)
	}
	if err != nil {
		return nil, err
	}
	return StandardResult(word.Raw), nil
}

// MoreExamples implements enrichment.Enricher.
func (f *FakeEnricher) MoreExamples(ctx context.Context, word *domain.WordItem) ([]domain.ExampleSentence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]domain.ExampleSentence{}, f.Examples...), nil
}

// EnrichCalls returns the IDs of the words passed to Enrich, in call order.
func (f *FakeEnricher) EnrichCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.enrichCalls...)
}
