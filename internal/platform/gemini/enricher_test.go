package gemini

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const validEnrichJSON = `{
	"vowelized": "كِتَاب",
	"transliteration": "kitaab",
	"part_of_speech": "noun",
	"english": "book",
	"dutch": "boek",
	"synonyms": [{"arabic": "مجلد", "english": "volume", "dutch": "band"}],
	"examples": [
		{"arabic": "قرأت الكتاب", "english": "I read the book", "dutch": "Ik las het boek"},
		{"arabic": "الكتاب جديد", "english": "The book is new", "dutch": "Het boek is nieuw"},
		{"arabic": "أين الكتاب؟", "english": "Where is the book?", "dutch": "Waar is het boek?"}
	],
	"notes": "Plural: كتب"
}`

// fakeGenerator returns queued responses in order and records prompts.
type fakeGenerator struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	prompts   []string
	systems   []string
	contents  [][]*genai.Content
	calls     int
}

func (f *fakeGenerator) GenerateContent(
	_ context.Context,
	_ string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	f.contents = append(f.contents, contents)
	if cfg != nil && cfg.SystemInstruction != nil && len(cfg.SystemInstruction.Parts) > 0 {
		f.systems = append(f.systems, cfg.SystemInstruction.Parts[0].Text)
	}
	if cfg == nil || cfg.ResponseMIMEType != "application/json" {
		return nil, errors.New("expected a JSON response config")
	}
	var resp *genai.GenerateContentResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		MaxRetries:        2,
		RetryDelaySeconds: 1,
	}
}

func newTestEnricher(t *testing.T, gen *fakeGenerator, cfg config.LLMConfig) (*Enricher, *[]time.Duration) {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	e, err := newEnricher(log, cfg, gen)
	require.NoError(t, err)

	var delays []time.Duration
	e.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return e, &delays
}

func testWord(t *testing.T) *domain.WordItem {
	t.Helper()
	w, err := domain.NewWordItem("كتاب", "book", "boek", time.Now())
	require.NoError(t, err)
	return w
}

func TestEnrich_Success(t *testing.T) {
	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(validEnrichJSON)}}
	e, _ := newTestEnricher(t, gen, testConfig())

	res, err := e.Enrich(context.Background(), testWord(t))
	require.NoError(t, err)

	assert.Equal(t, "كِتَاب", res.Vowelized)
	assert.Equal(t, "noun", res.PartOfSpeech)
	require.Len(t, res.Synonyms, 1)
	assert.Equal(t, domain.Synonym{Native: "مجلد", English: "volume", Dutch: "band"}, res.Synonyms[0])
	assert.Len(t, res.Examples, 3)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Arabic word/phrase: كتاب")
	assert.Contains(t, gen.prompts[0], `"book"`)
}

func TestEnrich_RetriesTransientErrors(t *testing.T) {
	gen := &fakeGenerator{
		responses: []*genai.GenerateContentResponse{nil, nil, textResponse(validEnrichJSON)},
		errs:      []error{errors.New("503"), errors.New("503"), nil},
	}
	e, delays := newTestEnricher(t, gen, testConfig())

	_, err := e.Enrich(context.Background(), testWord(t))
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	require.Len(t, *delays, 2)
	// base 1s * 2^attempt * [0.5, 1.0]
	assert.GreaterOrEqual(t, (*delays)[0], 500*time.Millisecond)
	assert.LessOrEqual(t, (*delays)[0], time.Second)
	assert.GreaterOrEqual(t, (*delays)[1], time.Second)
	assert.LessOrEqual(t, (*delays)[1], 2*time.Second)
}

func TestEnrich_GivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("unavailable")
	gen := &fakeGenerator{errs: []error{boom, boom, boom, boom}}
	e, _ := newTestEnricher(t, gen, testConfig())

	_, err := e.Enrich(context.Background(), testWord(t))
	assert.ErrorIs(t, err, enrichment.ErrTransientFailure)
	assert.Equal(t, 3, gen.calls)
}

func TestEnrich_PermanentErrors(t *testing.T) {
	blocked := textResponse("")
	blocked.Candidates[0].FinishReason = genai.FinishReasonSafety

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want error
	}{
		{"safety block", blocked, enrichment.ErrContentBlocked},
		{"no candidates", &genai.GenerateContentResponse{}, enrichment.ErrInvalidResponse},
		{"nil response", nil, enrichment.ErrInvalidResponse},
		{"malformed json", textResponse("{not json"), enrichment.ErrInvalidResponse},
		{"no examples", textResponse(`{"examples": []}`), enrichment.ErrInvalidResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{tc.resp}}
			e, delays := newTestEnricher(t, gen, testConfig())

			_, err := e.Enrich(context.Background(), testWord(t))
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, gen.calls, "permanent errors must not be retried")
			assert.Empty(t, *delays)
		})
	}
}

func TestEnrich_CancelledDuringBackoff(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("unavailable")}}
	e, _ := newTestEnricher(t, gen, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	e.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := e.Enrich(ctx, testWord(t))
	assert.ErrorIs(t, err, enrichment.ErrTransientFailure)
	assert.Equal(t, 1, gen.calls)
}

func TestMoreExamples(t *testing.T) {
	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{
		textResponse(`{"examples": [{"arabic": "كتاب كبير", "english": "a big book", "dutch": "een groot boek"}]}`),
	}}
	e, _ := newTestEnricher(t, gen, testConfig())

	word := testWord(t)
	word.Examples = []domain.ExampleSentence{{Native: "قرأت الكتاب"}}

	examples, err := e.MoreExamples(context.Background(), word)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "كتاب كبير", examples[0].Native)
	assert.Contains(t, gen.prompts[0], "- قرأت الكتاب")
}

func TestNewEnricher_Validation(t *testing.T) {
	log, _ := logger.NewTestLogger(t)

	_, err := newEnricher(nil, testConfig(), &fakeGenerator{})
	assert.Error(t, err)

	cfg := testConfig()
	cfg.ModelName = ""
	_, err = newEnricher(log, cfg, &fakeGenerator{})
	assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)

	cfg = testConfig()
	cfg.PromptTemplatePath = filepath.Join(t.TempDir(), "missing.tmpl")
	_, err = newEnricher(log, cfg, &fakeGenerator{})
	assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)

	cfg = testConfig()
	cfg.GeminiAPIKey = ""
	_, err = NewEnricher(context.Background(), log, cfg)
	assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)
}

func TestNewEnricher_TemplateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Custom prompt for {{.Raw}}"), 0o600))

	cfg := testConfig()
	cfg.PromptTemplatePath = path
	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(validEnrichJSON)}}
	e, _ := newTestEnricher(t, gen, cfg)

	_, err := e.Enrich(context.Background(), testWord(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Custom prompt for كتاب"))
}
