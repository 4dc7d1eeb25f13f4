package gemini

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"google.golang.org/genai"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Enricher implements the enrichment.Enricher interface using
// Google's Gemini API.
type Enricher struct {
	*caller

	enrichTemplate   *template.Template
	examplesTemplate *template.Template
}

// Ensure Enricher implements enrichment.Enricher interface
var _ enrichment.Enricher = (*Enricher)(nil)

// NewEnricher creates a new Enricher with a Gemini API client.
//
// The enrichment prompt comes from config.PromptTemplatePath when set and
// from the embedded template otherwise.
func NewEnricher(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Enricher, error) {
	models, err := newModels(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newEnricher(logger, cfg, models)
}

// newEnricher builds an Enricher around any content generator.
func newEnricher(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) (*Enricher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", enrichment.ErrInvalidConfig)
	}

	enrichTmpl, err := loadTemplate("enrich", cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}
	examplesTmpl, err := loadTemplate("examples", "")
	if err != nil {
		return nil, err
	}

	return &Enricher{
		caller:           newCaller(logger.With(slog.String("component", "gemini_enricher")), cfg, models),
		enrichTemplate:   enrichTmpl,
		examplesTemplate: examplesTmpl,
	}, nil
}

// loadTemplate parses the override file when one is given, otherwise the
// embedded template of that name.
func loadTemplate(name, overridePath string) (*template.Template, error) {
	var (
		content []byte
		err     error
	)
	if overridePath != "" {
		content, err = os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				enrichment.ErrInvalidConfig, overridePath, err)
		}
	} else {
		content, err = promptFS.ReadFile("prompts/" + name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("%w: missing embedded template %s: %v",
				enrichment.ErrInvalidConfig, name, err)
		}
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			enrichment.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// Enrich implements enrichment.Enricher.Enrich
func (e *Enricher) Enrich(ctx context.Context, word *domain.WordItem) (*enrichment.Result, error) {
	if word == nil || strings.TrimSpace(word.Raw) == "" {
		return nil, fmt.Errorf("%w: word has no raw form", enrichment.ErrEnrichmentFailed)
	}

	prompt, err := e.createPrompt(ctx, e.enrichTemplate, promptData{
		Raw:          word.Raw,
		English:      word.English,
		Dutch:        word.Dutch,
		ExampleCount: enrichment.ExampleCount,
		MaxSynonyms:  domain.MaxSynonyms,
	})
	if err != nil {
		return nil, err
	}

	text, err := e.generateJSON(ctx, genai.Text(prompt), jsonConfig(enrichSchema()))
	if err != nil {
		return nil, err
	}

	var parsed enrichResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", enrichment.ErrInvalidResponse, err)
	}

	result := parsed.toResult()
	if err := result.Validate(); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "word enriched",
		"word_id", word.ID,
		"examples", len(result.Examples),
		"synonyms", len(result.Synonyms))
	return result, nil
}

// MoreExamples implements enrichment.Enricher.MoreExamples
func (e *Enricher) MoreExamples(ctx context.Context, word *domain.WordItem) ([]domain.ExampleSentence, error) {
	if word == nil || strings.TrimSpace(word.Raw) == "" {
		return nil, fmt.Errorf("%w: word has no raw form", enrichment.ErrEnrichmentFailed)
	}

	existing := make([]string, 0, len(word.Examples))
	for _, ex := range word.Examples {
		existing = append(existing, ex.Native)
	}

	prompt, err := e.createPrompt(ctx, e.examplesTemplate, promptData{
		Raw:          word.Raw,
		Existing:     existing,
		ExampleCount: enrichment.ExampleCount,
	})
	if err != nil {
		return nil, err
	}

	text, err := e.generateJSON(ctx, genai.Text(prompt), jsonConfig(examplesSchema()))
	if err != nil {
		return nil, err
	}

	var parsed examplesResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", enrichment.ErrInvalidResponse, err)
	}
	if len(parsed.Examples) == 0 {
		return nil, fmt.Errorf("%w: no example sentences", enrichment.ErrInvalidResponse)
	}

	return toExamples(parsed.Examples), nil
}

