package gemini

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"google.golang.org/genai"
)

// contentGenerator is the part of the genai client this package uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// newModels creates a Gemini API client and returns its models service.
func newModels(ctx context.Context, cfg config.LLMConfig) (contentGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", enrichment.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			enrichment.ErrInvalidConfig, err)
	}
	return client.Models, nil
}

// caller issues Gemini requests with retries. Enricher and Tutor share it.
type caller struct {
	logger *slog.Logger
	config config.LLMConfig
	models contentGenerator
	model  string

	rngMu sync.Mutex
	rng   *rand.Rand

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func newCaller(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) *caller {
	return &caller{
		logger: logger,
		config: cfg,
		models: models,
		model:  cfg.ModelName,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  sleepContext,
	}
}

// jsonConfig asks for a JSON response matching schema.
func jsonConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
}

// createPrompt renders a prompt template.
func (c *caller) createPrompt(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := buf.String()
	c.logger.DebugContext(ctx, "prompt generated",
		"template_name", tmpl.Name(),
		"prompt_length", len(prompt))
	return prompt, nil
}

// generateJSON makes a call to the Gemini API with exponential backoff retry logic.
//
// Transient errors are retried up to config.MaxRetries times with a delay of
// baseDelay * 2^attempt * (0.5 + rand(0, 0.5)). Safety blocks and malformed
// responses are returned immediately.
func (c *caller) generateJSON(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	maxRetries := c.config.MaxRetries
	baseDelaySeconds := c.config.RetryDelaySeconds

	if maxRetries < 0 {
		c.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		c.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		c.logger.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		resp, err := c.models.GenerateContent(ctx, c.model, contents, genConfig)
		if err == nil {
			text, respErr := extractText(resp)
			if respErr != nil {
				c.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
					"attempt", attemptNum,
					"error", respErr)
				return "", respErr
			}
			return text, nil
		}

		c.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", enrichment.ErrTransientFailure, ctx.Err())
		}

		if attempt >= maxRetries {
			c.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				enrichment.ErrTransientFailure, maxRetries, err)
		}

		delay := c.backoff(baseDelaySeconds, attempt)
		c.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		if err := c.sleep(ctx, delay); err != nil {
			c.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", err)
			return "", fmt.Errorf("%w: %v", enrichment.ErrTransientFailure, err)
		}
	}
}

func (c *caller) backoff(baseDelaySeconds, attempt int) time.Duration {
	c.rngMu.Lock()
	jitterFactor := 0.5 + c.rng.Float64()*0.5
	c.rngMu.Unlock()

	seconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt)) * jitterFactor
	return time.Duration(seconds * float64(time.Second))
}

// extractText returns the concatenated text of the first candidate, or a
// permanent error when the response carries none.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", enrichment.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", enrichment.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", enrichment.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", enrichment.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty text in response", enrichment.ErrInvalidResponse)
	}
	return sb.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
