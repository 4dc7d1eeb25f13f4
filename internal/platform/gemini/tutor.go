package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/tutor"
	"google.golang.org/genai"
)

// tutorTemperature keeps replies varied without drifting off the word list.
const tutorTemperature float32 = 0.7

// Tutor implements tutor.Responder using Google's Gemini API.
type Tutor struct {
	*caller

	systemTemplate *template.Template
}

var _ tutor.Responder = (*Tutor)(nil)

// NewTutor creates a Tutor with a Gemini API client.
func NewTutor(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Tutor, error) {
	models, err := newModels(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newTutor(logger, cfg, models)
}

func newTutor(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) (*Tutor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", enrichment.ErrInvalidConfig)
	}

	tmpl, err := loadTemplate("tutor", "")
	if err != nil {
		return nil, err
	}

	return &Tutor{
		caller:         newCaller(logger.With(slog.String("component", "gemini_tutor")), cfg, models),
		systemTemplate: tmpl,
	}, nil
}

// Reply implements tutor.Responder.Reply
func (t *Tutor) Reply(ctx context.Context, req tutor.Request) (string, error) {
	system, err := t.createPrompt(ctx, t.systemTemplate, tutorPromptData{
		Language:   req.Language.Name(),
		Vocabulary: req.Vocabulary,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", tutor.ErrReplyFailed, err)
	}

	contents := historyContents(req.History)
	if len(contents) == 0 {
		return "", fmt.Errorf("%w: no learner message to answer", tutor.ErrReplyFailed)
	}

	genConfig := jsonConfig(tutorSchema())
	genConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	temperature := tutorTemperature
	genConfig.Temperature = &temperature

	text, err := t.generateJSON(ctx, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("%w: %w", tutor.ErrReplyFailed, err)
	}

	var parsed tutorResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return "", fmt.Errorf("%w: %w: failed to parse JSON response: %v",
			tutor.ErrReplyFailed, enrichment.ErrInvalidResponse, err)
	}
	reply := strings.TrimSpace(parsed.Reply)
	if reply == "" {
		return "", fmt.Errorf("%w: %w: empty reply", tutor.ErrReplyFailed, enrichment.ErrInvalidResponse)
	}

	t.logger.DebugContext(ctx, "tutor replied",
		"history", len(req.History),
		"vocabulary", len(req.Vocabulary))
	return reply, nil
}

// historyContents maps the conversation onto Gemini turns. Gemini expects
// the user to speak first, so leading assistant messages such as the
// greeting are dropped.
func historyContents(history []domain.TutorMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == domain.TutorRoleAssistant {
			if len(contents) == 0 {
				continue
			}
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents
}
