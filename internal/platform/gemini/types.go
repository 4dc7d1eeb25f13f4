package gemini

import (
	"strings"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/tutor"
	"google.golang.org/genai"
)

// promptData represents the data passed to the prompt templates
type promptData struct {
	Raw          string
	English      string
	Dutch        string
	Existing     []string
	ExampleCount int
	MaxSynonyms  int
}

// enrichResponse represents the expected JSON structure of an enrichment
type enrichResponse struct {
	Vowelized       string          `json:"vowelized"`
	Transliteration string          `json:"transliteration"`
	PartOfSpeech    string          `json:"part_of_speech"`
	English         string          `json:"english"`
	Dutch           string          `json:"dutch"`
	Synonyms        []synonymSchema `json:"synonyms"`
	Examples        []exampleSchema `json:"examples"`
	Notes           string          `json:"notes"`
}

// examplesResponse represents the expected JSON structure of a request for more examples
type examplesResponse struct {
	Examples []exampleSchema `json:"examples"`
}

type synonymSchema struct {
	Arabic  string `json:"arabic"`
	English string `json:"english"`
	Dutch   string `json:"dutch"`
}

type exampleSchema struct {
	Arabic  string `json:"arabic"`
	English string `json:"english"`
	Dutch   string `json:"dutch"`
}

func (r *enrichResponse) toResult() *enrichment.Result {
	res := &enrichment.Result{
		Vowelized:       strings.TrimSpace(r.Vowelized),
		Transliteration: strings.TrimSpace(r.Transliteration),
		PartOfSpeech:    strings.TrimSpace(r.PartOfSpeech),
		English:         strings.TrimSpace(r.English),
		Dutch:           strings.TrimSpace(r.Dutch),
		Synonyms:        make([]domain.Synonym, 0, len(r.Synonyms)),
		Examples:        toExamples(r.Examples),
		Notes:           strings.TrimSpace(r.Notes),
	}
	for _, s := range r.Synonyms {
		res.Synonyms = append(res.Synonyms, domain.Synonym{
			Native:  strings.TrimSpace(s.Arabic),
			English: strings.TrimSpace(s.English),
			Dutch:   strings.TrimSpace(s.Dutch),
		})
	}
	return res
}

func toExamples(in []exampleSchema) []domain.ExampleSentence {
	out := make([]domain.ExampleSentence, 0, len(in))
	for _, e := range in {
		out = append(out, domain.ExampleSentence{
			Native:  strings.TrimSpace(e.Arabic),
			English: strings.TrimSpace(e.English),
			Dutch:   strings.TrimSpace(e.Dutch),
		})
	}
	return out
}

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func tripleSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"arabic":  stringSchema(),
			"english": stringSchema(),
			"dutch":   stringSchema(),
		},
		Required: []string{"arabic", "english", "dutch"},
	}
}

// enrichSchema constrains the model output to enrichResponse.
func enrichSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"vowelized":       stringSchema(),
			"transliteration": stringSchema(),
			"part_of_speech":  stringSchema(),
			"english":         stringSchema(),
			"dutch":           stringSchema(),
			"synonyms":        {Type: genai.TypeArray, Items: tripleSchema()},
			"examples":        {Type: genai.TypeArray, Items: tripleSchema()},
			"notes":           stringSchema(),
		},
		Required: []string{
			"vowelized", "transliteration", "part_of_speech", "english", "dutch",
			"synonyms", "examples", "notes",
		},
	}
}

// examplesSchema constrains the model output to examplesResponse.
func examplesSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"examples": {Type: genai.TypeArray, Items: tripleSchema()},
		},
		Required: []string{"examples"},
	}
}

// tutorPromptData fills the tutor system prompt.
type tutorPromptData struct {
	Language   string
	Vocabulary []tutor.LearnedWord
}

// tutorResponse represents the expected JSON structure of a tutor reply
type tutorResponse struct {
	Reply string `json:"reply"`
}

// tutorSchema constrains the model output to tutorResponse.
func tutorSchema() *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{"reply": stringSchema()},
		Required:   []string{"reply"},
	}
}
