package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Word-specific validation errors
var (
	// ErrWordIDEmpty is returned when a word item has no ID.
	ErrWordIDEmpty = errors.New("word ID cannot be empty")

	// ErrWordRawEmpty is returned when a word item has no raw form.
	ErrWordRawEmpty = errors.New("word raw form cannot be empty")

	// ErrWordIDMismatch is returned when a word ID does not match its raw form.
	ErrWordIDMismatch = errors.New("word ID does not match raw form")

	// ErrTooManySynonyms is returned when a word carries more than MaxSynonyms synonyms.
	ErrTooManySynonyms = errors.New("word has too many synonyms")
)

// MaxSynonyms is the maximum number of synonyms stored for a word.
const MaxSynonyms = 3

// ExampleSentence is a usage example with its two translations.
type ExampleSentence struct {
	Native  string `json:"native"`
	English string `json:"english"`
	Dutch   string `json:"dutch"`
}

// Synonym is a related word with its two glosses.
type Synonym struct {
	Native  string `json:"native"`
	English string `json:"english"`
	Dutch   string `json:"dutch"`
}

// WordItem is a single vocabulary entry. Word items are global: they are
// shared by all users and only change when they are enriched.
type WordItem struct {
	ID              string            `json:"id"`
	Raw             string            `json:"raw"`
	Vowelized       string            `json:"vowelized,omitempty"`
	Transliteration string            `json:"transliteration,omitempty"`
	PartOfSpeech    string            `json:"part_of_speech,omitempty"`
	English         string            `json:"english"`
	Dutch           string            `json:"dutch"`
	Synonyms        []Synonym         `json:"synonyms"`
	Examples        []ExampleSentence `json:"examples"`
	Notes           string            `json:"notes,omitempty"`
	Enriched        bool              `json:"enriched"`
	EnrichError     bool              `json:"enrich_error"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// wordNamespace is the UUID namespace word IDs are derived in. Changing it
// changes every word ID.
var wordNamespace = uuid.MustParse("6f1c3f0e-8a4b-5d2e-9c7a-3b1e2d4f5a60")

// WordID derives the stable identifier of a word from its raw form, a
// name-based (SHA-1) UUID. Importing the same raw form twice always yields
// the same ID.
func WordID(raw string) string {
	return uuid.NewSHA1(wordNamespace, []byte(strings.TrimSpace(raw))).String()
}

// NewWordItem creates a word item for the given raw form and glosses.
// The ID is derived from the raw form.
func NewWordItem(raw, english, dutch string, now time.Time) (*WordItem, error) {
	raw = strings.TrimSpace(raw)
	w := &WordItem{
		ID:        WordID(raw),
		Raw:       raw,
		English:   strings.TrimSpace(english),
		Dutch:     strings.TrimSpace(dutch),
		Synonyms:  []Synonym{},
		Examples:  []ExampleSentence{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}

// Validate checks if the word item has valid data.
func (w *WordItem) Validate() error {
	if w.ID == "" {
		return ErrWordIDEmpty
	}

	if strings.TrimSpace(w.Raw) == "" {
		return ErrWordRawEmpty
	}

	if w.ID != WordID(w.Raw) {
		return ErrWordIDMismatch
	}

	if len(w.Synonyms) > MaxSynonyms {
		return ErrTooManySynonyms
	}

	return nil
}

// HasExamples reports whether the word has at least one example sentence.
func (w *WordItem) HasExamples() bool {
	return len(w.Examples) > 0
}

// DisplayForm returns the vowelized form when present, the raw form otherwise.
func (w *WordItem) DisplayForm() string {
	if w.Vowelized != "" {
		return w.Vowelized
	}
	return w.Raw
}
