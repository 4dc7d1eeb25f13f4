package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTutorMessageLength bounds a single tutor chat message in runes.
const MaxTutorMessageLength = 2000

// Tutor validation errors
var (
	ErrEmptyTutorUserID    = errors.New("tutor session user ID cannot be empty")
	ErrInvalidLanguage     = errors.New("language must be en or nl")
	ErrInvalidTutorRole    = errors.New("tutor message role must be user or assistant")
	ErrTutorMessageTooLong = fmt.Errorf("tutor message exceeds %d characters", MaxTutorMessageLength)
)

// Language is the learner's interface language. The tutor explains in it.
type Language string

// Supported interface languages.
const (
	LanguageEnglish Language = "en"
	LanguageDutch   Language = "nl"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageDutch
}

// Name is the English name of the language.
func (l Language) Name() string {
	if l == LanguageDutch {
		return "Dutch"
	}
	return "English"
}

// Gloss picks the meaning of w in l, falling back to the other language.
func (l Language) Gloss(w *WordItem) string {
	if l == LanguageDutch && w.Dutch != "" || w.English == "" {
		return w.Dutch
	}
	return w.English
}

// TutorRole is the author of a tutor message.
type TutorRole string

const (
	TutorRoleUser      TutorRole = "user"
	TutorRoleAssistant TutorRole = "assistant"
)

// TutorMessage is one turn of a tutor conversation.
type TutorMessage struct {
	ID        string    `json:"id"`
	Role      TutorRole `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTutorMessage creates a message with a fresh ID.
func NewTutorMessage(role TutorRole, content string, now time.Time) (*TutorMessage, error) {
	m := &TutorMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   strings.TrimSpace(content),
		CreatedAt: now.UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the role and content of the message.
func (m *TutorMessage) Validate() error {
	if m.ID == "" {
		return ErrInvalidID
	}
	if m.Role != TutorRoleUser && m.Role != TutorRoleAssistant {
		return ErrInvalidTutorRole
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	if len([]rune(m.Content)) > MaxTutorMessageLength {
		return ErrTutorMessageTooLong
	}
	return nil
}

// TutorSession is a saved conversation between a user and the tutor.
// Sessions survive progress resets.
type TutorSession struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Language  Language       `json:"language"`
	Messages  []TutorMessage `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewTutorSession creates an empty session.
func NewTutorSession(userID string, lang Language, now time.Time) (*TutorSession, error) {
	s := &TutorSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Language:  lang,
		Messages:  []TutorMessage{},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Append adds a message and bumps UpdatedAt.
func (s *TutorSession) Append(m TutorMessage) {
	s.Messages = append(s.Messages, m)
	if m.CreatedAt.After(s.UpdatedAt) {
		s.UpdatedAt = m.CreatedAt
	}
}

// Validate checks the session and every message in it.
func (s *TutorSession) Validate() error {
	if s.ID == "" {
		return ErrInvalidID
	}
	if s.UserID == "" {
		return ErrEmptyTutorUserID
	}
	if !s.Language.Valid() {
		return ErrInvalidLanguage
	}
	for i := range s.Messages {
		if err := s.Messages[i].Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}
