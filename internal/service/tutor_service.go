package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/phrazzld/scry-words/internal/tutor"
)

// TutorService runs tutor conversations. Replies come from a tutor.Responder
// and may only use words the user has already studied.
type TutorService struct {
	stores    Stores
	sessions  store.TutorSessionStore
	responder tutor.Responder
	now       func() time.Time
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTutorService creates a TutorService. A nil responder leaves the tutor
// disabled: reads work, starting or continuing a conversation returns
// tutor.ErrDisabled.
func NewTutorService(
	stores Stores,
	sessions store.TutorSessionStore,
	responder tutor.Responder,
	clock func() time.Time,
	logger *slog.Logger,
) (*TutorService, error) {
	if err := stores.Validate(); err != nil {
		return nil, err
	}
	if sessions == nil {
		return nil, errors.New("tutor session store cannot be nil")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TutorService{
		stores:    stores,
		sessions:  sessions,
		responder: responder,
		now:       clock,
		logger:    logger.With(slog.String("component", "tutor_service")),
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// Enabled reports whether a responder is configured.
func (s *TutorService) Enabled() bool {
	return s.responder != nil
}

// Start opens a new conversation in lang with the tutor's greeting.
func (s *TutorService) Start(ctx context.Context, userID string, lang domain.Language) (*domain.TutorSession, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if !s.Enabled() {
		return nil, tutor.ErrDisabled
	}
	if lang == "" {
		lang = domain.LanguageEnglish
	}

	now := s.now()
	sess, err := domain.NewTutorSession(userID, lang, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTutorMessage, err)
	}
	intro, err := domain.NewTutorMessage(domain.TutorRoleAssistant, tutor.Intro(lang), now)
	if err != nil {
		return nil, err
	}
	sess.Append(*intro)

	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, NewServiceError("start tutor session", "failed to save session", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "tutor session started",
		slog.String("user_id", userID),
		slog.String("session_id", sess.ID),
		slog.String("language", string(lang)))
	return sess, nil
}

// Send adds the learner's message and the tutor's reply to a session and
// returns the updated session. When the reply fails nothing is saved, so
// the learner can send the same message again.
func (s *TutorService) Send(ctx context.Context, userID, sessionID, content string) (*domain.TutorSession, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if !s.Enabled() {
		return nil, tutor.ErrDisabled
	}

	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	msg, err := domain.NewTutorMessage(domain.TutorRoleUser, content, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTutorMessage, err)
	}
	sess.Append(*msg)

	vocabulary, err := s.vocabulary(ctx, userID, sess.Language)
	if err != nil {
		return nil, err
	}

	reply, err := s.responder.Reply(ctx, tutor.Request{
		Language:   sess.Language,
		Vocabulary: vocabulary,
		History:    sess.Messages,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "tutor reply failed",
			slog.String("user_id", userID),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		if !errors.Is(err, tutor.ErrReplyFailed) {
			err = fmt.Errorf("%w: %w", tutor.ErrReplyFailed, err)
		}
		return nil, err
	}

	answer, err := domain.NewTutorMessage(domain.TutorRoleAssistant, truncateRunes(reply, domain.MaxTutorMessageLength), s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tutor.ErrReplyFailed, err)
	}
	sess.Append(*answer)

	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, NewServiceError("send tutor message", "failed to save session", err)
	}
	return sess, nil
}

// Get returns one of the user's sessions. Sessions of other users are
// reported as not found.
func (s *TutorService) Get(ctx context.Context, userID, sessionID string) (*domain.TutorSession, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, store.ErrTutorSessionNotFound
	}
	return sess, nil
}

// List returns the user's sessions, most recent first.
func (s *TutorService) List(ctx context.Context, userID string) ([]*domain.TutorSession, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return s.sessions.ListForUser(ctx, userID)
}

// vocabulary collects the words the tutor may use with the user.
func (s *TutorService) vocabulary(ctx context.Context, userID string, lang domain.Language) ([]tutor.LearnedWord, error) {
	words, err := s.stores.Words.List(ctx)
	if err != nil {
		return nil, NewServiceError("tutor vocabulary", "failed to list words", err)
	}
	states, err := s.stores.States.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("tutor vocabulary", "failed to load review states", err)
	}

	byItem := make(map[string]*domain.ReviewState, len(states))
	for _, st := range states {
		byItem[st.ItemID] = st
	}
	return tutor.LearnedVocabulary(words, byItem, lang), nil
}

// lock serializes writers of one session and returns the unlock function.
func (s *TutorService) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
