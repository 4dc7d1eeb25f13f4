package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/session"
	"github.com/phrazzld/scry-words/internal/task"
	"github.com/phrazzld/scry-words/internal/textmatch"
)

// maxCountedStep caps the time a single step adds to the daily total, so an
// abandoned screen does not inflate it.
const maxCountedStep = 5 * time.Minute

// AnswerInput carries one of the supported grading inputs. The first one
// set, in the order Grade, Outcome, Answer, Correct, is used.
type AnswerInput struct {
	Correct *bool
	Outcome string
	Grade   *int
	Answer  string
}

// StepView describes a session's current position.
type StepView struct {
	SessionID string        `json:"session_id"`
	Position  int           `json:"position"`
	Total     int           `json:"total"`
	Remaining int           `json:"remaining"`
	Answered  int           `json:"answered"`
	Correct   int           `json:"correct"`
	Done      bool          `json:"done"`
	Item      *session.Item `json:"item,omitempty"`
}

// AnswerView is the outcome of an answer and the step that follows it.
type AnswerView struct {
	Result *session.StepResult `json:"result"`
	Next   *StepView           `json:"next"`
}

type activeSession struct {
	id         string
	userID     string
	sess       *session.Session
	lastStepAt time.Time
	answered   int
	correct    int
	// unpersisted maps item IDs whose last write failed to the failure.
	unpersisted map[string]error
}

// SessionService runs one study session per user. Review-state writes are
// published as events and never block an answer. Resetting a user's progress
// ends their session.
type SessionService struct {
	stores   Stores
	progress *ProgressService
	emitter  events.EventEmitter
	srs      srs.Service
	seed     int64
	now      func() time.Time
	logger   *slog.Logger

	mu     sync.Mutex
	active map[string]*activeSession
}

// NewSessionService creates a SessionService.
func NewSessionService(
	stores Stores,
	progress *ProgressService,
	emitter events.EventEmitter,
	srsService srs.Service,
	cfg config.SessionConfig,
	clock func() time.Time,
	logger *slog.Logger,
) (*SessionService, error) {
	if err := stores.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, errors.New("progress service cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &SessionService{
		stores:   stores,
		progress: progress,
		emitter:  emitter,
		srs:      srsService,
		seed:     cfg.Seed,
		now:      clock,
		logger:   logger.With(slog.String("component", "session_service")),
		active:   make(map[string]*activeSession),
	}
	progress.OnReset(s.endAfterReset)
	return s, nil
}

// endAfterReset drops the user's session. Its queue holds review states from
// before the reset and must not be answered against.
func (s *SessionService) endAfterReset(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, ok := s.active[userID]
	if !ok {
		return
	}
	delete(s.active, userID)

	logger.FromContextOrDefault(ctx, s.logger).Info("study session ended by progress reset",
		slog.String("user_id", userID),
		slog.String("session_id", as.id),
		slog.Int("answered", as.answered))
}

func (s *SessionService) newRand() *rand.Rand {
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Start builds a new session for the user, replacing any session in progress.
// Selected new words that are not enriched yet are queued for enrichment.
func (s *SessionService) Start(ctx context.Context, userID string) (*StepView, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	settings, err := s.progress.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	words, states, err := s.progress.loadCollection(ctx, userID)
	if err != nil {
		return nil, NewServiceError("start_session", "failed to load collection", err)
	}

	candidates := make([]session.Candidate, 0, len(words))
	for _, w := range words {
		candidates = append(candidates, session.Candidate{Word: w, State: states[w.ID]})
	}

	now := s.now()
	rng := s.newRand()
	builder := session.NewBuilder(s.srs, rng, log)
	sel := builder.Select(userID, candidates, session.Limits{
		NewCap:    settings.DailyNewTarget,
		ReviewCap: settings.DailyReviewTarget,
		Backfill:  settings.Backfill,
	}, now)
	queue := builder.Build(sel)

	as := &activeSession{
		id:          uuid.New().String(),
		userID:      userID,
		sess:        session.New(queue, s.srs, rng, s.now),
		lastStepAt:  now,
		unpersisted: make(map[string]error),
	}

	s.mu.Lock()
	s.active[userID] = as
	view := s.viewLocked(as)
	s.mu.Unlock()

	for _, c := range sel.New {
		if c.Word.Enriched || c.Word.EnrichError {
			continue
		}
		s.requestEnrichment(ctx, c.Word.ID)
	}

	log.Info("study session started",
		slog.String("user_id", userID),
		slog.String("session_id", as.id),
		slog.Int("new", len(sel.New)),
		slog.Int("reviews", len(sel.Review)),
		slog.Int("steps", queue.Len()))
	return view, nil
}

func (s *SessionService) requestEnrichment(ctx context.Context, wordID string) {
	event, err := events.NewEnrichWordEvent(wordID)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to request enrichment",
			slog.String("word_id", wordID),
			slog.String("error", err.Error()))
	}
}

func (s *SessionService) persist(ctx context.Context, as *activeSession, state *domain.ReviewState) {
	event, err := events.NewPersistReviewStateEvent(as.id, state)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to request review state write",
			slog.String("user_id", as.userID),
			slog.String("item_id", state.ItemID),
			slog.String("error", err.Error()))
		as.unpersisted[state.ItemID] = err
	}
}

func (s *SessionService) sessionLocked(userID string) (*activeSession, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	as, ok := s.active[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return as, nil
}

func (s *SessionService) viewLocked(as *activeSession) *StepView {
	q := as.sess.Queue()
	view := &StepView{
		SessionID: as.id,
		Position:  q.Cursor(),
		Total:     q.Len(),
		Remaining: q.Remaining(),
		Answered:  as.answered,
		Correct:   as.correct,
		Done:      as.sess.Done(),
	}
	if cur := as.sess.Current(); cur != nil {
		item := *cur
		view.Item = &item
	}
	return view
}

// refreshWordLocked picks up enrichment that finished after the session was
// built.
func (s *SessionService) refreshWordLocked(ctx context.Context, as *activeSession) {
	cur := as.sess.Current()
	if cur == nil || cur.Word.Enriched {
		return
	}
	word, err := s.stores.Words.Get(ctx, cur.WordID())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("could not refresh word",
			slog.String("word_id", cur.WordID()),
			slog.String("error", err.Error()))
		return
	}
	if word.Enriched {
		as.sess.UpdateWord(word)
	}
}

// Current returns the user's current step. A finished session reports Done
// with no item.
func (s *SessionService) Current(ctx context.Context, userID string) (*StepView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, err := s.sessionLocked(userID)
	if err != nil {
		return nil, err
	}
	s.refreshWordLocked(ctx, as)
	return s.viewLocked(as), nil
}

// CompleteIntro moves the user's session past an introduction step.
func (s *SessionService) CompleteIntro(ctx context.Context, userID string) (*StepView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, err := s.sessionLocked(userID)
	if err != nil {
		return nil, err
	}
	if err := as.sess.CompleteIntro(); err != nil {
		return nil, err
	}
	as.lastStepAt = s.now()
	s.refreshWordLocked(ctx, as)
	return s.viewLocked(as), nil
}

// Answer grades the current exercise, publishes the new review state and
// records the answer in today's statistics.
//
// When the previous write for the current word failed after all retries, the
// answer is not applied: the latest state is published again and
// ErrPersistFailed is returned so the caller can resubmit.
func (s *SessionService) Answer(ctx context.Context, userID string, input AnswerInput) (*AnswerView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	as, err := s.sessionLocked(userID)
	if err != nil {
		return nil, err
	}

	cur := as.sess.Current()
	if cur == nil {
		return nil, session.ErrSessionDone
	}

	if cur.Step != session.StepExercise {
		return nil, session.ErrNotExercise
	}

	if cause, failed := as.unpersisted[cur.WordID()]; failed {
		delete(as.unpersisted, cur.WordID())
		s.persist(ctx, as, cur.State)
		log.Warn("previous review state write failed, retrying before accepting an answer",
			slog.String("user_id", userID),
			slog.String("item_id", cur.WordID()),
			slog.String("error", cause.Error()))
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, cause)
	}

	grade, err := resolveGrade(cur, input)
	if err != nil {
		return nil, err
	}

	result, err := as.sess.Answer(grade)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, as, result.State)

	now := s.now()
	elapsed := now.Sub(as.lastStepAt)
	if elapsed > maxCountedStep {
		elapsed = maxCountedStep
	}
	as.lastStepAt = now
	as.answered++
	if result.Correct {
		as.correct++
	}

	if err := s.progress.RecordAnswer(ctx, userID, result.Item.Exercise, result.Correct, result.FirstExposure, elapsed); err != nil {
		log.Error("failed to record answer in daily stats",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}

	log.Debug("answer recorded",
		slog.String("user_id", userID),
		slog.String("item_id", result.Item.WordID()),
		slog.Int("grade", int(grade)),
		slog.Bool("requeued", result.Requeued))

	s.refreshWordLocked(ctx, as)
	return &AnswerView{Result: result, Next: s.viewLocked(as)}, nil
}

// Abandon ends the user's session. Answers already given stay recorded.
func (s *SessionService) Abandon(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, err := s.sessionLocked(userID)
	if err != nil {
		return err
	}
	delete(s.active, userID)

	logger.FromContextOrDefault(ctx, s.logger).Info("study session abandoned",
		slog.String("user_id", userID),
		slog.String("session_id", as.id),
		slog.Int("answered", as.answered))
	return nil
}

// HandlePersistFailure marks the failed item of the session the write came
// from. It is meant to be the task.FailureHook of review-state writes.
func (s *SessionService) HandlePersistFailure(ctx context.Context, failure task.PersistFailure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, ok := s.active[failure.UserID]
	if !ok || as.id != failure.SessionID {
		s.logger.Warn("review state write failed for an ended session",
			slog.String("user_id", failure.UserID),
			slog.String("item_id", failure.ItemID),
			slog.String("session_id", failure.SessionID))
		return
	}
	as.unpersisted[failure.ItemID] = failure.Err
}

// resolveGrade turns the answer input into a grade for item.
func resolveGrade(item *session.Item, input AnswerInput) (domain.Grade, error) {
	switch {
	case input.Grade != nil:
		g := domain.Grade(*input.Grade)
		if !g.IsValid() {
			return 0, srs.ErrInvalidGrade
		}
		return g, nil
	case input.Outcome != "":
		g, err := domain.GradeFromOutcome(domain.ReviewOutcome(input.Outcome))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return g, nil
	case strings.TrimSpace(input.Answer) != "":
		return gradeTyped(item, input.Answer), nil
	case input.Correct != nil:
		return domain.GradeFromCorrect(*input.Correct), nil
	default:
		return 0, ErrInvalidAnswer
	}
}

// gradeTyped grades a typed answer. Recognition asks for a meaning, so the
// answer is compared with the glosses; every other exercise asks for the
// Arabic word. Latin input to an Arabic prompt is transliterated first.
func gradeTyped(item *session.Item, answer string) domain.Grade {
	word := item.Word
	if item.Exercise == domain.ExerciseRecognition {
		return domain.GradeFromCorrect(matchGloss(answer, word.English) || matchGloss(answer, word.Dutch))
	}

	if !hasArabic(answer) {
		answer = textmatch.Transliterate(answer)
	}
	return textmatch.Grade(answer, word.Raw)
}

func matchGloss(answer, gloss string) bool {
	answer = strings.TrimSpace(answer)
	for _, form := range textmatch.Forms(gloss) {
		if strings.EqualFold(answer, strings.TrimSpace(form)) {
			return true
		}
	}
	return false
}

func hasArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
