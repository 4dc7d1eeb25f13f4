package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/service"
	"github.com/phrazzld/scry-words/internal/session"
	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/phrazzld/scry-words/internal/tutor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	mem     *testutils.MemStores
	words   []*domain.WordItem
	logs    *logger.TestLogBuffer

	responder *scriptedResponder
}

// newTestServer wires real services over in-memory stores. Review-state
// writes are applied synchronously.
func newTestServer(t *testing.T, newCap int, sessions SessionService) *testServer {
	t.Helper()
	ctx := context.Background()
	log, buf := logger.NewTestLogger(t)

	mem := testutils.NewMemStores()
	words := testutils.MustCreateWordsForTest(t, 3)
	require.NoError(t, mem.Words.PutMany(ctx, words))
	stores := service.Stores{Words: mem.Words, States: mem.States, Stats: mem.Stats, Settings: mem.Settings}
	now := func() time.Time { return testutils.FixedNow }

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.Subscribe(events.TypePersistReviewState, events.HandlerFunc(
		func(ctx context.Context, event *events.TaskRequestEvent) error {
			var payload events.PersistReviewStatePayload
			if err := event.UnmarshalPayload(&payload); err != nil {
				return err
			}
			return mem.States.Put(ctx, payload.State)
		}))

	progress, err := service.NewProgressService(stores, nil, nil, now, log)
	require.NoError(t, err)
	progress.UseSessionDefaults(config.SessionConfig{DailyNewTarget: newCap, DailyReviewTarget: 10})

	if sessions == nil {
		svc, err := service.NewSessionService(stores, progress, emitter, nil, config.SessionConfig{Seed: 7}, now, log)
		require.NoError(t, err)
		sessions = svc
	}

	enricher := &testutils.FakeEnricher{
		Examples: []domain.ExampleSentence{{Native: "هذا كتاب", English: "This is a book", Dutch: "Dit is een boek"}},
	}
	wordSvc, err := service.NewWordService(mem.Words, enricher, emitter, now, log)
	require.NoError(t, err)

	responder := &scriptedResponder{}
	tutorSvc, err := service.NewTutorService(stores, mem.Tutor, responder, now, log)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Words:    NewWordHandler(wordSvc, log),
		Progress: NewProgressHandler(progress, log),
		Sessions: NewSessionHandler(sessions, log),
		Tutor:    NewTutorHandler(tutorSvc, log),
		Logger:   log,
	})
	return &testServer{handler: router, mem: mem, words: words, logs: buf, responder: responder}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 1, nil)
	w := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	unhealthy := NewRouter(RouterConfig{
		Words:    NewWordHandler(&stubWords{}, nil),
		Progress: NewProgressHandler(&stubProgress{}, nil),
		Sessions: NewSessionHandler(&stubSessions{}, nil),
		Health:   func(ctx context.Context) error { return errors.New("database down") },
	})
	rec := httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWordRoutes(t *testing.T) {
	s := newTestServer(t, 1, nil)
	id := s.words[0].ID

	w := s.do(t, http.MethodGet, "/api/words", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.WordItem](t, w), 3)

	w = s.do(t, http.MethodGet, "/api/words/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, s.words[0].Raw, decode[domain.WordItem](t, w).Raw)

	w = s.do(t, http.MethodGet, "/api/words/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Word not found", decode[shared.ErrorResponse](t, w).Error)
	assert.NotEmpty(t, decode[shared.ErrorResponse](t, w).TraceID)

	w = s.do(t, http.MethodPost, "/api/words/"+id+"/enrich", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, decode[EnrichmentResponse](t, w).Queued)

	w = s.do(t, http.MethodPost, "/api/words/"+id+"/examples", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[domain.WordItem](t, w).Examples, 1)
}

func TestProgressRoutes(t *testing.T) {
	s := newTestServer(t, 1, nil)

	w := s.do(t, http.MethodPost, "/api/users/u1/collection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[InitializeResponse](t, w).Created)

	w = s.do(t, http.MethodGet, "/api/users/u1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode[service.StatusCounts](t, w)
	assert.Equal(t, 3, counts.New)
	assert.Equal(t, 3, counts.Total)

	w = s.do(t, http.MethodGet, "/api/users/u1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[service.StatsSummary](t, w).TotalReviews)

	t.Run("settings", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/u1/settings", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[domain.UserSettings](t, w).DailyNewTarget)

		w = s.do(t, http.MethodPut, "/api/users/u1/settings", `{"daily_new_target":5,"daily_review_target":20,"backfill":true}`)
		require.Equal(t, http.StatusOK, w.Code)
		settings := decode[domain.UserSettings](t, w)
		assert.Equal(t, "u1", settings.UserID)
		assert.True(t, settings.Backfill)

		w = s.do(t, http.MethodPut, "/api/users/u1/settings", `{"daily_new_target":-1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPut, "/api/users/u1/settings", `{"daily_new_target":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("export and import", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/u1/export", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "scry-words-u1.json")
		data := decode[service.UserData](t, w)
		assert.Len(t, data.States, 3)

		body, err := json.Marshal(data)
		require.NoError(t, err)
		w = s.do(t, http.MethodPost, "/api/users/u2/import", string(body))
		require.Equal(t, http.StatusNoContent, w.Code)

		states, err := s.mem.States.GetAllForUser(context.Background(), "u2")
		require.NoError(t, err)
		assert.Len(t, states, 3)

		w = s.do(t, http.MethodPost, "/api/users/u2/import", "not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w = s.do(t, http.MethodDelete, "/api/users/u1/progress", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessionRoutes(t *testing.T) {
	s := newTestServer(t, 1, nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/users/u1/collection", "").Code)

	w := s.do(t, http.MethodGet, "/api/users/u1/sessions/current", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[service.StepView](t, w)
	assert.Equal(t, 3, view.Total)
	require.NotNil(t, view.Item)
	assert.Equal(t, session.StepIntro, view.Item.Step)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"correct":true}`)
	assert.Equal(t, http.StatusConflict, w.Code, "intro steps cannot be answered")

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/intro", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.StepExercise, decode[service.StepView](t, w).Item.Step)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"grade":7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"outcome":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"correct":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	answer := decode[service.AnswerView](t, w)
	assert.True(t, answer.Result.Correct)
	assert.Equal(t, 1, answer.Result.State.IntervalDays)

	w = s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"outcome":"good"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[service.AnswerView](t, w).Next.Done)

	w = s.do(t, http.MethodGet, "/api/users/u1/sessions/current", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/users/u1/sessions/current", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/users/u1/sessions/current", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitAnswerPersistFailure(t *testing.T) {
	stub := &stubSessions{answerErr: service.ErrPersistFailed}
	s := newTestServer(t, 1, stub)

	w := s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"correct":false}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Progress could not be saved, please answer again", decode[shared.ErrorResponse](t, w).Error)
	logger.AssertLogField(t, s.logs, "level", "WARN")
	require.NotNil(t, stub.lastInput.Correct)
	assert.False(t, *stub.lastInput.Correct)
}

func TestSessionDoneMapsToNoContent(t *testing.T) {
	stub := &stubSessions{answerErr: session.ErrSessionDone}
	s := newTestServer(t, 1, stub)

	w := s.do(t, http.MethodPost, "/api/users/u1/sessions/current/answer", `{"correct":true}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

type stubSessions struct {
	answerErr error
	lastInput service.AnswerInput
}

func (s *stubSessions) Start(ctx context.Context, userID string) (*service.StepView, error) {
	return &service.StepView{Done: true}, nil
}

func (s *stubSessions) Current(ctx context.Context, userID string) (*service.StepView, error) {
	return &service.StepView{Done: true}, nil
}

func (s *stubSessions) CompleteIntro(ctx context.Context, userID string) (*service.StepView, error) {
	return nil, session.ErrNotIntro
}

func (s *stubSessions) Answer(ctx context.Context, userID string, input service.AnswerInput) (*service.AnswerView, error) {
	s.lastInput = input
	return nil, s.answerErr
}

func (s *stubSessions) Abandon(ctx context.Context, userID string) error {
	return service.ErrNoActiveSession
}

// scriptedResponder answers every tutor message with reply, or fails with err.
type scriptedResponder struct {
	reply string
	err   error
	last  tutor.Request
}

func (s *scriptedResponder) Reply(ctx context.Context, req tutor.Request) (string, error) {
	s.last = req
	return s.reply, s.err
}

type stubWords struct{ WordService }

type stubProgress struct{ ProgressService }

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"grade":-1}`))
	w := httptest.NewRecorder()
	var body AnswerRequest
	assert.False(t, decodeAndValidate(w, req, &body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Grade: too small", decode[shared.ErrorResponse](t, w).Error)
}

func TestTutorRoutes(t *testing.T) {
	s := newTestServer(t, 1, nil)
	s.responder.reply = "مرحبا! (marhaban)"

	w := s.do(t, http.MethodGet, "/api/users/u1/tutor", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.TutorSession](t, w))

	w = s.do(t, http.MethodPost, "/api/users/u1/tutor", `{"language":"nl"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[domain.TutorSession](t, w)
	assert.Equal(t, domain.LanguageDutch, sess.Language)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, tutor.Intro(domain.LanguageDutch), sess.Messages[0].Content)

	w = s.do(t, http.MethodPost, "/api/users/u1/tutor", "")
	require.Equal(t, http.StatusCreated, w.Code, "the body is optional")
	assert.Equal(t, domain.LanguageEnglish, decode[domain.TutorSession](t, w).Language)

	w = s.do(t, http.MethodPost, "/api/users/u1/tutor", `{"language":"fr"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Language: must be en or nl", decode[shared.ErrorResponse](t, w).Error)

	path := "/api/users/u1/tutor/" + sess.ID
	w = s.do(t, http.MethodPost, path+"/messages", `{"content":"hallo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[domain.TutorSession](t, w)
	require.Len(t, updated.Messages, 3)
	assert.Equal(t, "مرحبا! (marhaban)", updated.Messages[2].Content)
	assert.Equal(t, "hallo", s.responder.last.History[1].Content)

	w = s.do(t, http.MethodPost, path+"/messages", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Content: required field", decode[shared.ErrorResponse](t, w).Error)

	w = s.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[domain.TutorSession](t, w).Messages, 3)

	w = s.do(t, http.MethodGet, "/api/users/u2/tutor/"+sess.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tutor session not found", decode[shared.ErrorResponse](t, w).Error)

	w = s.do(t, http.MethodGet, "/api/users/u1/tutor", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.TutorSession](t, w), 2)

	s.responder.err = tutor.ErrReplyFailed
	w = s.do(t, http.MethodPost, path+"/messages", `{"content":"nog een keer"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "The tutor could not reply, please try again", decode[shared.ErrorResponse](t, w).Error)
}

func TestTutorDisabled(t *testing.T) {
	mem := testutils.NewMemStores()
	stores := service.Stores{Words: mem.Words, States: mem.States, Stats: mem.Stats, Settings: mem.Settings}
	svc, err := service.NewTutorService(stores, mem.Tutor, nil, nil, nil)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Words:    NewWordHandler(&stubWords{}, nil),
		Progress: NewProgressHandler(&stubProgress{}, nil),
		Sessions: NewSessionHandler(&stubSessions{}, nil),
		Tutor:    NewTutorHandler(svc, nil),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/u1/tutor", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
