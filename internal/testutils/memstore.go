package testutils

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/store"
)

// MemStores bundles in-memory implementations of every store interface.
type MemStores struct {
	Words    *MemWordStore
	States   *MemReviewStateStore
	Stats    *MemStatsStore
	Settings *MemSettingsStore
	Tutor    *MemTutorSessionStore
}

// NewMemStores creates empty in-memory stores.
func NewMemStores() *MemStores {
	return &MemStores{
		Words:    &MemWordStore{words: map[string]*domain.WordItem{}},
		States:   &MemReviewStateStore{states: map[string]*domain.ReviewState{}},
		Stats:    &MemStatsStore{stats: map[string]*domain.DailyStats{}},
		Settings: &MemSettingsStore{settings: map[string]*domain.UserSettings{}},
		Tutor:    &MemTutorSessionStore{sessions: map[string]*domain.TutorSession{}},
	}
}

// failer returns an injected error a limited number of times.
type failer struct {
	err       error
	remaining int
}

func (f *failer) next() error {
	if f.err == nil || f.remaining == 0 {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return f.err
}

func copyWord(w *domain.WordItem) *domain.WordItem {
	c := *w
	c.Synonyms = append([]domain.Synonym{}, w.Synonyms...)
	c.Examples = append([]domain.ExampleSentence{}, w.Examples...)
	return &c
}

// MemWordStore implements store.WordStore in memory.
type MemWordStore struct {
	mu      sync.RWMutex
	words   map[string]*domain.WordItem
	putFail failer
}

var _ store.WordStore = (*MemWordStore)(nil)

// FailPut makes the next times calls to Put fail with err; times < 0 fails forever.
func (s *MemWordStore) FailPut(err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putFail = failer{err: err, remaining: times}
}

func (s *MemWordStore) List(ctx context.Context) ([]*domain.WordItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.WordItem, 0, len(s.words))
	for _, w := range s.words {
		out = append(out, copyWord(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out, nil
}

func (s *MemWordStore) Get(ctx context.Context, id string) (*domain.WordItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.words[id]
	if !ok {
		return nil, store.ErrWordNotFound
	}
	return copyWord(w), nil
}

func (s *MemWordStore) Put(ctx context.Context, word *domain.WordItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putFail.next(); err != nil {
		return err
	}
	return s.putLocked(word)
}

func (s *MemWordStore) putLocked(word *domain.WordItem) error {
	if err := word.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	c := copyWord(word)
	if existing, ok := s.words[word.ID]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	s.words[word.ID] = c
	return nil
}

func (s *MemWordStore) PutMany(ctx context.Context, words []*domain.WordItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}
	for _, w := range words {
		if err := s.putLocked(w); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemWordStore) ListUnenriched(ctx context.Context, limit int) ([]*domain.WordItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.WordItem, 0)
	for _, w := range s.words {
		if !w.Enriched && !w.EnrichError {
			out = append(out, copyWord(w))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemWordStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words), nil
}

func (s *MemWordStore) WithTx(tx *sqlx.Tx) store.WordStore { return s }

// MemReviewStateStore implements store.ReviewStateStore in memory with the
// same stale-write rule as the SQL store.
type MemReviewStateStore struct {
	mu      sync.RWMutex
	states  map[string]*domain.ReviewState
	putFail failer
	puts    int
}

var _ store.ReviewStateStore = (*MemReviewStateStore)(nil)

func stateKey(userID, itemID string) string { return userID + "\x00" + itemID }

// FailPut makes the next times calls to Put fail with err; times < 0 fails forever.
func (s *MemReviewStateStore) FailPut(err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putFail = failer{err: err, remaining: times}
}

// PutCalls returns how many times Put was called.
func (s *MemReviewStateStore) PutCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

func (s *MemReviewStateStore) Get(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[stateKey(userID, itemID)]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	return st.Clone(), nil
}

func (s *MemReviewStateStore) GetAllForUser(ctx context.Context, userID string) ([]*domain.ReviewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ReviewState, 0)
	for _, st := range s.states {
		if st.UserID == userID {
			out = append(out, st.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (s *MemReviewStateStore) Put(ctx context.Context, state *domain.ReviewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if err := s.putFail.next(); err != nil {
		return err
	}
	return s.putLocked(state)
}

func (s *MemReviewStateStore) putLocked(state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	key := stateKey(state.UserID, state.ItemID)
	if existing, ok := s.states[key]; ok && !state.Supersedes(existing) {
		return store.ErrStaleWrite
	}
	s.states[key] = state.Clone()
	return nil
}

func (s *MemReviewStateStore) PutMany(ctx context.Context, states []*domain.ReviewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range states {
		if err := s.putLocked(st); err != nil && !errors.Is(err, store.ErrStaleWrite) {
			return err
		}
	}
	return nil
}

func (s *MemReviewStateStore) DeleteAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, st := range s.states {
		if st.UserID == userID {
			delete(s.states, key)
		}
	}
	return nil
}

func (s *MemReviewStateStore) WithTx(tx *sqlx.Tx) store.ReviewStateStore { return s }

// MemStatsStore implements store.StatsStore in memory.
type MemStatsStore struct {
	mu    sync.RWMutex
	stats map[string]*domain.DailyStats
}

var _ store.StatsStore = (*MemStatsStore)(nil)

func copyStats(d *domain.DailyStats) *domain.DailyStats {
	c := *d
	c.Accuracy = make(map[domain.ExerciseType]domain.ModeAccuracy, len(d.Accuracy))
	for k, v := range d.Accuracy {
		c.Accuracy[k] = v
	}
	return &c
}

func (s *MemStatsStore) GetDay(ctx context.Context, userID, day string) (*domain.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.stats[stateKey(userID, day)]
	if !ok {
		return nil, store.ErrStatsNotFound
	}
	return copyStats(d), nil
}

func (s *MemStatsStore) ListForUser(ctx context.Context, userID string) ([]*domain.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.DailyStats, 0)
	for _, d := range s.stats {
		if d.UserID == userID {
			out = append(out, copyStats(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *MemStatsStore) Put(ctx context.Context, stats *domain.DailyStats) error {
	if stats.UserID == "" || stats.Day == "" {
		return fmt.Errorf("%w: daily stats need a user and a day", store.ErrInvalidEntity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stateKey(stats.UserID, stats.Day)] = copyStats(stats)
	return nil
}

func (s *MemStatsStore) DeleteAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, d := range s.stats {
		if d.UserID == userID {
			delete(s.stats, key)
		}
	}
	return nil
}

func (s *MemStatsStore) WithTx(tx *sqlx.Tx) store.StatsStore { return s }

// MemSettingsStore implements store.SettingsStore in memory.
type MemSettingsStore struct {
	mu       sync.RWMutex
	settings map[string]*domain.UserSettings
}

var _ store.SettingsStore = (*MemSettingsStore)(nil)

func (s *MemSettingsStore) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[userID]
	if !ok {
		return nil, store.ErrSettingsNotFound
	}
	c := *st
	return &c, nil
}

func (s *MemSettingsStore) Put(ctx context.Context, settings *domain.UserSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *settings
	s.settings[settings.UserID] = &c
	return nil
}

func (s *MemSettingsStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, userID)
	return nil
}

func (s *MemSettingsStore) WithTx(tx *sqlx.Tx) store.SettingsStore { return s }

// MemTutorSessionStore implements store.TutorSessionStore in memory.
type MemTutorSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.TutorSession
}

var _ store.TutorSessionStore = (*MemTutorSessionStore)(nil)

func copyTutorSession(s *domain.TutorSession) *domain.TutorSession {
	c := *s
	c.Messages = append([]domain.TutorMessage{}, s.Messages...)
	return &c
}

func (s *MemTutorSessionStore) Get(ctx context.Context, id string) (*domain.TutorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrTutorSessionNotFound
	}
	return copyTutorSession(sess), nil
}

func (s *MemTutorSessionStore) ListForUser(ctx context.Context, userID string) ([]*domain.TutorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.TutorSession{}
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, copyTutorSession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemTutorSessionStore) Put(ctx context.Context, session *domain.TutorSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.ID]; ok && existing.UserID != session.UserID {
		return nil
	}
	s.sessions[session.ID] = copyTutorSession(session)
	return nil
}

func (s *MemTutorSessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemTutorSessionStore) WithTx(tx *sqlx.Tx) store.TutorSessionStore { return s }
