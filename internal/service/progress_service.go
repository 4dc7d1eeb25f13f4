package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/store"
)

// Stats summary constants
const (
	// weakLapseThreshold is the lapse count from which a word is listed as weak.
	weakLapseThreshold = 2
	// maxWeakItems caps the weak-items list.
	maxWeakItems = 20
	// recentDays is the length of the recent-activity window.
	recentDays = 7
	// maxStreakDays bounds the streak walk.
	maxStreakDays = 365
)

// StatusCounts counts a user's words by derived status.
type StatusCounts struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Due      int `json:"due"`
	Mastered int `json:"mastered"`
	Total    int `json:"total"`
}

// DaySummary is one day of the recent-activity window.
type DaySummary struct {
	Day        string `json:"day"`
	Reviews    int    `json:"reviews"`
	NewLearned int    `json:"new_learned"`
}

// WeakItem is a word the user keeps forgetting.
type WeakItem struct {
	Word   *domain.WordItem `json:"word"`
	Lapses int              `json:"lapses"`
}

// StatsSummary aggregates a user's daily statistics.
type StatsSummary struct {
	TotalReviews     int                `json:"total_reviews"`
	TotalNewLearned  int                `json:"total_new_learned"`
	TotalTimeSeconds int                `json:"total_time_seconds"`
	ActiveDays       int                `json:"active_days"`
	Streak           int                `json:"streak"`
	Accuracy         float64            `json:"accuracy"`
	Today            *domain.DailyStats `json:"today"`
	LastSevenDays    []DaySummary       `json:"last_seven_days"`
	WeakItems        []WeakItem         `json:"weak_items"`
	Counts           StatusCounts       `json:"counts"`
}

// UserData is the JSON export of one user's data. Words are shared by all
// users and are included so a fresh installation can be restored.
type UserData struct {
	Words    []*domain.WordItem    `json:"words"`
	States   []*domain.ReviewState `json:"srs"`
	Stats    []*domain.DailyStats  `json:"stats"`
	Settings *domain.UserSettings  `json:"settings,omitempty"`
}

// ResetHook is called after a user's progress has been reset.
type ResetHook func(ctx context.Context, userID string)

// ProgressService manages per-user progress: review states, statistics and
// settings.
type ProgressService struct {
	stores   Stores
	db       *sqlx.DB
	srs      srs.Service
	defaults config.SessionConfig
	now      func() time.Time
	logger   *slog.Logger

	hooksMu    sync.RWMutex
	resetHooks []ResetHook
}

// NewProgressService creates a ProgressService. db may be nil, in which case
// multi-store operations run without a transaction.
func NewProgressService(
	stores Stores,
	db *sqlx.DB,
	srsService srs.Service,
	clock func() time.Time,
	logger *slog.Logger,
) (*ProgressService, error) {
	if err := stores.Validate(); err != nil {
		return nil, err
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

	defaults := config.SessionConfig{
		DailyNewTarget:    domain.DefaultDailyNewTarget,
		DailyReviewTarget: domain.DefaultDailyReviewTarget,
	}

	return &ProgressService{
		stores:   stores,
		db:       db,
		srs:      srsService,
		defaults: defaults,
		now:      clock,
		logger:   logger.With(slog.String("component", "progress_service")),
	}, nil
}

// OnReset registers hook to run after every successful ResetProgress.
func (s *ProgressService) OnReset(hook ResetHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.resetHooks = append(s.resetHooks, hook)
}

// UseSessionDefaults makes cfg the settings of users who stored none.
func (s *ProgressService) UseSessionDefaults(cfg config.SessionConfig) {
	s.defaults = cfg
}

// InitializeCollection creates an initial review state, due now, for every
// word the user has no state for yet. It returns how many were created.
func (s *ProgressService) InitializeCollection(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrEmptyUserID
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created int
	err := inTransaction(ctx, s.db, s.stores, func(ctx context.Context, stores Stores) error {
		var err error
		created, err = s.initialize(ctx, stores, userID, 0)
		return err
	})
	if err != nil {
		log.Error("failed to initialise collection",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return 0, NewServiceError("initialize_collection", "failed to create review states", err)
	}

	log.Info("collection initialised",
		slog.String("user_id", userID),
		slog.Int("created", created))
	return created, nil
}

// initialize creates the missing review states in the user's current epoch,
// or in minEpoch when that is later.
func (s *ProgressService) initialize(ctx context.Context, stores Stores, userID string, minEpoch int64) (int, error) {
	words, err := stores.Words.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list words: %w", err)
	}
	existing, err := stores.States.GetAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list review states: %w", err)
	}

	epoch := minEpoch
	have := make(map[string]struct{}, len(existing))
	for _, st := range existing {
		have[st.ItemID] = struct{}{}
		if st.Epoch > epoch {
			epoch = st.Epoch
		}
	}

	now := s.now()
	missing := make([]*domain.ReviewState, 0)
	for _, w := range words {
		if _, ok := have[w.ID]; ok {
			continue
		}
		st, err := domain.NewReviewState(userID, w.ID, now)
		if err != nil {
			return 0, err
		}
		st.Epoch = epoch
		missing = append(missing, st)
	}

	if len(missing) == 0 {
		return 0, nil
	}
	if err := stores.States.PutMany(ctx, missing); err != nil {
		return 0, fmt.Errorf("store review states: %w", err)
	}
	return len(missing), nil
}

// ResetProgress deletes the user's review states, statistics and settings,
// then recreates every review state at its initial value in a new epoch, so
// writes computed before the reset are stale. Reset hooks run afterwards.
func (s *ProgressService) ResetProgress(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := inTransaction(ctx, s.db, s.stores, func(ctx context.Context, stores Stores) error {
		epoch, err := currentEpoch(ctx, stores, userID)
		if err != nil {
			return err
		}
		if err := stores.States.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete review states: %w", err)
		}
		if err := stores.Stats.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete stats: %w", err)
		}
		if err := stores.Settings.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete settings: %w", err)
		}
		_, err = s.initialize(ctx, stores, userID, epoch+1)
		return err
	})
	if err != nil {
		log.Error("failed to reset progress",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return NewServiceError("reset_progress", "failed to reset progress", err)
	}

	s.hooksMu.RLock()
	hooks := append([]ResetHook(nil), s.resetHooks...)
	s.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, userID)
	}

	log.Info("progress reset", slog.String("user_id", userID))
	return nil
}

// currentEpoch returns the highest epoch among the user's review states.
func currentEpoch(ctx context.Context, stores Stores, userID string) (int64, error) {
	states, err := stores.States.GetAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list review states: %w", err)
	}
	var epoch int64
	for _, st := range states {
		if st.Epoch > epoch {
			epoch = st.Epoch
		}
	}
	return epoch, nil
}

// StatusCounts classifies every word of the collection for the user. Words
// without a review state count as new.
func (s *ProgressService) StatusCounts(ctx context.Context, userID string) (StatusCounts, error) {
	if userID == "" {
		return StatusCounts{}, ErrEmptyUserID
	}

	words, states, err := s.loadCollection(ctx, userID)
	if err != nil {
		return StatusCounts{}, NewServiceError("status_counts", "failed to load collection", err)
	}
	return s.count(words, states, s.now()), nil
}

func (s *ProgressService) loadCollection(
	ctx context.Context,
	userID string,
) ([]*domain.WordItem, map[string]*domain.ReviewState, error) {
	words, err := s.stores.Words.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list words: %w", err)
	}
	list, err := s.stores.States.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list review states: %w", err)
	}

	states := make(map[string]*domain.ReviewState, len(list))
	for _, st := range list {
		states[st.ItemID] = st
	}
	return words, states, nil
}

func (s *ProgressService) count(words []*domain.WordItem, states map[string]*domain.ReviewState, now time.Time) StatusCounts {
	var c StatusCounts
	for _, w := range words {
		c.Total++
		st, ok := states[w.ID]
		if !ok {
			c.New++
			continue
		}
		switch s.srs.Status(st, now) {
		case srs.StatusNew:
			c.New++
		case srs.StatusLearning:
			c.Learning++
		case srs.StatusDue:
			c.Due++
		case srs.StatusMastered:
			c.Mastered++
		}
	}
	return c
}

// Stats summarises the user's activity: totals, the streak of consecutive
// active days ending today, the last seven days, and the words with the most
// lapses.
func (s *ProgressService) Stats(ctx context.Context, userID string) (*StatsSummary, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	days, err := s.stores.Stats.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("stats", "failed to load daily stats", err)
	}
	words, states, err := s.loadCollection(ctx, userID)
	if err != nil {
		return nil, NewServiceError("stats", "failed to load collection", err)
	}

	now := s.now()
	today := domain.DayKey(now)
	byDay := make(map[string]*domain.DailyStats, len(days))

	summary := &StatsSummary{
		LastSevenDays: make([]DaySummary, 0, recentDays),
		WeakItems:     make([]WeakItem, 0),
		Counts:        s.count(words, states, now),
	}

	var correct, total int
	for _, d := range days {
		byDay[d.Day] = d
		summary.TotalReviews += d.ReviewsDone
		summary.TotalNewLearned += d.NewLearned
		summary.TotalTimeSeconds += d.TimeSpentSeconds
		if d.ReviewsDone > 0 {
			summary.ActiveDays++
		}
		for _, acc := range d.Accuracy {
			correct += acc.Correct
			total += acc.Total
		}
	}
	if total > 0 {
		summary.Accuracy = float64(correct) / float64(total)
	}

	if d, ok := byDay[today]; ok {
		summary.Today = d
	} else {
		summary.Today, _ = domain.NewDailyStats(userID, now)
	}

	summary.Streak = streak(byDay, now)

	for i := recentDays - 1; i >= 0; i-- {
		key := domain.DayKey(now.AddDate(0, 0, -i))
		day := DaySummary{Day: key}
		if d, ok := byDay[key]; ok {
			day.Reviews = d.ReviewsDone
			day.NewLearned = d.NewLearned
		}
		summary.LastSevenDays = append(summary.LastSevenDays, day)
	}

	for _, w := range words {
		if st, ok := states[w.ID]; ok && st.Lapses >= weakLapseThreshold {
			summary.WeakItems = append(summary.WeakItems, WeakItem{Word: w, Lapses: st.Lapses})
		}
	}
	sort.SliceStable(summary.WeakItems, func(i, j int) bool {
		return summary.WeakItems[i].Lapses > summary.WeakItems[j].Lapses
	})
	if len(summary.WeakItems) > maxWeakItems {
		summary.WeakItems = summary.WeakItems[:maxWeakItems]
	}

	return summary, nil
}

// streak counts consecutive active days ending today. A quiet today does not
// break a streak that ended yesterday.
func streak(byDay map[string]*domain.DailyStats, now time.Time) int {
	n := 0
	for i := 0; i < maxStreakDays; i++ {
		d, ok := byDay[domain.DayKey(now.AddDate(0, 0, -i))]
		if ok && d.ReviewsDone > 0 {
			n++
		} else if i > 0 {
			break
		}
	}
	return n
}

// RecordAnswer adds one answered exercise to today's statistics.
func (s *ProgressService) RecordAnswer(
	ctx context.Context,
	userID string,
	exercise domain.ExerciseType,
	correct, firstExposure bool,
	elapsed time.Duration,
) error {
	now := s.now()
	day, err := s.stores.Stats.GetDay(ctx, userID, domain.DayKey(now))
	if errors.Is(err, store.ErrNotFound) {
		day, err = domain.NewDailyStats(userID, now)
	}
	if err != nil {
		return NewServiceError("record_answer", "failed to load today's stats", err)
	}

	day.RecordAnswer(exercise, correct, firstExposure)
	day.AddTime(elapsed)

	if err := s.stores.Stats.Put(ctx, day); err != nil {
		return NewServiceError("record_answer", "failed to store today's stats", err)
	}
	return nil
}

// GetSettings returns the user's settings, or the configured defaults when
// none are stored.
func (s *ProgressService) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	settings, err := s.stores.Settings.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.UserSettings{
			UserID:            userID,
			DailyNewTarget:    s.defaults.DailyNewTarget,
			DailyReviewTarget: s.defaults.DailyReviewTarget,
			Backfill:          s.defaults.Backfill,
		}, nil
	}
	if err != nil {
		return nil, NewServiceError("get_settings", "failed to load settings", err)
	}
	return settings, nil
}

// PutSettings stores the user's settings.
func (s *ProgressService) PutSettings(ctx context.Context, settings *domain.UserSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := s.stores.Settings.Put(ctx, settings); err != nil {
		return NewServiceError("put_settings", "failed to store settings", err)
	}
	return nil
}

// Export returns all of the user's data together with the word list.
func (s *ProgressService) Export(ctx context.Context, userID string) (*UserData, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	words, err := s.stores.Words.List(ctx)
	if err != nil {
		return nil, NewServiceError("export", "failed to list words", err)
	}
	states, err := s.stores.States.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("export", "failed to list review states", err)
	}
	stats, err := s.stores.Stats.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("export", "failed to list stats", err)
	}
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserData{Words: words, States: states, Stats: stats, Settings: settings}, nil
}

// Import restores exported data for userID. Ownership of every review state,
// stats record and the settings is rewritten to userID. Imported review states
// join the user's current epoch and never replace a stored state with more
// reviews.
func (s *ProgressService) Import(ctx context.Context, userID string, data *UserData) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if data == nil {
		return fmt.Errorf("%w: no data", ErrInvalidImport)
	}

	states := make([]*domain.ReviewState, 0, len(data.States))
	for _, st := range data.States {
		if st == nil {
			continue
		}
		c := st.Clone()
		c.UserID = userID
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: review state %s: %v", ErrInvalidImport, c.ItemID, err)
		}
		states = append(states, c)
	}

	words := make([]*domain.WordItem, 0, len(data.Words))
	for _, w := range data.Words {
		if w == nil {
			continue
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: word %q: %v", ErrInvalidImport, w.Raw, err)
		}
		words = append(words, w)
	}

	var settings *domain.UserSettings
	if data.Settings != nil {
		c := *data.Settings
		c.UserID = userID
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: settings: %v", ErrInvalidImport, err)
		}
		settings = &c
	}

	err := inTransaction(ctx, s.db, s.stores, func(ctx context.Context, stores Stores) error {
		if len(words) > 0 {
			if err := stores.Words.PutMany(ctx, words); err != nil {
				return fmt.Errorf("store words: %w", err)
			}
		}
		if len(states) > 0 {
			epoch, err := currentEpoch(ctx, stores, userID)
			if err != nil {
				return err
			}
			for _, st := range states {
				st.Epoch = epoch
			}
			if err := stores.States.PutMany(ctx, states); err != nil {
				return fmt.Errorf("store review states: %w", err)
			}
		}
		for _, d := range data.Stats {
			if d == nil {
				continue
			}
			c := *d
			c.UserID = userID
			if err := stores.Stats.Put(ctx, &c); err != nil {
				return fmt.Errorf("store stats for %s: %w", c.Day, err)
			}
		}
		if settings != nil {
			if err := stores.Settings.Put(ctx, settings); err != nil {
				return fmt.Errorf("store settings: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return NewServiceError("import", "failed to import user data", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user data imported",
		slog.String("user_id", userID),
		slog.Int("words", len(words)),
		slog.Int("states", len(states)),
		slog.Int("stats", len(data.Stats)))
	return nil
}
