package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// wordRow is the column layout of the words table. List columns are JSON.
type wordRow struct {
	ID              string    `db:"id"`
	Raw             string    `db:"raw"`
	Vowelized       string    `db:"vowelized"`
	Transliteration string    `db:"transliteration"`
	PartOfSpeech    string    `db:"part_of_speech"`
	English         string    `db:"english"`
	Dutch           string    `db:"dutch"`
	Synonyms        string    `db:"synonyms"`
	Examples        string    `db:"examples"`
	Notes           string    `db:"notes"`
	Enriched        bool      `db:"enriched"`
	EnrichError     bool      `db:"enrich_error"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

const wordColumns = `id, raw, vowelized, transliteration, part_of_speech, english, dutch,
	synonyms, examples, notes, enriched, enrich_error, created_at, updated_at`

func newWordRow(w *domain.WordItem) (*wordRow, error) {
	synonyms := w.Synonyms
	if synonyms == nil {
		synonyms = []domain.Synonym{}
	}
	examples := w.Examples
	if examples == nil {
		examples = []domain.ExampleSentence{}
	}

	synJSON, err := json.Marshal(synonyms)
	if err != nil {
		return nil, fmt.Errorf("failed to encode synonyms: %w", err)
	}
	exJSON, err := json.Marshal(examples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode examples: %w", err)
	}

	return &wordRow{
		ID:              w.ID,
		Raw:             w.Raw,
		Vowelized:       w.Vowelized,
		Transliteration: w.Transliteration,
		PartOfSpeech:    w.PartOfSpeech,
		English:         w.English,
		Dutch:           w.Dutch,
		Synonyms:        string(synJSON),
		Examples:        string(exJSON),
		Notes:           w.Notes,
		Enriched:        w.Enriched,
		EnrichError:     w.EnrichError,
		CreatedAt:       w.CreatedAt.UTC(),
		UpdatedAt:       w.UpdatedAt.UTC(),
	}, nil
}

func (r *wordRow) toDomain() (*domain.WordItem, error) {
	w := &domain.WordItem{
		ID:              r.ID,
		Raw:             r.Raw,
		Vowelized:       r.Vowelized,
		Transliteration: r.Transliteration,
		PartOfSpeech:    r.PartOfSpeech,
		English:         r.English,
		Dutch:           r.Dutch,
		Notes:           r.Notes,
		Enriched:        r.Enriched,
		EnrichError:     r.EnrichError,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}

	if err := json.Unmarshal([]byte(r.Synonyms), &w.Synonyms); err != nil {
		return nil, fmt.Errorf("failed to decode synonyms of word %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Examples), &w.Examples); err != nil {
		return nil, fmt.Errorf("failed to decode examples of word %s: %w", r.ID, err)
	}
	if w.Synonyms == nil {
		w.Synonyms = []domain.Synonym{}
	}
	if w.Examples == nil {
		w.Examples = []domain.ExampleSentence{}
	}

	return w, nil
}

// reviewStateRow is the column layout of the review_states table.
type reviewStateRow struct {
	UserID         string       `db:"user_id"`
	ItemID         string       `db:"item_id"`
	DueAt          time.Time    `db:"due_at"`
	IntervalDays   int          `db:"interval_days"`
	EaseFactor     float64      `db:"ease_factor"`
	Repetitions    int          `db:"repetitions"`
	Lapses         int          `db:"lapses"`
	LastReviewedAt sql.NullTime `db:"last_reviewed_at"`
	LastGrade      int          `db:"last_grade"`
	TotalReviews   int          `db:"total_reviews"`
	SuccessStreak  int          `db:"success_streak"`
	Epoch          int64        `db:"epoch"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

const reviewStateColumns = `user_id, item_id, due_at, interval_days, ease_factor, repetitions,
	lapses, last_reviewed_at, last_grade, total_reviews, success_streak, epoch, created_at, updated_at`

func newReviewStateRow(s *domain.ReviewState) *reviewStateRow {
	row := &reviewStateRow{
		UserID:        s.UserID,
		ItemID:        s.ItemID,
		DueAt:         s.DueAt.UTC(),
		IntervalDays:  s.IntervalDays,
		EaseFactor:    s.EaseFactor,
		Repetitions:   s.Repetitions,
		Lapses:        s.Lapses,
		LastGrade:     int(s.LastGrade),
		TotalReviews:  s.TotalReviews,
		SuccessStreak: s.SuccessStreak,
		Epoch:         s.Epoch,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
	if !s.LastReviewedAt.IsZero() {
		row.LastReviewedAt = sql.NullTime{Time: s.LastReviewedAt.UTC(), Valid: true}
	}
	return row
}

func (r *reviewStateRow) toDomain() *domain.ReviewState {
	s := &domain.ReviewState{
		UserID:        r.UserID,
		ItemID:        r.ItemID,
		DueAt:         r.DueAt.UTC(),
		IntervalDays:  r.IntervalDays,
		EaseFactor:    r.EaseFactor,
		Repetitions:   r.Repetitions,
		Lapses:        r.Lapses,
		LastGrade:     domain.Grade(r.LastGrade),
		TotalReviews:  r.TotalReviews,
		SuccessStreak: r.SuccessStreak,
		Epoch:         r.Epoch,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.LastReviewedAt.Valid {
		s.LastReviewedAt = r.LastReviewedAt.Time.UTC()
	}
	return s
}

// dailyStatsRow is the column layout of the daily_stats table.
type dailyStatsRow struct {
	UserID           string `db:"user_id"`
	Day              string `db:"day"`
	ReviewsDone      int    `db:"reviews_done"`
	NewLearned       int    `db:"new_learned"`
	Accuracy         string `db:"accuracy"`
	TimeSpentSeconds int    `db:"time_spent_seconds"`
}

func newDailyStatsRow(d *domain.DailyStats) (*dailyStatsRow, error) {
	accuracy := d.Accuracy
	if accuracy == nil {
		accuracy = map[domain.ExerciseType]domain.ModeAccuracy{}
	}
	accJSON, err := json.Marshal(accuracy)
	if err != nil {
		return nil, fmt.Errorf("failed to encode accuracy: %w", err)
	}
	return &dailyStatsRow{
		UserID:           d.UserID,
		Day:              d.Day,
		ReviewsDone:      d.ReviewsDone,
		NewLearned:       d.NewLearned,
		Accuracy:         string(accJSON),
		TimeSpentSeconds: d.TimeSpentSeconds,
	}, nil
}

func (r *dailyStatsRow) toDomain() (*domain.DailyStats, error) {
	d := &domain.DailyStats{
		UserID:           r.UserID,
		Day:              r.Day,
		ReviewsDone:      r.ReviewsDone,
		NewLearned:       r.NewLearned,
		TimeSpentSeconds: r.TimeSpentSeconds,
	}
	if err := json.Unmarshal([]byte(r.Accuracy), &d.Accuracy); err != nil {
		return nil, fmt.Errorf("failed to decode accuracy of %s/%s: %w", r.UserID, r.Day, err)
	}
	if d.Accuracy == nil {
		d.Accuracy = map[domain.ExerciseType]domain.ModeAccuracy{}
	}
	return d, nil
}

// settingsRow is the column layout of the user_settings table.
type settingsRow struct {
	UserID            string `db:"user_id"`
	DailyNewTarget    int    `db:"daily_new_target"`
	DailyReviewTarget int    `db:"daily_review_target"`
	Backfill          bool   `db:"backfill"`
}

// tutorSessionRow is the column layout of the tutor_sessions table.
// Messages are stored as one JSON array.
type tutorSessionRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Language  string    `db:"language"`
	Messages  string    `db:"messages"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const tutorSessionColumns = `id, user_id, language, messages, created_at, updated_at`

func newTutorSessionRow(s *domain.TutorSession) (*tutorSessionRow, error) {
	messages := s.Messages
	if messages == nil {
		messages = []domain.TutorMessage{}
	}
	msgJSON, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tutor messages: %w", err)
	}
	return &tutorSessionRow{
		ID:        s.ID,
		UserID:    s.UserID,
		Language:  string(s.Language),
		Messages:  string(msgJSON),
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}, nil
}

func (r *tutorSessionRow) toDomain() (*domain.TutorSession, error) {
	s := &domain.TutorSession{
		ID:        r.ID,
		UserID:    r.UserID,
		Language:  domain.Language(r.Language),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Messages), &s.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages of tutor session %s: %w", r.ID, err)
	}
	if s.Messages == nil {
		s.Messages = []domain.TutorMessage{}
	}
	return s, nil
}
