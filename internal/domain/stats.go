package domain

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the calendar-day format used for daily statistics.
const DayLayout = "2006-01-02"

// ErrEmptyStatsUserID is returned when daily stats have no user.
var ErrEmptyStatsUserID = errors.New("daily stats user ID cannot be empty")

// ModeAccuracy counts answers for one exercise type.
type ModeAccuracy struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// DailyStats aggregates one user's activity on one UTC calendar day.
type DailyStats struct {
	UserID           string                        `json:"user_id"`
	Day              string                        `json:"day"`
	ReviewsDone      int                           `json:"reviews_done"`
	NewLearned       int                           `json:"new_learned"`
	Accuracy         map[ExerciseType]ModeAccuracy `json:"accuracy"`
	TimeSpentSeconds int                           `json:"time_spent_seconds"`
}

// DayKey returns the calendar day of t in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// NewDailyStats creates empty stats for a user and the day containing now.
func NewDailyStats(userID string, now time.Time) (*DailyStats, error) {
	if userID == "" {
		return nil, ErrEmptyStatsUserID
	}
	return &DailyStats{
		UserID:   userID,
		Day:      DayKey(now),
		Accuracy: map[ExerciseType]ModeAccuracy{},
	}, nil
}

// Key identifies the stats record of a user and day.
func (d *DailyStats) Key() string {
	return fmt.Sprintf("%s_%s", d.UserID, d.Day)
}

// RecordAnswer adds one answered exercise.
func (d *DailyStats) RecordAnswer(exercise ExerciseType, correct, firstExposure bool) {
	if d.Accuracy == nil {
		d.Accuracy = map[ExerciseType]ModeAccuracy{}
	}
	d.ReviewsDone++
	if firstExposure {
		d.NewLearned++
	}
	acc := d.Accuracy[exercise]
	acc.Total++
	if correct {
		acc.Correct++
	}
	d.Accuracy[exercise] = acc
}

// AddTime adds time spent on the day, truncated to whole seconds.
func (d *DailyStats) AddTime(elapsed time.Duration) {
	if elapsed > 0 {
		d.TimeSpentSeconds += int(elapsed / time.Second)
	}
}

// AccuracyRate returns the overall share of correct answers, 0 when none.
func (d *DailyStats) AccuracyRate() float64 {
	var correct, total int
	for _, acc := range d.Accuracy {
		correct += acc.Correct
		total += acc.Total
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
