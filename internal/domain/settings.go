package domain

import "errors"

// Default daily targets applied when a user has no stored settings.
const (
	DefaultDailyNewTarget    = 10
	DefaultDailyReviewTarget = 40
)

// Settings validation errors
var (
	ErrEmptySettingsUserID = errors.New("settings user ID cannot be empty")
	ErrInvalidTarget       = errors.New("daily targets cannot be negative")
)

// UserSettings holds a user's session preferences.
type UserSettings struct {
	UserID            string `json:"user_id"`
	DailyNewTarget    int    `json:"daily_new_target"`
	DailyReviewTarget int    `json:"daily_review_target"`
	Backfill          bool   `json:"backfill"`
}

// DefaultUserSettings returns the settings used when none are stored.
func DefaultUserSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:            userID,
		DailyNewTarget:    DefaultDailyNewTarget,
		DailyReviewTarget: DefaultDailyReviewTarget,
	}
}

// Validate checks if the settings have valid data.
func (s *UserSettings) Validate() error {
	if s.UserID == "" {
		return ErrEmptySettingsUserID
	}
	if s.DailyNewTarget < 0 || s.DailyReviewTarget < 0 {
		return ErrInvalidTarget
	}
	return nil
}
