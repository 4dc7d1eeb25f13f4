package srs

import "time"

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Ease factor limits
	MinEaseFactor     float64
	InitialEaseFactor float64

	// Ease factor update: ease + EaseBonus - d*(EasePenaltyBase + d*EasePenaltyStep), d = 5 - grade
	EaseBonus       float64
	EasePenaltyBase float64
	EasePenaltyStep float64

	// Interval ladder for the first two successful repetitions, in days
	FirstInterval  int
	SecondInterval int

	// Delay before a failed item is due again
	RelearnDelay time.Duration

	// Mastery thresholds
	MasteryInterval int
	MasteryStreak   int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor     float64
	InitialEaseFactor float64

	FirstInterval  int
	SecondInterval int

	RelearnMinutes int

	MasteryInterval int
	MasteryStreak   int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     1.3,
		InitialEaseFactor: 2.5,

		EaseBonus:       0.1,
		EasePenaltyBase: 0.08,
		EasePenaltyStep: 0.02,

		FirstInterval:  1,
		SecondInterval: 3,

		// Review again in 10 minutes
		RelearnDelay: 10 * time.Minute,

		MasteryInterval: 21,
		MasteryStreak:   3,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.RelearnMinutes > 0 {
		params.RelearnDelay = time.Duration(config.RelearnMinutes) * time.Minute
	}
	if config.MasteryInterval > 0 {
		params.MasteryInterval = config.MasteryInterval
	}
	if config.MasteryStreak > 0 {
		params.MasteryStreak = config.MasteryStreak
	}

	return params
}
