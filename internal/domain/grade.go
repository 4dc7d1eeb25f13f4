package domain

// Grade is a review grade on the 0-5 scale. Grades below PassingGrade are
// failures.
type Grade int

// Grade bounds and the grades used for binary correctness.
const (
	MinGrade       Grade = 0
	MaxGrade       Grade = 5
	PassingGrade   Grade = 3
	CorrectGrade   Grade = 4
	IncorrectGrade Grade = 1
)

// IsValid reports whether the grade lies on the 0-5 scale.
func (g Grade) IsValid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// IsSuccess reports whether the grade counts as a successful recall.
func (g Grade) IsSuccess() bool {
	return g >= PassingGrade
}

// GradeFromCorrect maps binary correctness onto the grade scale.
func GradeFromCorrect(correct bool) Grade {
	if correct {
		return CorrectGrade
	}
	return IncorrectGrade
}

// ReviewOutcome is a self-assessed review result.
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

var outcomeGrades = map[ReviewOutcome]Grade{
	ReviewOutcomeAgain: 1,
	ReviewOutcomeHard:  3,
	ReviewOutcomeGood:  4,
	ReviewOutcomeEasy:  5,
}

// GradeFromOutcome maps a review outcome onto the grade scale.
func GradeFromOutcome(outcome ReviewOutcome) (Grade, error) {
	g, ok := outcomeGrades[outcome]
	if !ok {
		return 0, ErrInvalidReviewOutcome
	}
	return g, nil
}
