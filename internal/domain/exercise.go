package domain

// ExerciseType identifies how a word is presented in an exercise.
type ExerciseType string

// Exercise types. MatchPairs is reserved and never chosen by the session builder.
const (
	ExerciseRecognition        ExerciseType = "recognition"
	ExerciseReverseRecognition ExerciseType = "reverseRecognition"
	ExerciseRecall             ExerciseType = "recall"
	ExerciseListening          ExerciseType = "listening"
	ExerciseCloze              ExerciseType = "cloze"
	ExerciseMatchPairs         ExerciseType = "matchPairs"
)

// IsValid reports whether the exercise type is known.
func (e ExerciseType) IsValid() bool {
	switch e {
	case ExerciseRecognition,
		ExerciseReverseRecognition,
		ExerciseRecall,
		ExerciseListening,
		ExerciseCloze,
		ExerciseMatchPairs:
		return true
	default:
		return false
	}
}
