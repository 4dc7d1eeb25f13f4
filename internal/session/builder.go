package session

import (
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
)

// Queue construction constants
const (
	// maxReviewsBetweenNew bounds the reviews emitted before each new word.
	maxReviewsBetweenNew = 3

	// reinforcementOffset and reinforcementJitter place the reinforcement of a
	// new word offset+1+rand[0,jitter) steps after its first exercise.
	reinforcementOffset = 4
	reinforcementJitter = 4
)

// Limits caps how many words of each kind a session selects.
type Limits struct {
	NewCap    int
	ReviewCap int

	// Backfill fills unused review slots from learning items, soonest due first.
	Backfill bool
}

// Selection is the outcome of choosing words for a session.
type Selection struct {
	New      []Candidate
	Review   []Candidate
	Deferred []Candidate
	Overflow []Candidate
}

// Builder selects words and assembles session queues.
type Builder struct {
	srs    srs.Service
	rng    *rand.Rand
	logger *slog.Logger
}

// NewBuilder creates a Builder. The random source drives every random choice
// the builder makes, so a seeded source gives reproducible queues.
func NewBuilder(srsService srs.Service, rng *rand.Rand, logger *slog.Logger) *Builder {
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		srs:    srsService,
		rng:    rng,
		logger: logger.With(slog.String("component", "session_builder")),
	}
}

// Select partitions a user's collection for a session.
//
// The collection is walked in the user's stable shuffled order. New words fill
// New up to limits.NewCap and due words fill Review up to limits.ReviewCap; the
// surplus of either goes to Deferred. Learning words go to Overflow and
// mastered words are left out. Review is sorted by due time, soonest first.
// Candidates without a review state are skipped.
func (b *Builder) Select(
	userID string,
	candidates []Candidate,
	limits Limits,
	now time.Time,
) Selection {
	var sel Selection

	for _, c := range seededShuffle(candidates, userID) {
		if c.Word == nil {
			continue
		}
		if c.State == nil {
			b.logger.Warn("skipping word without review state",
				slog.String("user_id", userID),
				slog.String("item_id", c.Word.ID))
			continue
		}

		switch b.srs.Status(c.State, now) {
		case srs.StatusNew:
			if len(sel.New) < limits.NewCap {
				sel.New = append(sel.New, c)
			} else {
				sel.Deferred = append(sel.Deferred, c)
			}
		case srs.StatusDue:
			if len(sel.Review) < limits.ReviewCap {
				sel.Review = append(sel.Review, c)
			} else {
				sel.Deferred = append(sel.Deferred, c)
			}
		case srs.StatusLearning:
			sel.Overflow = append(sel.Overflow, c)
		case srs.StatusMastered:
			// not studied
		}
	}

	sortByDue(sel.Review)

	if limits.Backfill && len(sel.Review) < limits.ReviewCap && len(sel.Overflow) > 0 {
		sortByDue(sel.Overflow)
		n := limits.ReviewCap - len(sel.Review)
		if n > len(sel.Overflow) {
			n = len(sel.Overflow)
		}
		sel.Review = append(sel.Review, sel.Overflow[:n]...)
		sel.Overflow = sel.Overflow[n:]
	}

	return sel
}

func sortByDue(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].State.DueAt.Before(cs[j].State.DueAt)
	})
}

// pendingReinforcement is a reinforcement exercise waiting for its slot.
// Positions are indexes into the queue as finally built.
type pendingReinforcement struct {
	earliest int
	target   int
	item     Item
}

// Build assembles the queue for a selection.
//
// Reviews are shuffled. Before each new word up to three reviews are emitted,
// spreading the reviews evenly over the new words, followed by the word's
// introduction and its first recognition exercise. The word's reinforcement
// exercise lands five to eight steps after that first exercise; when the
// queue runs out first it goes at the end. Leftover reviews close the queue.
// A selection with n new words and r reviews yields 3n+r steps.
func (b *Builder) Build(sel Selection) *Queue {
	reviews := make([]Item, len(sel.Review))
	for i, c := range sel.Review {
		reviews[i] = Item{
			Word:     c.Word,
			State:    c.State,
			Step:     StepExercise,
			Exercise: b.reviewExercise(c.Word, c.State),
		}
	}
	b.rng.Shuffle(len(reviews), func(i, j int) {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	})

	items := make([]Item, 0, 3*len(sel.New)+len(reviews))
	var pending []pendingReinforcement

	// flush emits the reinforcements whose slot has been reached. With
	// pairOpen set the next two slots hold an intro and its exercise, so a
	// reinforcement aimed at the second of them moves in front of the pair
	// when that is still inside its window.
	flush := func(pairOpen bool) {
		for len(pending) > 0 {
			next := pending[0]
			due := len(items) >= next.target ||
				(pairOpen && next.target == len(items)+1 && len(items) >= next.earliest)
			if !due {
				return
			}
			items = append(items, next.item)
			pending = pending[1:]
		}
	}

	ri := 0
	for ni, c := range sel.New {
		gap := ceilDiv(len(reviews)-ri, len(sel.New)-ni)
		if gap > maxReviewsBetweenNew {
			gap = maxReviewsBetweenNew
		}
		for g := 0; g < gap; g++ {
			flush(false)
			items = append(items, reviews[ri])
			ri++
		}

		flush(true)
		items = append(items,
			Item{Word: c.Word, State: c.State, Step: StepIntro, Exercise: domain.ExerciseRecognition, IsNew: true},
			Item{Word: c.Word, State: c.State, Step: StepExercise, Exercise: domain.ExerciseRecognition, IsNew: true},
		)

		earliest := len(items) + reinforcementOffset
		pending = append(pending, pendingReinforcement{
			earliest: earliest,
			target:   earliest + b.rng.Intn(reinforcementJitter),
			item: Item{
				Word:     c.Word,
				State:    c.State,
				Step:     StepExercise,
				Exercise: b.reinforcementExercise(),
			},
		})
	}

	for ; ri < len(reviews); ri++ {
		flush(false)
		items = append(items, reviews[ri])
	}
	flush(false)
	for _, p := range pending {
		items = append(items, p.item)
	}

	q := NewQueue(items)

	b.logger.Debug("built session queue",
		slog.Int("new", len(sel.New)),
		slog.Int("reviews", len(reviews)),
		slog.Int("steps", q.Len()))

	return q
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func (b *Builder) pick(options []domain.ExerciseType) domain.ExerciseType {
	return options[b.rng.Intn(len(options))]
}

func (b *Builder) reinforcementExercise() domain.ExerciseType {
	return b.pick([]domain.ExerciseType{
		domain.ExerciseReverseRecognition,
		domain.ExerciseRecall,
	})
}

// reviewExercise picks the exercise for a due word from its strength.
// Weak words (ease below 2.0 or more than two lapses) only get the choice
// exercises. Strong words (ease at least 2.5 and a streak of three) skip plain
// recognition. Cloze and listening need example sentences.
func (b *Builder) reviewExercise(word *domain.WordItem, state *domain.ReviewState) domain.ExerciseType {
	var options []domain.ExerciseType

	switch {
	case state.EaseFactor < 2.0 || state.Lapses > 2:
		return b.pick([]domain.ExerciseType{
			domain.ExerciseRecognition,
			domain.ExerciseReverseRecognition,
		})
	case state.EaseFactor >= 2.5 && state.SuccessStreak >= 3:
		options = []domain.ExerciseType{
			domain.ExerciseRecall,
			domain.ExerciseReverseRecognition,
		}
	default:
		options = []domain.ExerciseType{
			domain.ExerciseRecognition,
			domain.ExerciseReverseRecognition,
			domain.ExerciseRecall,
		}
	}

	if word.HasExamples() {
		options = append(options, domain.ExerciseCloze, domain.ExerciseListening)
	}

	return b.pick(options)
}
