package session

// Queue is the ordered, growable sequence of steps of a session with a cursor
// on the current step. Steps before the cursor are done.
type Queue struct {
	items  []Item
	cursor int
}

// NewQueue creates a queue over a copy of items with the cursor on the first.
func NewQueue(items []Item) *Queue {
	q := &Queue{items: make([]Item, len(items))}
	copy(q.items, items)
	return q
}

// Current returns the step under the cursor, or nil when the queue is done.
func (q *Queue) Current() *Item {
	if q.Done() {
		return nil
	}
	return &q.items[q.cursor]
}

// Advance moves the cursor to the next step. It reports whether a step remains.
func (q *Queue) Advance() bool {
	if q.cursor < len(q.items) {
		q.cursor++
	}
	return !q.Done()
}

// InsertAt inserts item at pos, clamped to [0, Len()], and returns the
// position it landed at.
func (q *Queue) InsertAt(pos int, item Item) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(q.items) {
		pos = len(q.items)
	}
	if pos < q.cursor {
		q.cursor++
	}

	q.items = append(q.items, Item{})
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item

	return pos
}

// Len returns the total number of steps, done or not.
func (q *Queue) Len() int {
	return len(q.items)
}

// Remaining returns the number of steps from the cursor to the end.
func (q *Queue) Remaining() int {
	return len(q.items) - q.cursor
}

// Cursor returns the index of the current step.
func (q *Queue) Cursor() int {
	return q.cursor
}

// Done reports whether every step has been played.
func (q *Queue) Done() bool {
	return q.cursor >= len(q.items)
}

// At returns the step at index i.
func (q *Queue) At(i int) (Item, bool) {
	if i < 0 || i >= len(q.items) {
		return Item{}, false
	}
	return q.items[i], true
}

// Items returns a copy of all steps.
func (q *Queue) Items() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// updateWord applies fn to every step for the given word.
func (q *Queue) updateWord(wordID string, fn func(item *Item)) {
	for i := range q.items {
		if q.items[i].Word != nil && q.items[i].Word.ID == wordID {
			fn(&q.items[i])
		}
	}
}
