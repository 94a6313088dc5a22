package pipeline

// Candidate is a best-so-far value for one retry loop.
type Candidate struct {
	// Value is the candidate itself: generated copy for the text loop,
	// an image path for the image and overlay loops.
	Value string
	// Passed reports whether this candidate cleared validation.
	Passed bool
	// Attempt is the 1-based attempt number that produced the candidate.
	Attempt int
}

// Tracker keeps the best candidate per loop under the non-downgrade rule:
// the first attempt seeds an unconditional fallback, every later passing
// attempt overwrites it (latest pass wins), and a failing attempt never
// replaces a passing candidate.
type Tracker struct {
	best map[string]Candidate
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{best: make(map[string]Candidate)}
}

// Seed records value as the loop's fallback if the loop has no candidate
// yet. Generation stages call this on their first attempt so the run always
// has something to save, even if every validation fails.
func (t *Tracker) Seed(loop, value string, attempt int) {
	if _, ok := t.best[loop]; ok {
		return
	}
	t.best[loop] = Candidate{Value: value, Attempt: attempt}
}

// Record applies the non-downgrade rule for one validated attempt.
// A passing attempt always becomes the best candidate. A failing attempt
// is kept only when the loop has no candidate at all.
func (t *Tracker) Record(loop, value string, attempt int, passed bool) {
	if passed {
		t.best[loop] = Candidate{Value: value, Passed: true, Attempt: attempt}
		return
	}
	if _, ok := t.best[loop]; !ok {
		t.best[loop] = Candidate{Value: value, Attempt: attempt}
	}
}

// Best returns the loop's current candidate, if any.
func (t *Tracker) Best(loop string) (Candidate, bool) {
	c, ok := t.best[loop]
	return c, ok
}
