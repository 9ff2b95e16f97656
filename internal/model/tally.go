package model

// RunTally holds the monotonically increasing counters of a run.
//
// Counters are only changed through Record, which keeps
// total == skipped + tested and tested == killed + survived after every call.
type RunTally struct {
	total      int
	skipped    int
	tested     int
	killed     int
	survived   int
	undetected []MutantID
}

// NewRunTally returns an empty tally.
func NewRunTally() *RunTally {
	return &RunTally{}
}

// Record accounts for the outcome of one mutant.
func (t *RunTally) Record(id MutantID, outcome MutantOutcome) {
	t.total++

	if !outcome.Tested() {
		t.skipped++
		return
	}

	t.tested++

	if outcome == Killed {
		t.killed++
		return
	}

	t.survived++
	t.undetected = append(t.undetected, id)
}

// Total returns the number of recorded mutants.
func (t *RunTally) Total() int { return t.total }

// Skipped returns the number of skipped mutants.
func (t *RunTally) Skipped() int { return t.skipped }

// Tested returns the number of mutants the runner was invoked for and classified.
func (t *RunTally) Tested() int { return t.tested }

// Killed returns the number of detected mutants.
func (t *RunTally) Killed() int { return t.killed }

// Survived returns the number of undetected mutants.
func (t *RunTally) Survived() int { return t.survived }

// Undetected returns a copy of the survived mutant ids in recording order.
func (t *RunTally) Undetected() []MutantID {
	out := make([]MutantID, len(t.undetected))
	copy(out, t.undetected)

	return out
}
