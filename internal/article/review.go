package article

// ReviewLog accumulates review outcomes across rewrite iterations for one
// article's run. Entries are append-only: never removed, never reordered.
// Index 0 is the first review; the last entry is authoritative.
//
// A ReviewLog is exclusively owned by the orchestrator for one article's run
// and is not shared across articles in a batch.
type ReviewLog struct {
	outcomes []ReviewOutcome
}

// NewReviewLog returns a log seeded with prior outcomes, typically the stored
// history of a persisted article before a manual rewrite.
func NewReviewLog(prior ...ReviewOutcome) *ReviewLog {
	log := &ReviewLog{}
	log.outcomes = append(log.outcomes, prior...)
	return log
}

// Append records an outcome as the new latest entry.
func (l *ReviewLog) Append(outcome ReviewOutcome) {
	l.outcomes = append(l.outcomes, outcome)
}

// IsApproved reports whether the latest outcome is approved. Score thresholds
// play no part in the decision.
func (l *ReviewLog) IsApproved() bool {
	if len(l.outcomes) == 0 {
		return false
	}
	return l.outcomes[len(l.outcomes)-1].Approved
}

// Latest returns the authoritative outcome, or nil when the log is empty.
func (l *ReviewLog) Latest() *ReviewOutcome {
	if len(l.outcomes) == 0 {
		return nil
	}
	return &l.outcomes[len(l.outcomes)-1]
}

// Len returns the number of recorded outcomes.
func (l *ReviewLog) Len() int {
	return len(l.outcomes)
}

// History returns the ordered outcomes as a copy, so callers cannot mutate the
// log out from under the orchestrator.
func (l *ReviewLog) History() []ReviewOutcome {
	history := make([]ReviewOutcome, len(l.outcomes))
	copy(history, l.outcomes)
	return history
}
