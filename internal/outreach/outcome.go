package outreach

import "dmdraft/internal/sheet"

// OutcomeStatus is the terminal state of one processed account. The three
// states are mutually exclusive; the constructors below are the only way
// outcomes are built.
type OutcomeStatus string

const (
	OutcomeDrafted OutcomeStatus = "drafted"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the classified result for one account. Message is set only for
// Drafted, Reason only for Skipped, Err only for Failed.
type Outcome struct {
	Username string
	RowIndex int
	Status   OutcomeStatus
	Message  string
	Reason   string
	Err      string
}

// DraftedOutcome marks an account whose message was composed and verified.
func DraftedOutcome(rec sheet.AccountRecord, message string) Outcome {
	return Outcome{Username: rec.Username, RowIndex: rec.RowIndex, Status: OutcomeDrafted, Message: message}
}

// SkippedOutcome marks an account left alone for a business-rule reason.
func SkippedOutcome(rec sheet.AccountRecord, reason string) Outcome {
	return Outcome{Username: rec.Username, RowIndex: rec.RowIndex, Status: OutcomeSkipped, Reason: reason}
}

// FailedOutcome marks an account whose processing hit a per-account fault.
func FailedOutcome(rec sheet.AccountRecord, errDesc string) Outcome {
	return Outcome{Username: rec.Username, RowIndex: rec.RowIndex, Status: OutcomeFailed, Err: errDesc}
}

// Stats aggregates a run. Counters only ever increase; Outcomes holds every
// terminal outcome in processing order.
type Stats struct {
	Drafted  int
	Skipped  int
	Errors   int
	Outcomes []Outcome
}

// Add records one terminal outcome.
func (s *Stats) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case OutcomeDrafted:
		s.Drafted++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Errors++
	}
}

// NotePersistenceError counts a failed sheet write separately from the
// account outcomes; the outcome it belonged to is left as classified.
func (s *Stats) NotePersistenceError() {
	s.Errors++
}

// Total is the number of accounts that reached a terminal state.
func (s *Stats) Total() int {
	return len(s.Outcomes)
}
