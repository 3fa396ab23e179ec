package client

import (
	"fmt"
	"time"

	"github.com/mosaicnetworks/notary/src/protocol"
)

// Outcome tells how a submission ended. A timeout is an outcome, not an
// error.
type Outcome int

const (
	// OutcomeSubmitted means the batch was accepted and not polled.
	OutcomeSubmitted Outcome = iota
	// OutcomeTerminal means the batch left PENDING.
	OutcomeTerminal
	// OutcomeTimedOut means the batch was still PENDING when the wait ran out.
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSubmitted:
		return "Submitted"
	case OutcomeTerminal:
		return "Terminal"
	case OutcomeTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Result ...
type Result struct {
	BatchID string
	Link    string
	Outcome Outcome
	// Entry is the last status polled, nil if none was.
	Entry   *protocol.BatchStatusEntry
	Polls   int
	Elapsed time.Duration
	MaxWait time.Duration
}

// Status returns the last polled status, or PENDING for an unpolled
// submission.
func (r *Result) Status() protocol.BatchStatus {
	if r.Entry == nil {
		return protocol.StatusPending
	}
	return r.Entry.Status
}

// Committed ...
func (r *Result) Committed() bool {
	return r.Outcome == OutcomeTerminal && r.Status() == protocol.StatusCommitted
}

// TimedOut ...
func (r *Result) TimedOut() bool {
	return r.Outcome == OutcomeTimedOut
}

func (r *Result) String() string {
	switch r.Outcome {
	case OutcomeTimedOut:
		return fmt.Sprintf("Transaction timed out after waiting %v.", r.MaxWait)
	case OutcomeSubmitted:
		return fmt.Sprintf("Batch %.16s submitted: %s", r.BatchID, r.Link)
	}

	s := fmt.Sprintf("Batch %.16s %s", r.BatchID, r.Status())
	if r.Entry != nil {
		for _, it := range r.Entry.InvalidTransactions {
			s += fmt.Sprintf("\n  transaction %.16s: %s", it.ID, it.Message)
		}
	}
	return s
}
