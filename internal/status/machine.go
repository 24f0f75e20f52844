package status

import (
	"errors"
	"fmt"
)

// Status is the workflow state of a job as stored in the sheet.
type Status string

const (
	NotApplied         Status = "Not Applied"
	Applied            Status = "Applied"
	Failed             Status = "Failed"
	UnderReview        Status = "Under Review"
	InterviewScheduled Status = "Interview Scheduled"
	OfferReceived      Status = "Offer Received"
	Rejected           Status = "Rejected"
	Withdrawn          Status = "Withdrawn"
)

// ErrInvalidTransition is returned when a proposed move is not in the
// allowed-transition table. The caller must leave the record unchanged.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists every allowed move. Anything not listed is rejected.
// Failed -> Not Applied exists for manual resets only; the workflows
// never propose it themselves.
var transitions = map[Status][]Status{
	NotApplied:         {Applied, Failed},
	Failed:             {NotApplied},
	Applied:            {UnderReview, Rejected, InterviewScheduled, Withdrawn},
	UnderReview:        {InterviewScheduled, Rejected},
	InterviewScheduled: {OfferReceived, Rejected},
	// OfferReceived, Rejected, Withdrawn are terminal.
}

// Known reports whether s is one of the defined status values.
func Known(s Status) bool {
	switch s {
	case NotApplied, Applied, Failed, UnderReview, InterviewScheduled,
		OfferReceived, Rejected, Withdrawn:
		return true
	}
	return false
}

// Terminal reports whether no automated transition leaves s.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0 && Known(s)
}

// Transition validates proposed against the allowed table.
//
// It returns the resulting status, whether it actually changed (a
// StatusChangeEvent should be emitted iff changed is true), and
// ErrInvalidTransition when proposed is not reachable from current.
// On error the returned status is current, so callers can use it
// unconditionally.
func Transition(current, proposed Status) (Status, bool, error) {
	if proposed == current {
		return current, false, nil
	}
	for _, allowed := range transitions[current] {
		if proposed == allowed {
			return proposed, true, nil
		}
	}
	return current, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, proposed)
}

// Parse maps a raw sheet cell to a Status, trimming nothing: sheet
// values are written by this program or by a human following the
// template, so unknown values are surfaced rather than coerced.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if !Known(s) {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}
