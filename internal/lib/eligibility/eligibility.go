// Package eligibility decides which actions a call allows at a given instant.
//
// Every function takes the reference instant explicitly so callers (HTTP
// handlers, the phase watcher job, the CLI) and tests agree on boundaries.
package eligibility

import (
	"errors"
	"time"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
)

var (
	ErrSubscriptionWindow = errors.New("subscription end must be after subscription start")
	ErrVotingStart        = errors.New("voting start must not be before subscription end")
	ErrVotingWindow       = errors.New("voting end must be after voting start")
)

// PhaseAt returns the lifecycle phase of call at now.
//
// Both SubscriptionEnd and VotingEnd are inclusive. The gap between
// SubscriptionEnd and VotingStart is reported as VotingOpen.
func PhaseAt(call entity.Call, now time.Time) entity.Phase {
	switch {
	case now.Before(call.SubscriptionStart):
		return entity.PhaseScheduled
	case !now.After(call.SubscriptionEnd):
		return entity.PhaseSubscriptionOpen
	case !now.After(call.VotingEnd):
		return entity.PhaseVotingOpen
	default:
		return entity.PhaseClosed
	}
}

// CanSubmit reports whether projects may be created or edited at now.
func CanSubmit(call entity.Call, now time.Time) bool {
	return PhaseAt(call, now) == entity.PhaseSubscriptionOpen
}

// CanVote reports whether ballots may be taken at now.
func CanVote(call entity.Call, now time.Time) bool {
	return PhaseAt(call, now) == entity.PhaseVotingOpen
}

// ValidateWindow checks the ordering of the four call timestamps.
func ValidateWindow(call entity.Call) error {
	if !call.SubscriptionEnd.After(call.SubscriptionStart) {
		return ErrSubscriptionWindow
	}
	if call.VotingStart.Before(call.SubscriptionEnd) {
		return ErrVotingStart
	}
	if !call.VotingEnd.After(call.VotingStart) {
		return ErrVotingWindow
	}
	return nil
}
