package entity

type Phase string

const (
	PhaseScheduled        Phase = "scheduled"
	PhaseSubscriptionOpen Phase = "subscription_open"
	PhaseVotingOpen       Phase = "voting_open"
	PhaseClosed           Phase = "closed"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{PhaseScheduled, PhaseSubscriptionOpen, PhaseVotingOpen, PhaseClosed}
