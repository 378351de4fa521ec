package entity

import "time"

type Vote struct {
	ID            string
	CallID        string
	ProjectID     string
	ProjectName   string
	Voter         Voter
	PendingVoteID string
	VotedAt       time.Time
}
