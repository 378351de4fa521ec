package entity

import "time"

type Call struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Slug              string    `json:"slug"`
	SubscriptionStart time.Time `json:"subscription_start"`
	SubscriptionEnd   time.Time `json:"subscription_end"`
	VotingStart       time.Time `json:"voting_start"`
	VotingEnd         time.Time `json:"voting_end"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CallView is a call together with its phase at the moment it was read.
type CallView struct {
	Call
	Phase Phase `json:"phase"`
}
