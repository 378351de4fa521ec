package entity

import "time"

type PendingStatus string

const (
	PendingStatusPending   PendingStatus = "pending"
	PendingStatusValid     PendingStatus = "valid"
	PendingStatusDuplicate PendingStatus = "duplicate"
)

// Terminal reports whether the status can no longer change.
func (s PendingStatus) Terminal() bool {
	return s == PendingStatusValid || s == PendingStatusDuplicate
}

type Voter struct {
	FullName string `json:"full_name"`
	CivilID  string `json:"civil_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// PendingVote is a ballot waiting for its confirmation link to be opened.
// Only the hash of the confirmation token is kept.
type PendingVote struct {
	ID          string
	CallID      string
	ProjectID   string
	ProjectName string
	Voter       Voter
	TokenHash   string
	Status      PendingStatus
	CreatedAt   time.Time
}
