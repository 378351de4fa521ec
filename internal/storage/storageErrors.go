package storage

import "errors"

var (
	ErrCallNotFound     = errors.New("call not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrPendingNotFound  = errors.New("pending vote not found")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrSlugExists       = errors.New("slug already exists")
	ErrTokenExists      = errors.New("token already exists")
	ErrVoteExists       = errors.New("civil id already voted in this call")
	ErrAlreadyProcessed = errors.New("pending vote already processed")
)
