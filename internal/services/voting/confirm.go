package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/ids"
	"github.com/pmarkun/editaisparticipativos/internal/lib/token"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
	OutcomeDuplicate        Outcome = "duplicate"
)

// Confirmation is the result of opening a confirmation link. Repeated is set
// when the pending vote had already reached a final status before this call.
type Confirmation struct {
	Outcome       Outcome
	Status        entity.PendingStatus
	Repeated      bool
	PendingVoteID string
	CallID        string
	ProjectName   string
}

// Confirm turns the pending vote behind rawToken into a vote, or marks it a
// duplicate when the civil ID already voted in the call. Confirming the same
// token again reports the status reached the first time and changes nothing.
func (v *Voting) Confirm(ctx context.Context, rawToken string) (Confirmation, error) {
	const op = "voting.Confirm"

	log := v.log.With(slog.String("op", op))

	if rawToken == "" {
		return Confirmation{}, fmt.Errorf("%s: %w", op, ErrTokenNotFound)
	}

	pv, err := v.pendingByToken(ctx, rawToken)
	if err != nil {
		return Confirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("pending_vote_id", pv.ID), slog.String("call_id", pv.CallID))

	if pv.Status.Terminal() {
		return v.repeated(ctx, pv), nil
	}

	_, err = v.votes.VoteByCivilID(ctx, pv.CallID, pv.Voter.CivilID)
	switch {
	case err == nil:
		return v.markDuplicate(ctx, log, pv, rawToken)
	case errors.Is(err, storage.ErrVoteNotFound):
	default:
		log.Error("failed to look up existing vote", sl.Err(err))
		return Confirmation{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	vote := entity.Vote{
		ID:            ids.New(),
		CallID:        pv.CallID,
		ProjectID:     pv.ProjectID,
		ProjectName:   pv.ProjectName,
		Voter:         pv.Voter,
		PendingVoteID: pv.ID,
		VotedAt:       v.now().UTC(),
	}

	err = v.votes.AcceptVote(ctx, vote)
	switch {
	case err == nil:
		log.Info("vote confirmed", slog.String("vote_id", vote.ID))
		return v.outcome(ctx, pv, OutcomeConfirmed, entity.PendingStatusValid, false), nil
	case errors.Is(err, storage.ErrVoteExists):
		// Another confirmation for the same civil ID won the race.
		return v.markDuplicate(ctx, log, pv, rawToken)
	case errors.Is(err, storage.ErrAlreadyProcessed):
		return v.reloadRepeated(ctx, log, rawToken)
	default:
		log.Error("failed to accept vote", sl.Err(err))
		return Confirmation{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
}

func (v *Voting) pendingByToken(ctx context.Context, rawToken string) (entity.PendingVote, error) {
	pv, err := v.pending.PendingVoteByTokenHash(ctx, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, storage.ErrPendingNotFound) {
			return entity.PendingVote{}, ErrTokenNotFound
		}
		v.log.Error("failed to load pending vote", slog.String("op", "voting.pendingByToken"), sl.Err(err))
		return entity.PendingVote{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return pv, nil
}

func (v *Voting) markDuplicate(ctx context.Context, log *slog.Logger, pv entity.PendingVote, rawToken string) (Confirmation, error) {
	const op = "voting.markDuplicate"

	err := v.pending.UpdatePendingStatus(ctx, pv.ID, entity.PendingStatusPending, entity.PendingStatusDuplicate)
	switch {
	case err == nil:
		log.Info("duplicate vote", slog.String("project_id", pv.ProjectID))
		return v.outcome(ctx, pv, OutcomeDuplicate, entity.PendingStatusDuplicate, false), nil
	case errors.Is(err, storage.ErrAlreadyProcessed):
		return v.reloadRepeated(ctx, log, rawToken)
	default:
		log.Error("failed to mark duplicate", sl.Err(err))
		return Confirmation{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
}

// reloadRepeated handles a concurrent confirmation of the same token that
// finished first.
func (v *Voting) reloadRepeated(ctx context.Context, log *slog.Logger, rawToken string) (Confirmation, error) {
	const op = "voting.reloadRepeated"

	pv, err := v.pendingByToken(ctx, rawToken)
	if err != nil {
		return Confirmation{}, fmt.Errorf("%s: %w", op, err)
	}
	if !pv.Status.Terminal() {
		log.Error("pending vote still pending after concurrent update")
		return Confirmation{}, fmt.Errorf("%s: %w", op, ErrStorageUnavailable)
	}

	return v.repeated(ctx, pv), nil
}

func (v *Voting) repeated(ctx context.Context, pv entity.PendingVote) Confirmation {
	outcome := OutcomeAlreadyConfirmed
	if pv.Status == entity.PendingStatusDuplicate {
		outcome = OutcomeDuplicate
	}
	return v.outcome(ctx, pv, outcome, pv.Status, true)
}

func (v *Voting) outcome(ctx context.Context, pv entity.PendingVote, o Outcome, status entity.PendingStatus, repeated bool) Confirmation {
	v.metrics.Confirmation(ctx, string(o))

	return Confirmation{
		Outcome:       o,
		Status:        status,
		Repeated:      repeated,
		PendingVoteID: pv.ID,
		CallID:        pv.CallID,
		ProjectName:   pv.ProjectName,
	}
}
