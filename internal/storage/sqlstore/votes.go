package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

const pendingColumns = `id, call_id, project_id, project_name, full_name, civil_id, email, phone,
	token_hash, status, created_at`

const voteColumns = `id, call_id, project_id, project_name, full_name, civil_id, email, phone,
	pending_vote_id, voted_at`

func scanPending(row scanner) (entity.PendingVote, error) {
	var pv entity.PendingVote
	err := row.Scan(&pv.ID, &pv.CallID, &pv.ProjectID, &pv.ProjectName,
		&pv.Voter.FullName, &pv.Voter.CivilID, &pv.Voter.Email, &pv.Voter.Phone,
		&pv.TokenHash, &pv.Status, &pv.CreatedAt)
	if err != nil {
		return entity.PendingVote{}, err
	}

	utc(&pv.CreatedAt)
	return pv, nil
}

func scanVote(row scanner) (entity.Vote, error) {
	var v entity.Vote
	err := row.Scan(&v.ID, &v.CallID, &v.ProjectID, &v.ProjectName,
		&v.Voter.FullName, &v.Voter.CivilID, &v.Voter.Email, &v.Voter.Phone,
		&v.PendingVoteID, &v.VotedAt)
	if err != nil {
		return entity.Vote{}, err
	}

	utc(&v.VotedAt)
	return v, nil
}

func (s *Storage) SavePendingVote(ctx context.Context, pv entity.PendingVote) error {
	const op = "storage.SavePendingVote"

	query := s.dialect.Rebind(`INSERT INTO pending_votes (` + pendingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query, pv.ID, pv.CallID, pv.ProjectID, pv.ProjectName,
		pv.Voter.FullName, pv.Voter.CivilID, pv.Voter.Email, pv.Voter.Phone,
		pv.TokenHash, string(pv.Status), pv.CreatedAt.UTC())
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrTokenExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) PendingVoteByTokenHash(ctx context.Context, tokenHash string) (entity.PendingVote, error) {
	const op = "storage.PendingVoteByTokenHash"

	query := s.dialect.Rebind(`SELECT ` + pendingColumns + ` FROM pending_votes WHERE token_hash = ?`)

	pv, err := scanPending(s.db.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.PendingVote{}, fmt.Errorf("%s: %w", op, storage.ErrPendingNotFound)
		}
		return entity.PendingVote{}, fmt.Errorf("%s: %w", op, err)
	}

	return pv, nil
}

// UpdatePendingStatus moves a pending vote from one status to another. When
// the stored status is not from, nothing changes and ErrAlreadyProcessed is
// returned.
func (s *Storage) UpdatePendingStatus(ctx context.Context, id string, from, to entity.PendingStatus) error {
	const op = "storage.UpdatePendingStatus"

	query := s.dialect.Rebind(`UPDATE pending_votes SET status = ? WHERE id = ? AND status = ?`)

	res, err := s.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyProcessed)
	}

	return nil
}

func (s *Storage) VoteByCivilID(ctx context.Context, callID, civilID string) (entity.Vote, error) {
	const op = "storage.VoteByCivilID"

	query := s.dialect.Rebind(`SELECT ` + voteColumns + ` FROM votes WHERE call_id = ? AND civil_id = ?`)

	v, err := scanVote(s.db.QueryRowContext(ctx, query, callID, civilID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Vote{}, fmt.Errorf("%s: %w", op, storage.ErrVoteNotFound)
		}
		return entity.Vote{}, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

// AcceptVote marks the pending vote valid and records the vote in one
// transaction. ErrAlreadyProcessed means the pending vote left the pending
// status first; ErrVoteExists means the civil ID already has a vote in the
// call. Either way nothing is written.
func (s *Storage) AcceptVote(ctx context.Context, v entity.Vote) (err error) {
	const op = "storage.AcceptVote"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		s.dialect.Rebind(`UPDATE pending_votes SET status = ? WHERE id = ? AND status = ?`),
		string(entity.PendingStatusValid), v.PendingVoteID, string(entity.PendingStatusPending))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyProcessed)
	}

	_, err = tx.ExecContext(ctx,
		s.dialect.Rebind(`INSERT INTO votes (`+voteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.CallID, v.ProjectID, v.ProjectName,
		v.Voter.FullName, v.Voter.CivilID, v.Voter.Email, v.Voter.Phone,
		v.PendingVoteID, v.VotedAt.UTC())
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrVoteExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// VotesByCall returns the accepted votes of a call, oldest first.
func (s *Storage) VotesByCall(ctx context.Context, callID string) ([]entity.Vote, error) {
	const op = "storage.VotesByCall"

	query := s.dialect.Rebind(`SELECT ` + voteColumns + ` FROM votes WHERE call_id = ? ORDER BY voted_at, id`)

	rows, err := s.db.QueryContext(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var votes []entity.Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		votes = append(votes, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return votes, nil
}
