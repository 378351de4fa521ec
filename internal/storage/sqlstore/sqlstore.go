// Package sqlstore holds the queries shared by the Postgres and SQLite
// adapters. Queries are written with ? placeholders and rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

type Dialect interface {
	Rebind(query string) string
	IsUniqueViolation(err error) bool
}

type Storage struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Storage {
	return &Storage{db: db, dialect: dialect}
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

const callColumns = `id, name, description, slug, subscription_start, subscription_end,
	voting_start, voting_end, created_at, updated_at`

func scanCall(row scanner) (entity.Call, error) {
	var c entity.Call
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug,
		&c.SubscriptionStart, &c.SubscriptionEnd, &c.VotingStart, &c.VotingEnd,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return entity.Call{}, err
	}

	utc(&c.SubscriptionStart, &c.SubscriptionEnd, &c.VotingStart, &c.VotingEnd, &c.CreatedAt, &c.UpdatedAt)
	return c, nil
}

func (s *Storage) SaveCall(ctx context.Context, c entity.Call) error {
	const op = "storage.SaveCall"

	query := s.dialect.Rebind(`INSERT INTO calls (` + callColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.Slug,
		c.SubscriptionStart.UTC(), c.SubscriptionEnd.UTC(), c.VotingStart.UTC(), c.VotingEnd.UTC(),
		c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrSlugExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateCall rewrites the content and window of a call. ID, slug and
// creation time never change.
func (s *Storage) UpdateCall(ctx context.Context, c entity.Call) error {
	const op = "storage.UpdateCall"

	query := s.dialect.Rebind(`UPDATE calls SET name = ?, description = ?,
		subscription_start = ?, subscription_end = ?, voting_start = ?, voting_end = ?, updated_at = ?
		WHERE id = ?`)

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Description,
		c.SubscriptionStart.UTC(), c.SubscriptionEnd.UTC(), c.VotingStart.UTC(), c.VotingEnd.UTC(),
		c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCallNotFound)
	}

	return nil
}

func (s *Storage) CallByID(ctx context.Context, id string) (entity.Call, error) {
	const op = "storage.CallByID"

	query := s.dialect.Rebind(`SELECT ` + callColumns + ` FROM calls WHERE id = ?`)

	c, err := scanCall(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Call{}, fmt.Errorf("%s: %w", op, storage.ErrCallNotFound)
		}
		return entity.Call{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (s *Storage) CallBySlug(ctx context.Context, slug string) (entity.Call, error) {
	const op = "storage.CallBySlug"

	query := s.dialect.Rebind(`SELECT ` + callColumns + ` FROM calls WHERE slug = ?`)

	c, err := scanCall(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Call{}, fmt.Errorf("%s: %w", op, storage.ErrCallNotFound)
		}
		return entity.Call{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// ListCalls returns every call, newest first.
func (s *Storage) ListCalls(ctx context.Context) ([]entity.Call, error) {
	const op = "storage.ListCalls"

	rows, err := s.db.QueryContext(ctx, `SELECT `+callColumns+` FROM calls ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var calls []entity.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		calls = append(calls, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return calls, nil
}

func utc(ts ...*time.Time) {
	for _, t := range ts {
		*t = t.UTC()
	}
}
