package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

const projectColumns = `id, call_id, name, category, description, location, beneficiaries,
	requested_cents, slug, submitter_id, created_at, updated_at`

func scanProject(row scanner) (entity.Project, error) {
	var p entity.Project
	err := row.Scan(&p.ID, &p.CallID, &p.Name, &p.Category, &p.Description, &p.Location,
		&p.Beneficiaries, &p.RequestedCents, &p.Slug, &p.SubmitterID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return entity.Project{}, err
	}

	utc(&p.CreatedAt, &p.UpdatedAt)
	return p, nil
}

func (s *Storage) SaveProject(ctx context.Context, p entity.Project) error {
	const op = "storage.SaveProject"

	query := s.dialect.Rebind(`INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query, p.ID, p.CallID, p.Name, string(p.Category), p.Description,
		p.Location, p.Beneficiaries, p.RequestedCents, p.Slug, p.SubmitterID,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrSlugExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateProject rewrites the editable fields. Call, slug and submitter stay.
func (s *Storage) UpdateProject(ctx context.Context, p entity.Project) error {
	const op = "storage.UpdateProject"

	query := s.dialect.Rebind(`UPDATE projects SET name = ?, category = ?, description = ?,
		location = ?, beneficiaries = ?, requested_cents = ?, updated_at = ?
		WHERE id = ?`)

	res, err := s.db.ExecContext(ctx, query, p.Name, string(p.Category), p.Description,
		p.Location, p.Beneficiaries, p.RequestedCents, p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}

func (s *Storage) ProjectByID(ctx context.Context, id string) (entity.Project, error) {
	const op = "storage.ProjectByID"

	query := s.dialect.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE id = ?`)

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Project{}, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
		}
		return entity.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) ProjectBySlug(ctx context.Context, callID, slug string) (entity.Project, error) {
	const op = "storage.ProjectBySlug"

	query := s.dialect.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE call_id = ? AND slug = ?`)

	p, err := scanProject(s.db.QueryRowContext(ctx, query, callID, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Project{}, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
		}
		return entity.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// ListProjects returns the projects of a call in submission order.
func (s *Storage) ListProjects(ctx context.Context, callID string) ([]entity.Project, error) {
	const op = "storage.ListProjects"

	query := s.dialect.Rebind(`SELECT ` + projectColumns + ` FROM projects
		WHERE call_id = ? ORDER BY created_at, id`)

	rows, err := s.db.QueryContext(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var projects []entity.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return projects, nil
}
