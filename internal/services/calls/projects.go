package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/eligibility"
	"github.com/pmarkun/editaisparticipativos/internal/lib/ids"
	"github.com/pmarkun/editaisparticipativos/internal/lib/slug"
	"github.com/pmarkun/editaisparticipativos/internal/lib/validation"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

type ProjectInput struct {
	Name           string `json:"name" validate:"required,min=5,max=200"`
	Category       string `json:"category" validate:"required"`
	Description    string `json:"description" validate:"required,min=20,max=20000"`
	Location       string `json:"location" validate:"required,min=5,max=500"`
	Beneficiaries  string `json:"beneficiaries" validate:"required,min=5,max=2000"`
	RequestedCents int64  `json:"requested_cents" validate:"gt=0"`
}

func (s *Calls) validateProject(in ProjectInput) error {
	err := s.validator.Struct(in)

	var verr *validation.Error
	switch {
	case err == nil:
		verr = &validation.Error{Fields: map[string]string{}}
	case !errors.As(err, &verr):
		return err
	}

	if _, bad := verr.Fields["category"]; !bad && !entity.ProjectCategory(in.Category).Valid() {
		names := make([]string, 0, len(entity.ProjectCategories))
		for _, c := range entity.ProjectCategories {
			names = append(names, string(c))
		}
		verr.Fields["category"] = "must be one of " + strings.Join(names, ", ")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (in ProjectInput) trimmed() ProjectInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Beneficiaries = strings.TrimSpace(in.Beneficiaries)
	return in
}

// SubmitProject adds a project to a call while its subscription window is
// open.
func (s *Calls) SubmitProject(ctx context.Context, callID, submitterID string, in ProjectInput) (entity.Project, error) {
	const op = "calls.SubmitProject"

	log := s.log.With(slog.String("op", op), slog.String("call_id", callID))

	in = in.trimmed()
	if err := s.validateProject(in); err != nil {
		return entity.Project{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}
	if strings.TrimSpace(submitterID) == "" {
		return entity.Project{}, fmt.Errorf("%s: %w: %w", op, ErrValidation,
			&validation.Error{Fields: map[string]string{"submitter_id": "is required"}})
	}

	call, err := s.callByID(ctx, callID)
	if err != nil {
		return entity.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if !eligibility.CanSubmit(call, now) {
		return entity.Project{}, fmt.Errorf("%s: %w (phase %s)", op, ErrPhaseNotOpen, eligibility.PhaseAt(call, now))
	}

	p := entity.Project{
		ID:             ids.New(),
		CallID:         call.ID,
		Name:           in.Name,
		Category:       entity.ProjectCategory(in.Category),
		Description:    in.Description,
		Location:       in.Location,
		Beneficiaries:  in.Beneficiaries,
		RequestedCents: in.RequestedCents,
		SubmitterID:    submitterID,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}

	for attempt := 1; ; attempt++ {
		sg, err := slug.Unique(slug.Make(p.Name), func(candidate string) (bool, error) {
			_, err := s.projects.ProjectBySlug(ctx, call.ID, candidate)
			switch {
			case err == nil:
				return true, nil
			case errors.Is(err, storage.ErrProjectNotFound):
				return false, nil
			default:
				return false, err
			}
		})
		if err != nil {
			log.Error("failed to check slug", sl.Err(err))
			return entity.Project{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
		}
		p.Slug = sg

		err = s.projects.SaveProject(ctx, p)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrSlugExists) && attempt < slugAttempts {
			continue
		}
		log.Error("failed to save project", sl.Err(err))
		return entity.Project{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	log.Info("project submitted", slog.String("project_id", p.ID))

	return p, nil
}

// UpdateProject lets the original submitter edit a project while
// subscriptions are open.
func (s *Calls) UpdateProject(ctx context.Context, projectID, submitterID string, in ProjectInput) (entity.Project, error) {
	const op = "calls.UpdateProject"

	log := s.log.With(slog.String("op", op), slog.String("project_id", projectID))

	in = in.trimmed()
	if err := s.validateProject(in); err != nil {
		return entity.Project{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	p, err := s.projectByID(ctx, projectID)
	if err != nil {
		return entity.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	if submitterID == "" || p.SubmitterID != submitterID {
		return entity.Project{}, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	call, err := s.callByID(ctx, p.CallID)
	if err != nil {
		return entity.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if !eligibility.CanSubmit(call, now) {
		return entity.Project{}, fmt.Errorf("%s: %w (phase %s)", op, ErrPhaseNotOpen, eligibility.PhaseAt(call, now))
	}

	p.Name = in.Name
	p.Category = entity.ProjectCategory(in.Category)
	p.Description = in.Description
	p.Location = in.Location
	p.Beneficiaries = in.Beneficiaries
	p.RequestedCents = in.RequestedCents
	p.UpdatedAt = now.UTC()

	if err := s.projects.UpdateProject(ctx, p); err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			return entity.Project{}, fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}
		log.Error("failed to update project", sl.Err(err))
		return entity.Project{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	log.Info("project updated")

	return p, nil
}

func (s *Calls) ProjectByID(ctx context.Context, id string) (entity.Project, error) {
	const op = "calls.ProjectByID"

	p, err := s.projectByID(ctx, id)
	if err != nil {
		return entity.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListProjects returns the projects of a call in submission order.
func (s *Calls) ListProjects(ctx context.Context, callID string) ([]entity.Project, error) {
	const op = "calls.ListProjects"

	if _, err := s.callByID(ctx, callID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	projects, err := s.projects.ListProjects(ctx, callID)
	if err != nil {
		s.log.Error("failed to list projects", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return projects, nil
}

func (s *Calls) projectByID(ctx context.Context, id string) (entity.Project, error) {
	p, err := s.projects.ProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			return entity.Project{}, ErrProjectNotFound
		}
		s.log.Error("failed to load project", slog.String("op", "calls.projectByID"), sl.Err(err))
		return entity.Project{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return p, nil
}
