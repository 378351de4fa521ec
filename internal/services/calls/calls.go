package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/eligibility"
	"github.com/pmarkun/editaisparticipativos/internal/lib/ids"
	"github.com/pmarkun/editaisparticipativos/internal/lib/slug"
	"github.com/pmarkun/editaisparticipativos/internal/lib/validation"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrCallNotFound       = errors.New("call not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrPhaseNotOpen       = errors.New("subscriptions are not open for this call")
	ErrNotOwner           = errors.New("project belongs to another submitter")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// slugAttempts bounds retries when a concurrent insert takes the same slug.
const slugAttempts = 5

type CallStorage interface {
	SaveCall(ctx context.Context, c entity.Call) error
	UpdateCall(ctx context.Context, c entity.Call) error
	CallByID(ctx context.Context, id string) (entity.Call, error)
	CallBySlug(ctx context.Context, slug string) (entity.Call, error)
	ListCalls(ctx context.Context) ([]entity.Call, error)
}

type ProjectStorage interface {
	SaveProject(ctx context.Context, p entity.Project) error
	UpdateProject(ctx context.Context, p entity.Project) error
	ProjectByID(ctx context.Context, id string) (entity.Project, error)
	ProjectBySlug(ctx context.Context, callID, slug string) (entity.Project, error)
	ListProjects(ctx context.Context, callID string) ([]entity.Project, error)
}

type Calls struct {
	log       *slog.Logger
	calls     CallStorage
	projects  ProjectStorage
	validator *validation.Validator
	now       func() time.Time
}

func New(log *slog.Logger, calls CallStorage, projects ProjectStorage, now func() time.Time) *Calls {
	if now == nil {
		now = time.Now
	}
	return &Calls{
		log:       log,
		calls:     calls,
		projects:  projects,
		validator: validation.New(),
		now:       now,
	}
}

type CallInput struct {
	Name              string    `json:"name" validate:"required,min=5,max=200"`
	Description       string    `json:"description" validate:"required,min=20,max=20000"`
	SubscriptionStart time.Time `json:"subscription_start" validate:"required"`
	SubscriptionEnd   time.Time `json:"subscription_end" validate:"required"`
	VotingStart       time.Time `json:"voting_start" validate:"required"`
	VotingEnd         time.Time `json:"voting_end" validate:"required"`
}

func (in CallInput) trimmed() CallInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (s *Calls) validateCall(in CallInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}

	err := eligibility.ValidateWindow(entity.Call{
		SubscriptionStart: in.SubscriptionStart,
		SubscriptionEnd:   in.SubscriptionEnd,
		VotingStart:       in.VotingStart,
		VotingEnd:         in.VotingEnd,
	})

	field := ""
	switch {
	case err == nil:
		return nil
	case errors.Is(err, eligibility.ErrSubscriptionWindow):
		field = "subscription_end"
	case errors.Is(err, eligibility.ErrVotingStart):
		field = "voting_start"
	default:
		field = "voting_end"
	}
	return &validation.Error{Fields: map[string]string{field: err.Error()}}
}

func (s *Calls) view(c entity.Call) entity.CallView {
	return entity.CallView{Call: c, Phase: eligibility.PhaseAt(c, s.now())}
}

// CreateCall stores a new call. Its slug comes from the name and gets a
// numeric suffix when another call already uses it.
func (s *Calls) CreateCall(ctx context.Context, in CallInput) (entity.CallView, error) {
	const op = "calls.CreateCall"

	log := s.log.With(slog.String("op", op))

	in = in.trimmed()
	if err := s.validateCall(in); err != nil {
		return entity.CallView{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	now := s.now().UTC()
	call := entity.Call{
		ID:                ids.New(),
		Name:              in.Name,
		Description:       in.Description,
		SubscriptionStart: in.SubscriptionStart.UTC(),
		SubscriptionEnd:   in.SubscriptionEnd.UTC(),
		VotingStart:       in.VotingStart.UTC(),
		VotingEnd:         in.VotingEnd.UTC(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for attempt := 1; ; attempt++ {
		sg, err := slug.Unique(slug.Make(call.Name), func(candidate string) (bool, error) {
			_, err := s.calls.CallBySlug(ctx, candidate)
			switch {
			case err == nil:
				return true, nil
			case errors.Is(err, storage.ErrCallNotFound):
				return false, nil
			default:
				return false, err
			}
		})
		if err != nil {
			log.Error("failed to check slug", sl.Err(err))
			return entity.CallView{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
		}
		call.Slug = sg

		err = s.calls.SaveCall(ctx, call)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrSlugExists) && attempt < slugAttempts {
			continue
		}
		log.Error("failed to save call", sl.Err(err))
		return entity.CallView{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	log.Info("call created", slog.String("call_id", call.ID), slog.String("slug", call.Slug))

	return s.view(call), nil
}

// UpdateCall replaces the content and window of a call. ID and slug stay.
func (s *Calls) UpdateCall(ctx context.Context, id string, in CallInput) (entity.CallView, error) {
	const op = "calls.UpdateCall"

	log := s.log.With(slog.String("op", op), slog.String("call_id", id))

	in = in.trimmed()
	if err := s.validateCall(in); err != nil {
		return entity.CallView{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	call, err := s.callByID(ctx, id)
	if err != nil {
		return entity.CallView{}, fmt.Errorf("%s: %w", op, err)
	}

	call.Name = in.Name
	call.Description = in.Description
	call.SubscriptionStart = in.SubscriptionStart.UTC()
	call.SubscriptionEnd = in.SubscriptionEnd.UTC()
	call.VotingStart = in.VotingStart.UTC()
	call.VotingEnd = in.VotingEnd.UTC()
	call.UpdatedAt = s.now().UTC()

	if err := s.calls.UpdateCall(ctx, call); err != nil {
		if errors.Is(err, storage.ErrCallNotFound) {
			return entity.CallView{}, fmt.Errorf("%s: %w", op, ErrCallNotFound)
		}
		log.Error("failed to update call", sl.Err(err))
		return entity.CallView{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	log.Info("call updated")

	return s.view(call), nil
}

func (s *Calls) CallByID(ctx context.Context, id string) (entity.CallView, error) {
	const op = "calls.CallByID"

	call, err := s.callByID(ctx, id)
	if err != nil {
		return entity.CallView{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(call), nil
}

func (s *Calls) CallBySlug(ctx context.Context, slug string) (entity.CallView, error) {
	const op = "calls.CallBySlug"

	call, err := s.calls.CallBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrCallNotFound) {
			return entity.CallView{}, fmt.Errorf("%s: %w", op, ErrCallNotFound)
		}
		s.log.Error("failed to load call", slog.String("op", op), sl.Err(err))
		return entity.CallView{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return s.view(call), nil
}

// ListCalls returns every call, newest first.
func (s *Calls) ListCalls(ctx context.Context) ([]entity.CallView, error) {
	const op = "calls.ListCalls"

	calls, err := s.calls.ListCalls(ctx)
	if err != nil {
		s.log.Error("failed to list calls", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	views := make([]entity.CallView, 0, len(calls))
	for _, c := range calls {
		views = append(views, s.view(c))
	}
	return views, nil
}

func (s *Calls) callByID(ctx context.Context, id string) (entity.Call, error) {
	call, err := s.calls.CallByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrCallNotFound) {
			return entity.Call{}, ErrCallNotFound
		}
		s.log.Error("failed to load call", slog.String("op", "calls.callByID"), sl.Err(err))
		return entity.Call{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return call, nil
}
