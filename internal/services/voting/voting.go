package voting

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
	"github.com/pmarkun/editaisparticipativos/internal/lib/metrics"
	"github.com/pmarkun/editaisparticipativos/internal/lib/token"
	"github.com/pmarkun/editaisparticipativos/internal/lib/validation"
	"github.com/pmarkun/editaisparticipativos/internal/notify"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

//go:generate mockgen -source=voting.go -destination=mocks/mocks.go -package=mocks

var (
	ErrValidation         = errors.New("validation error")
	ErrChallengeFailed    = errors.New("challenge failed")
	ErrPhaseNotOpen       = errors.New("voting is not open for this call")
	ErrCallNotFound       = errors.New("call not found")
	ErrProjectNotFound    = errors.New("project not found in this call")
	ErrTokenNotFound      = errors.New("token not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type CallProvider interface {
	CallByID(ctx context.Context, id string) (entity.Call, error)
}

type ProjectProvider interface {
	ProjectByID(ctx context.Context, id string) (entity.Project, error)
}

type PendingVoteStorage interface {
	SavePendingVote(ctx context.Context, pv entity.PendingVote) error
	PendingVoteByTokenHash(ctx context.Context, tokenHash string) (entity.PendingVote, error)
	UpdatePendingStatus(ctx context.Context, id string, from, to entity.PendingStatus) error
}

type VoteStorage interface {
	VoteByCivilID(ctx context.Context, callID, civilID string) (entity.Vote, error)
	AcceptVote(ctx context.Context, v entity.Vote) error
}

// ChallengeVerifier checks the anti-automation answer sent with a ballot.
type ChallengeVerifier interface {
	Verify(token string, answer int, now time.Time) error
}

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

type Config struct {
	// PublicBaseURL prefixes the confirmation link.
	PublicBaseURL string
	NotifyTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Voting struct {
	log           *slog.Logger
	calls         CallProvider
	projects      ProjectProvider
	pending       PendingVoteStorage
	votes         VoteStorage
	notifier      Notifier
	challenges    ChallengeVerifier
	validator     *validation.Validator
	metrics       *metrics.Metrics
	baseURL       string
	notifyTimeout time.Duration
	now           func() time.Time
}

func New(
	log *slog.Logger,
	calls CallProvider,
	projects ProjectProvider,
	pending PendingVoteStorage,
	votes VoteStorage,
	notifier Notifier,
	challenges ChallengeVerifier,
	m *metrics.Metrics,
	cfg Config,
) *Voting {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Voting{
		log:           log,
		calls:         calls,
		projects:      projects,
		pending:       pending,
		votes:         votes,
		notifier:      notifier,
		challenges:    challenges,
		validator:     validation.New(),
		metrics:       m,
		baseURL:       cfg.PublicBaseURL,
		notifyTimeout: timeout,
		now:           now,
	}
}

// Ballot is a vote as submitted, before confirmation.
type Ballot struct {
	CallID          string
	ProjectID       string
	Voter           entity.Voter
	ChallengeToken  string
	ChallengeAnswer int
}

// Receipt acknowledges a ballot. Nothing is counted until the voter opens the
// confirmation link.
type Receipt struct {
	PendingVoteID string
	CallID        string
	ProjectID     string
}

// Intake validates a ballot, stores it as a pending vote and sends the
// confirmation link to the voter.
//
// Checks run in a fixed order and the first failure is returned: field
// validation, challenge, voting phase, project membership. A failed
// notification does not fail the intake.
func (v *Voting) Intake(ctx context.Context, b Ballot) (Receipt, error) {
	const op = "voting.Intake"

	log := v.log.With(slog.String("op", op), slog.String("call_id", b.CallID))

	voter := entity.Voter{
		FullName: strings.TrimSpace(b.Voter.FullName),
		CivilID:  strings.TrimSpace(b.Voter.CivilID),
		Email:    strings.TrimSpace(b.Voter.Email),
		Phone:    strings.TrimSpace(b.Voter.Phone),
	}

	if err := v.validateBallot(b.CallID, b.ProjectID, voter); err != nil {
		v.metrics.BallotRejected(ctx, "validation")
		return Receipt{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}
	voter.CivilID = validation.NormalizeCPF(voter.CivilID)

	now := v.now()

	if err := v.challenges.Verify(b.ChallengeToken, b.ChallengeAnswer, now); err != nil {
		log.Info("challenge failed", sl.Err(err))
		v.metrics.BallotRejected(ctx, "challenge")
		return Receipt{}, fmt.Errorf("%s: %w", op, ErrChallengeFailed)
	}

	call, err := v.calls.CallByID(ctx, b.CallID)
	if err != nil {
		if errors.Is(err, storage.ErrCallNotFound) {
			v.metrics.BallotRejected(ctx, "not_found")
			return Receipt{}, fmt.Errorf("%s: %w", op, ErrCallNotFound)
		}
		log.Error("failed to load call", sl.Err(err))
		return Receipt{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	if !eligibility.CanVote(call, now) {
		v.metrics.BallotRejected(ctx, "phase")
		return Receipt{}, fmt.Errorf("%s: %w (phase %s)", op, ErrPhaseNotOpen, eligibility.PhaseAt(call, now))
	}

	project, err := v.projects.ProjectByID(ctx, b.ProjectID)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			v.metrics.BallotRejected(ctx, "not_found")
			return Receipt{}, fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}
		log.Error("failed to load project", sl.Err(err))
		return Receipt{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	if project.CallID != call.ID {
		v.metrics.BallotRejected(ctx, "not_found")
		return Receipt{}, fmt.Errorf("%s: %w", op, ErrProjectNotFound)
	}

	raw, err := token.Generate()
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	pv := entity.PendingVote{
		ID:          ids.New(),
		CallID:      call.ID,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Voter:       voter,
		TokenHash:   token.Hash(raw),
		Status:      entity.PendingStatusPending,
		CreatedAt:   now.UTC(),
	}

	if err := v.pending.SavePendingVote(ctx, pv); err != nil {
		log.Error("failed to save pending vote", sl.Err(err))
		return Receipt{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	v.metrics.BallotReceived(ctx)
	log.Info("pending vote stored", slog.String("pending_vote_id", pv.ID))

	v.sendConfirmation(ctx, call, pv, raw)

	return Receipt{PendingVoteID: pv.ID, CallID: pv.CallID, ProjectID: pv.ProjectID}, nil
}

func (v *Voting) validateBallot(callID, projectID string, voter entity.Voter) error {
	err := v.validator.Voter(voter)

	var verr *validation.Error
	switch {
	case err == nil:
		verr = &validation.Error{Fields: map[string]string{}}
	case !errors.As(err, &verr):
		return err
	}

	if strings.TrimSpace(callID) == "" {
		verr.Fields["call_id"] = "is required"
	}
	if strings.TrimSpace(projectID) == "" {
		verr.Fields["project_id"] = "is required"
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (v *Voting) sendConfirmation(ctx context.Context, call entity.Call, pv entity.PendingVote, raw string) {
	const op = "voting.sendConfirmation"

	msg := notify.ConfirmationMessage(notify.Confirmation{
		BaseURL:     v.baseURL,
		To:          pv.Voter.Email,
		FullName:    pv.Voter.FullName,
		CallName:    call.Name,
		ProjectName: pv.ProjectName,
		Token:       raw,
	})

	ctx, cancel := context.WithTimeout(ctx, v.notifyTimeout)
	defer cancel()

	if err := v.notifier.Notify(ctx, msg); err != nil {
		v.log.Warn("failed to send confirmation",
			slog.String("op", op),
			slog.String("pending_vote_id", pv.ID),
			sl.Err(err),
		)
		v.metrics.NotificationFailed(ctx)
	}
}
