package voting

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/logger"
	"github.com/pmarkun/editaisparticipativos/internal/lib/metrics"
	"github.com/pmarkun/editaisparticipativos/internal/lib/token"
	"github.com/pmarkun/editaisparticipativos/internal/lib/validation"
	"github.com/pmarkun/editaisparticipativos/internal/notify"
	"github.com/pmarkun/editaisparticipativos/internal/services/voting/mocks"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

var (
	jan1  = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	jan10 = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	jan15 = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	jan20 = time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
)

type deps struct {
	calls      *mocks.MockCallProvider
	projects   *mocks.MockProjectProvider
	pending    *mocks.MockPendingVoteStorage
	votes      *mocks.MockVoteStorage
	notifier   *mocks.MockNotifier
	challenges *mocks.MockChallengeVerifier
}

func newTestVoting(t *testing.T, now time.Time) (*Voting, deps) {
	ctrl := gomock.NewController(t)

	d := deps{
		calls:      mocks.NewMockCallProvider(ctrl),
		projects:   mocks.NewMockProjectProvider(ctrl),
		pending:    mocks.NewMockPendingVoteStorage(ctrl),
		votes:      mocks.NewMockVoteStorage(ctrl),
		notifier:   mocks.NewMockNotifier(ctrl),
		challenges: mocks.NewMockChallengeVerifier(ctrl),
	}

	v := New(logger.Discard(), d.calls, d.projects, d.pending, d.votes, d.notifier, d.challenges,
		metrics.Noop(), Config{
			PublicBaseURL: "https://votos.example",
			Now:           func() time.Time { return now },
		})

	return v, d
}

func testCall() entity.Call {
	return entity.Call{
		ID:                "call-1",
		Name:              "Edital de Cultura 2024",
		Slug:              "edital-de-cultura-2024",
		SubscriptionStart: jan1,
		SubscriptionEnd:   jan10,
		VotingStart:       jan10,
		VotingEnd:         jan20,
	}
}

func testProject() entity.Project {
	return entity.Project{ID: "project-1", CallID: "call-1", Name: "Horta Comunitária"}
}

func testBallot() Ballot {
	return Ballot{
		CallID:    "call-1",
		ProjectID: "project-1",
		Voter: entity.Voter{
			FullName: "Maria da Silva",
			CivilID:  "123.456.789-09",
			Email:    "maria@example.com",
			Phone:    "(11) 98765-4321",
		},
		ChallengeToken:  "challenge",
		ChallengeAnswer: 7,
	}
}

func tokenFromBody(t *testing.T, body string) string {
	t.Helper()

	i := strings.Index(body, "https://")
	require.NotEqual(t, -1, i)
	link := strings.Fields(body[i:])[0]

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/confirm-vote", u.Path)
	return u.Query().Get("token")
}

func TestVoting_Intake_Success(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	var (
		saved entity.PendingVote
		sent  notify.Message
	)

	d.challenges.EXPECT().Verify("challenge", 7, jan15).Return(nil)
	d.calls.EXPECT().CallByID(gomock.Any(), "call-1").Return(testCall(), nil)
	d.projects.EXPECT().ProjectByID(gomock.Any(), "project-1").Return(testProject(), nil)
	d.pending.EXPECT().SavePendingVote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pv entity.PendingVote) error {
			saved = pv
			return nil
		})
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg notify.Message) error {
			sent = msg
			return nil
		})

	receipt, err := v.Intake(context.Background(), testBallot())
	require.NoError(t, err)

	assert.Equal(t, saved.ID, receipt.PendingVoteID)
	assert.Equal(t, entity.PendingStatusPending, saved.Status)
	assert.Equal(t, "12345678909", saved.Voter.CivilID)
	assert.Equal(t, "Horta Comunitária", saved.ProjectName)
	assert.Equal(t, jan15, saved.CreatedAt)

	assert.Equal(t, "maria@example.com", sent.To)
	raw := tokenFromBody(t, sent.Body)
	require.NotEmpty(t, raw)
	assert.Equal(t, token.Hash(raw), saved.TokenHash)
	assert.NotContains(t, saved.TokenHash, raw)
}

func TestVoting_Intake_InvalidCPFTouchesNothing(t *testing.T) {
	// No expectations: any storage, challenge or notifier call fails the test.
	v, _ := newTestVoting(t, jan15)

	b := testBallot()
	b.Voter.CivilID = "123.456.789-00"

	_, err := v.Intake(context.Background(), b)
	require.ErrorIs(t, err, ErrValidation)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "civil_id")
}

func TestVoting_Intake_MissingIDs(t *testing.T) {
	v, _ := newTestVoting(t, jan15)

	b := testBallot()
	b.CallID = ""
	b.ProjectID = " "

	_, err := v.Intake(context.Background(), b)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["call_id"])
	assert.Equal(t, "is required", verr.Fields["project_id"])
}

func TestVoting_Intake_ChallengeFailed(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.challenges.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("wrong sum"))

	_, err := v.Intake(context.Background(), testBallot())
	assert.ErrorIs(t, err, ErrChallengeFailed)
}

func TestVoting_Intake_PhaseNotOpen(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"scheduled", jan1.Add(-time.Hour)},
		{"subscription open", jan1.AddDate(0, 0, 4)},
		{"closed", jan20.Add(time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, d := newTestVoting(t, tt.now)

			d.challenges.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			d.calls.EXPECT().CallByID(gomock.Any(), "call-1").Return(testCall(), nil)

			_, err := v.Intake(context.Background(), testBallot())
			assert.ErrorIs(t, err, ErrPhaseNotOpen)
		})
	}
}

func TestVoting_Intake_CallNotFound(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.challenges.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.calls.EXPECT().CallByID(gomock.Any(), "call-1").Return(entity.Call{}, storage.ErrCallNotFound)

	_, err := v.Intake(context.Background(), testBallot())
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestVoting_Intake_ProjectFromAnotherCall(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	other := testProject()
	other.CallID = "call-2"

	d.challenges.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.calls.EXPECT().CallByID(gomock.Any(), "call-1").Return(testCall(), nil)
	d.projects.EXPECT().ProjectByID(gomock.Any(), "project-1").Return(other, nil)

	_, err := v.Intake(context.Background(), testBallot())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestVoting_Intake_StorageUnavailable(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.challenges.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.calls.EXPECT().CallByID(gomock.Any(), "call-1").Return(testCall(), nil)
	d.projects.EXPECT().ProjectByID(gomock.Any(), "project-1").Return(testProject(), nil)
	d.pending.EXPECT().SavePendingVote(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	_, err := v.Intake(context.Background(), testBallot())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestVoting_Intake_NotificationFailureIsNotAnError(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.challenges.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.calls.EXPECT().CallByID(gomock.Any(), "call-1").Return(testCall(), nil)
	d.projects.EXPECT().ProjectByID(gomock.Any(), "project-1").Return(testProject(), nil)
	d.pending.EXPECT().SavePendingVote(gomock.Any(), gomock.Any()).Return(nil)
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	receipt, err := v.Intake(context.Background(), testBallot())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.PendingVoteID)
}

func pendingVote(status entity.PendingStatus) entity.PendingVote {
	return entity.PendingVote{
		ID:          "pv-1",
		CallID:      "call-1",
		ProjectID:   "project-1",
		ProjectName: "Horta Comunitária",
		Voter:       entity.Voter{FullName: "Maria da Silva", CivilID: "12345678909"},
		TokenHash:   token.Hash("raw-token"),
		Status:      status,
	}
}

func TestVoting_Confirm_Confirmed(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	var accepted entity.Vote

	d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), token.Hash("raw-token")).
		Return(pendingVote(entity.PendingStatusPending), nil)
	d.votes.EXPECT().VoteByCivilID(gomock.Any(), "call-1", "12345678909").
		Return(entity.Vote{}, storage.ErrVoteNotFound)
	d.votes.EXPECT().AcceptVote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, vote entity.Vote) error {
			accepted = vote
			return nil
		})

	c, err := v.Confirm(context.Background(), "raw-token")
	require.NoError(t, err)

	assert.Equal(t, OutcomeConfirmed, c.Outcome)
	assert.Equal(t, entity.PendingStatusValid, c.Status)
	assert.False(t, c.Repeated)
	assert.Equal(t, "pv-1", accepted.PendingVoteID)
	assert.Equal(t, "12345678909", accepted.Voter.CivilID)
	assert.Equal(t, jan15, accepted.VotedAt)
}

func TestVoting_Confirm_Duplicate(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
		Return(pendingVote(entity.PendingStatusPending), nil)
	d.votes.EXPECT().VoteByCivilID(gomock.Any(), "call-1", "12345678909").
		Return(entity.Vote{ID: "earlier"}, nil)
	d.pending.EXPECT().UpdatePendingStatus(gomock.Any(), "pv-1",
		entity.PendingStatusPending, entity.PendingStatusDuplicate).Return(nil)

	c, err := v.Confirm(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, c.Outcome)
	assert.Equal(t, entity.PendingStatusDuplicate, c.Status)
}

func TestVoting_Confirm_LostRaceOnInsert(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
		Return(pendingVote(entity.PendingStatusPending), nil)
	d.votes.EXPECT().VoteByCivilID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(entity.Vote{}, storage.ErrVoteNotFound)
	d.votes.EXPECT().AcceptVote(gomock.Any(), gomock.Any()).Return(storage.ErrVoteExists)
	d.pending.EXPECT().UpdatePendingStatus(gomock.Any(), "pv-1",
		entity.PendingStatusPending, entity.PendingStatusDuplicate).Return(nil)

	c, err := v.Confirm(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, c.Outcome)
}

func TestVoting_Confirm_SameTokenRacedAhead(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	gomock.InOrder(
		d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
			Return(pendingVote(entity.PendingStatusPending), nil),
		d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
			Return(pendingVote(entity.PendingStatusValid), nil),
	)
	d.votes.EXPECT().VoteByCivilID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(entity.Vote{}, storage.ErrVoteNotFound)
	d.votes.EXPECT().AcceptVote(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyProcessed)

	c, err := v.Confirm(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyConfirmed, c.Outcome)
	assert.True(t, c.Repeated)
}

func TestVoting_Confirm_AlreadyProcessedChangesNothing(t *testing.T) {
	tests := []struct {
		status entity.PendingStatus
		want   Outcome
	}{
		{entity.PendingStatusValid, OutcomeAlreadyConfirmed},
		{entity.PendingStatusDuplicate, OutcomeDuplicate},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			v, d := newTestVoting(t, jan15)

			// Only the lookup is expected; any write fails the test.
			d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
				Return(pendingVote(tt.status), nil)

			c, err := v.Confirm(context.Background(), "raw-token")
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Outcome)
			assert.Equal(t, tt.status, c.Status)
			assert.True(t, c.Repeated)
		})
	}
}

func TestVoting_Confirm_TokenNotFound(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
		Return(entity.PendingVote{}, storage.ErrPendingNotFound)

	_, err := v.Confirm(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = v.Confirm(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestVoting_Confirm_StorageUnavailable(t *testing.T) {
	v, d := newTestVoting(t, jan15)

	d.pending.EXPECT().PendingVoteByTokenHash(gomock.Any(), gomock.Any()).
		Return(pendingVote(entity.PendingStatusPending), nil)
	d.votes.EXPECT().VoteByCivilID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(entity.Vote{}, storage.ErrVoteNotFound)
	d.votes.EXPECT().AcceptVote(gomock.Any(), gomock.Any()).Return(errors.New("disk I/O error"))

	_, err := v.Confirm(context.Background(), "raw-token")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
