// Package storagetest runs the same behavioural checks against every storage
// adapter.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
	"github.com/pmarkun/editaisparticipativos/internal/storage/sqlstore"
)

var base = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func NewCall(slug string) entity.Call {
	return entity.Call{
		ID:                uuid.NewString(),
		Name:              "Edital " + slug,
		Description:       "Chamada pública para projetos comunitários",
		Slug:              slug,
		SubscriptionStart: base,
		SubscriptionEnd:   base.AddDate(0, 0, 9),
		VotingStart:       base.AddDate(0, 0, 9),
		VotingEnd:         base.AddDate(0, 0, 19),
		CreatedAt:         base,
		UpdatedAt:         base,
	}
}

func NewProject(callID, slug string) entity.Project {
	return entity.Project{
		ID:             uuid.NewString(),
		CallID:         callID,
		Name:           "Projeto " + slug,
		Category:       entity.CategoryCulture,
		Description:    "Oficinas de música para jovens do bairro",
		Location:       "Centro",
		Beneficiaries:  "Jovens de 14 a 18 anos",
		RequestedCents: 150000,
		Slug:           slug,
		SubmitterID:    "submitter-1",
		CreatedAt:      base,
		UpdatedAt:      base,
	}
}

func NewPending(p entity.Project, civilID string) entity.PendingVote {
	return entity.PendingVote{
		ID:          uuid.NewString(),
		CallID:      p.CallID,
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Voter: entity.Voter{
			FullName: "Maria da Silva",
			CivilID:  civilID,
			Email:    "maria@example.com",
			Phone:    "(11) 98765-4321",
		},
		TokenHash: uuid.NewString(),
		Status:    entity.PendingStatusPending,
		CreatedAt: base.AddDate(0, 0, 12),
	}
}

func VoteFor(pv entity.PendingVote) entity.Vote {
	return entity.Vote{
		ID:            uuid.NewString(),
		CallID:        pv.CallID,
		ProjectID:     pv.ProjectID,
		ProjectName:   pv.ProjectName,
		Voter:         pv.Voter,
		PendingVoteID: pv.ID,
		VotedAt:       pv.CreatedAt.Add(time.Hour),
	}
}

// Run exercises s. Each subtest uses its own call so one store can be shared.
func Run(t *testing.T, s *sqlstore.Storage) {
	t.Run("Calls", func(t *testing.T) { testCalls(t, s) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, s) })
	t.Run("PendingVotes", func(t *testing.T) { testPendingVotes(t, s) })
	t.Run("AcceptVote", func(t *testing.T) { testAcceptVote(t, s) })
	t.Run("AcceptVoteConcurrent", func(t *testing.T) { testAcceptVoteConcurrent(t, s) })
}

func seed(t *testing.T, s *sqlstore.Storage) (entity.Call, entity.Project) {
	t.Helper()
	ctx := context.Background()

	call := NewCall("c-" + uuid.NewString()[:8])
	require.NoError(t, s.SaveCall(ctx, call))

	p := NewProject(call.ID, "horta")
	require.NoError(t, s.SaveProject(ctx, p))

	return call, p
}

func testCalls(t *testing.T, s *sqlstore.Storage) {
	ctx := context.Background()

	call := NewCall("calls-" + uuid.NewString()[:8])
	require.NoError(t, s.SaveCall(ctx, call))

	got, err := s.CallByID(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, call.Slug, got.Slug)
	assert.True(t, got.VotingEnd.Equal(call.VotingEnd))
	assert.Equal(t, time.UTC, got.VotingEnd.Location())

	got, err = s.CallBySlug(ctx, call.Slug)
	require.NoError(t, err)
	assert.Equal(t, call.ID, got.ID)

	dup := NewCall(call.Slug)
	assert.ErrorIs(t, s.SaveCall(ctx, dup), storage.ErrSlugExists)

	call.Name = "Edital renomeado"
	call.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateCall(ctx, call))

	got, err = s.CallByID(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edital renomeado", got.Name)

	_, err = s.CallByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrCallNotFound)
	_, err = s.CallBySlug(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrCallNotFound)
	assert.ErrorIs(t, s.UpdateCall(ctx, NewCall("ghost")), storage.ErrCallNotFound)

	newer := NewCall("calls-newer-" + uuid.NewString()[:8])
	newer.CreatedAt = time.Now().UTC()
	require.NoError(t, s.SaveCall(ctx, newer))

	calls, err := s.ListCalls(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, newer.ID, calls[0].ID)
}

func testProjects(t *testing.T, s *sqlstore.Storage) {
	ctx := context.Background()
	call, p := seed(t, s)

	got, err := s.ProjectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Category, got.Category)
	assert.Equal(t, p.RequestedCents, got.RequestedCents)
	assert.Equal(t, p.SubmitterID, got.SubmitterID)

	got, err = s.ProjectBySlug(ctx, call.ID, "horta")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	assert.ErrorIs(t, s.SaveProject(ctx, NewProject(call.ID, "horta")), storage.ErrSlugExists)

	second := NewProject(call.ID, "biblioteca")
	second.CreatedAt = base.Add(time.Minute)
	require.NoError(t, s.SaveProject(ctx, second))

	p.Description = "Oficinas de música e teatro para jovens"
	p.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateProject(ctx, p))

	list, err := s.ListProjects(ctx, call.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, p.Description, list[0].Description)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = s.ProjectByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrProjectNotFound)
	_, err = s.ProjectBySlug(ctx, call.ID, "missing")
	assert.ErrorIs(t, err, storage.ErrProjectNotFound)
	assert.ErrorIs(t, s.UpdateProject(ctx, NewProject(call.ID, "ghost")), storage.ErrProjectNotFound)
}

func testPendingVotes(t *testing.T, s *sqlstore.Storage) {
	ctx := context.Background()
	_, p := seed(t, s)

	pv := NewPending(p, "12345678909")
	require.NoError(t, s.SavePendingVote(ctx, pv))

	got, err := s.PendingVoteByTokenHash(ctx, pv.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, pv.ID, got.ID)
	assert.Equal(t, pv.Voter, got.Voter)
	assert.Equal(t, entity.PendingStatusPending, got.Status)

	clash := NewPending(p, "12345678909")
	clash.TokenHash = pv.TokenHash
	assert.ErrorIs(t, s.SavePendingVote(ctx, clash), storage.ErrTokenExists)

	require.NoError(t, s.UpdatePendingStatus(ctx, pv.ID, entity.PendingStatusPending, entity.PendingStatusDuplicate))
	err = s.UpdatePendingStatus(ctx, pv.ID, entity.PendingStatusPending, entity.PendingStatusValid)
	assert.ErrorIs(t, err, storage.ErrAlreadyProcessed)

	got, err = s.PendingVoteByTokenHash(ctx, pv.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, entity.PendingStatusDuplicate, got.Status)

	_, err = s.PendingVoteByTokenHash(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrPendingNotFound)
}

func testAcceptVote(t *testing.T, s *sqlstore.Storage) {
	ctx := context.Background()
	call, p := seed(t, s)

	first := NewPending(p, "12345678909")
	second := NewPending(p, "12345678909")
	require.NoError(t, s.SavePendingVote(ctx, first))
	require.NoError(t, s.SavePendingVote(ctx, second))

	_, err := s.VoteByCivilID(ctx, call.ID, "12345678909")
	assert.ErrorIs(t, err, storage.ErrVoteNotFound)

	require.NoError(t, s.AcceptVote(ctx, VoteFor(first)))

	got, err := s.PendingVoteByTokenHash(ctx, first.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, entity.PendingStatusValid, got.Status)

	vote, err := s.VoteByCivilID(ctx, call.ID, "12345678909")
	require.NoError(t, err)
	assert.Equal(t, first.ID, vote.PendingVoteID)

	assert.ErrorIs(t, s.AcceptVote(ctx, VoteFor(first)), storage.ErrAlreadyProcessed)

	// The unique index rejects the second vote and the status update is
	// rolled back with it.
	assert.ErrorIs(t, s.AcceptVote(ctx, VoteFor(second)), storage.ErrVoteExists)

	got, err = s.PendingVoteByTokenHash(ctx, second.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, entity.PendingStatusPending, got.Status)

	votes, err := s.VotesByCall(ctx, call.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func testAcceptVoteConcurrent(t *testing.T, s *sqlstore.Storage) {
	const n = 8
	ctx := context.Background()
	call, p := seed(t, s)

	pending := make([]entity.PendingVote, n)
	for i := range pending {
		pending[i] = NewPending(p, "52998224725")
		require.NoError(t, s.SavePendingVote(ctx, pending[i]))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		errs     []error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(pv entity.PendingVote) {
			defer wg.Done()

			err := s.AcceptVote(ctx, VoteFor(pv))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else {
				errs = append(errs, err)
			}
		}(pending[i])
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	for _, err := range errs {
		assert.ErrorIs(t, err, storage.ErrVoteExists, fmt.Sprint(err))
	}

	votes, err := s.VotesByCall(ctx, call.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}
