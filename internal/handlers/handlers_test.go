package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapp "github.com/pmarkun/editaisparticipativos/internal/app/http"
	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/handlers"
	"github.com/pmarkun/editaisparticipativos/internal/lib/challenge"
	"github.com/pmarkun/editaisparticipativos/internal/lib/logger"
	"github.com/pmarkun/editaisparticipativos/internal/lib/metrics"
	"github.com/pmarkun/editaisparticipativos/internal/middleware"
	"github.com/pmarkun/editaisparticipativos/internal/notify"
	"github.com/pmarkun/editaisparticipativos/internal/services/calls"
	"github.com/pmarkun/editaisparticipativos/internal/services/report"
	"github.com/pmarkun/editaisparticipativos/internal/services/voting"
	"github.com/pmarkun/editaisparticipativos/internal/storage/migrations"
	"github.com/pmarkun/editaisparticipativos/internal/storage/sqlite"
	"github.com/pmarkun/editaisparticipativos/internal/storage/storagetest"
)

const adminKey = "test-admin-key"

var votingDay = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

type inbox struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (i *inbox) Notify(_ context.Context, msg notify.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, msg)
	return nil
}

func (i *inbox) lastToken(t *testing.T) string {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()

	require.NotEmpty(t, i.msgs)
	body := i.msgs[len(i.msgs)-1].Body
	start := strings.Index(body, "http")
	require.NotEqual(t, -1, start)

	u, err := url.Parse(strings.Fields(body[start:])[0])
	require.NoError(t, err)
	return u.Query().Get("token")
}

type server struct {
	engine  *gin.Engine
	inbox   *inbox
	call    entity.Call
	project entity.Project
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "votes.db")
	require.NoError(t, migrations.Up(migrations.DriverSQLite, path))

	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	call := storagetest.NewCall("edital-2024")
	project := storagetest.NewProject(call.ID, "horta")
	require.NoError(t, store.SaveCall(context.Background(), call))
	require.NoError(t, store.SaveProject(context.Background(), project))

	now := func() time.Time { return votingDay }
	log := logger.Discard()
	issuer := challenge.NewIssuer("secret", time.Hour)
	box := &inbox{}

	votingService := voting.New(log, store, store, store, store, box, issuer, metrics.Noop(), voting.Config{
		PublicBaseURL: "http://localhost:8080",
		Now:           now,
	})

	app := httpapp.NewApp(log, httpapp.Options{AdminKey: adminKey}, httpapp.Handlers{
		Voting:  handlers.NewVotingHandler(log, votingService, issuer, now),
		Calls:   handlers.NewCallsHandler(calls.New(log, store, store, now)),
		Reports: handlers.NewReportHandler(report.New(log, store, store, store, now)),
	})

	return &server{engine: app.Engine(), inbox: box, call: call, project: project}
}

func (s *server) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *server) challenge(t *testing.T) challenge.Challenge {
	t.Helper()

	w := s.do(t, http.MethodGet, "/api/challenge", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ch challenge.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ch))
	return ch
}

func (s *server) vote(t *testing.T, civilID string, answer func(challenge.Challenge) int) *httptest.ResponseRecorder {
	t.Helper()

	ch := s.challenge(t)
	return s.do(t, http.MethodPost, "/api/votes", handlers.SubmitVoteRequest{
		CallID:          s.call.ID,
		ProjectID:       s.project.ID,
		FullName:        gofakeit.Name(),
		CivilID:         civilID,
		Email:           gofakeit.Email(),
		Phone:           "(11) 98765-4321",
		ChallengeToken:  ch.Token,
		ChallengeAnswer: answer(ch),
	}, nil)
}

func correct(ch challenge.Challenge) int { return ch.A + ch.B }

func TestPing(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/ping", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])
}

func TestVoteAndConfirm(t *testing.T) {
	s := newServer(t)

	w := s.vote(t, "529.982.247-25", correct)
	require.Equal(t, http.StatusAccepted, w.Code)
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	assert.NotEmpty(t, body["pending_vote_id"])

	tok := s.inbox.lastToken(t)

	w = s.do(t, http.MethodGet, "/confirm-vote?token="+url.QueryEscape(tok), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "confirmed", body["outcome"])
	assert.Equal(t, "vote confirmed", body["message"])
	assert.Equal(t, s.project.Name, body["project_name"])

	w = s.do(t, http.MethodGet, "/confirm-vote?token="+url.QueryEscape(tok), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "already_confirmed", body["outcome"])
	assert.Equal(t, "vote already confirmed", body["message"])
}

func TestConfirm_Duplicate(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusAccepted, s.vote(t, "529.982.247-25", correct).Code)
	first := s.inbox.lastToken(t)
	require.Equal(t, http.StatusAccepted, s.vote(t, "52998224725", correct).Code)
	second := s.inbox.lastToken(t)

	w := s.do(t, http.MethodGet, "/confirm-vote?token="+url.QueryEscape(first), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/confirm-vote?token="+url.QueryEscape(second), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "duplicate", body["outcome"])
	assert.Equal(t, "duplicate: civil ID already voted in this call", body["message"])
}

func TestConfirm_BadRequests(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/confirm-vote", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/confirm-vote?token=unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "token not found", decode(t, w)["error"])
}

func TestVote_ChallengeFailedReturnsFreshChallenge(t *testing.T) {
	s := newServer(t)

	w := s.vote(t, "529.982.247-25", func(ch challenge.Challenge) int { return ch.A + ch.B + 1 })

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "challenge failed", body["error"])

	fresh, ok := body["challenge"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, fresh["token"])
	assert.Empty(t, s.inbox.msgs)
}

func TestVote_ValidationFields(t *testing.T) {
	s := newServer(t)

	w := s.vote(t, "123.456.789-00", correct)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation error", body["error"])

	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "civil_id")
}

func TestVote_UnknownProject(t *testing.T) {
	s := newServer(t)

	ch := s.challenge(t)
	w := s.do(t, http.MethodPost, "/api/votes", handlers.SubmitVoteRequest{
		CallID:          s.call.ID,
		ProjectID:       "missing",
		FullName:        "Maria da Silva",
		CivilID:         "529.982.247-25",
		Email:           "maria@example.com",
		Phone:           "(11) 98765-4321",
		ChallengeToken:  ch.Token,
		ChallengeAnswer: correct(ch),
	}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicCalls(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/calls/edital-2024", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(entity.PhaseVotingOpen), decode(t, w)["phase"])

	w = s.do(t, http.MethodGet, "/api/calls/edital-2024/projects", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	projects, ok := decode(t, w)["projects"].([]any)
	require.True(t, ok)
	assert.Len(t, projects, 1)

	w = s.do(t, http.MethodGet, "/api/calls/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_CreateCallAndReport(t *testing.T) {
	s := newServer(t)

	in := calls.CallInput{
		Name:              "Edital de Cultura",
		Description:       "Projetos culturais para a cidade inteira",
		SubscriptionStart: votingDay.AddDate(0, 0, -1),
		SubscriptionEnd:   votingDay.AddDate(0, 0, 5),
		VotingStart:       votingDay.AddDate(0, 0, 5),
		VotingEnd:         votingDay.AddDate(0, 0, 15),
	}

	w := s.do(t, http.MethodPost, "/api/admin/calls", in, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/calls", in, map[string]string{middleware.AdminKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/calls", in, map[string]string{middleware.AdminKeyHeader: adminKey})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "edital-de-cultura", body["slug"])
	assert.Equal(t, string(entity.PhaseSubscriptionOpen), body["phase"])

	w = s.do(t, http.MethodGet, "/api/admin/calls/edital-2024/report", nil, map[string]string{middleware.AdminKeyHeader: adminKey})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edital-2024", decode(t, w)["call_slug"])
}

func TestAdmin_CreateCallValidation(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/admin/calls", calls.CallInput{
		Name:              "Edital",
		Description:       "curta",
		SubscriptionStart: votingDay,
		SubscriptionEnd:   votingDay.AddDate(0, 0, 1),
		VotingStart:       votingDay.AddDate(0, 0, 2),
		VotingEnd:         votingDay.AddDate(0, 0, 3),
	}, map[string]string{middleware.AdminKeyHeader: adminKey})

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decode(t, w)["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "description")
}

func TestSubmitProject(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/admin/calls", calls.CallInput{
		Name:              "Edital de Cultura",
		Description:       "Projetos culturais para a cidade inteira",
		SubscriptionStart: votingDay.AddDate(0, 0, -1),
		SubscriptionEnd:   votingDay.AddDate(0, 0, 5),
		VotingStart:       votingDay.AddDate(0, 0, 5),
		VotingEnd:         votingDay.AddDate(0, 0, 15),
	}, map[string]string{middleware.AdminKeyHeader: adminKey})
	require.Equal(t, http.StatusCreated, w.Code)

	in := calls.ProjectInput{
		Name:           "Cinema na praça",
		Category:       string(entity.CategoryCulture),
		Description:    "Sessões gratuitas de cinema ao ar livre",
		Location:       "Praça central",
		Beneficiaries:  "Moradores do bairro",
		RequestedCents: 500000,
	}

	w = s.do(t, http.MethodPost, "/api/calls/edital-de-cultura/projects", in, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	owner := map[string]string{middleware.SubmitterIDHeader: "sub-1"}
	w = s.do(t, http.MethodPost, "/api/calls/edital-de-cultura/projects", in, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, id)

	in.Name = "Cinema na praça 2"
	w = s.do(t, http.MethodPut, "/api/projects/"+id, in, map[string]string{middleware.SubmitterIDHeader: "sub-2"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/projects/"+id, in, owner)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/calls/edital-2024/projects", in, owner)
	assert.Equal(t, http.StatusConflict, w.Code)
}
