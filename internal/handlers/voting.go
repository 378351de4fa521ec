package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/gin-gonic/gin"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/challenge"
	"github.com/pmarkun/editaisparticipativos/internal/services/voting"
)

type VotingHandler struct {
	log        *slog.Logger
	voting     *voting.Voting
	challenges *challenge.Issuer
	now        func() time.Time
}

type SubmitVoteRequest struct {
	CallID          string `json:"call_id"`
	ProjectID       string `json:"project_id"`
	FullName        string `json:"full_name"`
	CivilID         string `json:"civil_id"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ChallengeToken  string `json:"challenge_token"`
	ChallengeAnswer int    `json:"challenge_answer"`
}

func NewVotingHandler(log *slog.Logger, votingService *voting.Voting, challenges *challenge.Issuer, now func() time.Time) *VotingHandler {
	if now == nil {
		now = time.Now
	}
	return &VotingHandler{log: log, voting: votingService, challenges: challenges, now: now}
}

func (h *VotingHandler) GetChallenge(c *gin.Context) {
	ch, err := h.challenges.Issue(h.now())
	if err != nil {
		h.log.Error("failed to issue challenge", sl.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (h *VotingHandler) SubmitVote(c *gin.Context) {
	var req SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	receipt, err := h.voting.Intake(c.Request.Context(), voting.Ballot{
		CallID:    req.CallID,
		ProjectID: req.ProjectID,
		Voter: entity.Voter{
			FullName: req.FullName,
			CivilID:  req.CivilID,
			Email:    req.Email,
			Phone:    req.Phone,
		},
		ChallengeToken:  req.ChallengeToken,
		ChallengeAnswer: req.ChallengeAnswer,
	})
	if err != nil {
		if errors.Is(err, voting.ErrChallengeFailed) {
			h.challengeFailed(c)
			return
		}
		if status, _ := statusFor(err); status >= http.StatusInternalServerError {
			h.log.Error("vote intake failed", sl.Err(err))
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":          string(entity.PendingStatusPending),
		"pending_vote_id": receipt.PendingVoteID,
		"message":         "check your email to confirm your vote",
	})
}

// challengeFailed answers with a fresh challenge so the client can retry
// without another round trip.
func (h *VotingHandler) challengeFailed(c *gin.Context) {
	body := gin.H{"error": "challenge failed"}

	if ch, err := h.challenges.Issue(h.now()); err == nil {
		body["challenge"] = ch
	}

	c.JSON(http.StatusBadRequest, body)
}

var confirmMessages = map[voting.Outcome]string{
	voting.OutcomeConfirmed:        "vote confirmed",
	voting.OutcomeAlreadyConfirmed: "vote already confirmed",
	voting.OutcomeDuplicate:        "duplicate: civil ID already voted in this call",
}

func (h *VotingHandler) ConfirmVote(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	res, err := h.voting.Confirm(c.Request.Context(), tok)
	if err != nil {
		if status, _ := statusFor(err); status >= http.StatusInternalServerError {
			h.log.Error("vote confirmation failed", sl.Err(err))
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":      res.Outcome,
		"message":      confirmMessages[res.Outcome],
		"status":       res.Status,
		"project_name": res.ProjectName,
	})
}
