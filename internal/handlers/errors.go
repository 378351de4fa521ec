package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmarkun/editaisparticipativos/internal/lib/validation"
	"github.com/pmarkun/editaisparticipativos/internal/services/calls"
	"github.com/pmarkun/editaisparticipativos/internal/services/report"
	"github.com/pmarkun/editaisparticipativos/internal/services/voting"
)

// statusFor maps service errors to HTTP status codes and public messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, voting.ErrValidation), errors.Is(err, calls.ErrValidation):
		return http.StatusBadRequest, "validation error"
	case errors.Is(err, voting.ErrChallengeFailed):
		return http.StatusBadRequest, "challenge failed"
	case errors.Is(err, voting.ErrTokenNotFound):
		return http.StatusNotFound, "token not found"
	case errors.Is(err, voting.ErrCallNotFound), errors.Is(err, calls.ErrCallNotFound),
		errors.Is(err, report.ErrCallNotFound):
		return http.StatusNotFound, "call not found"
	case errors.Is(err, voting.ErrProjectNotFound), errors.Is(err, calls.ErrProjectNotFound):
		return http.StatusNotFound, "project not found"
	case errors.Is(err, voting.ErrPhaseNotOpen):
		return http.StatusConflict, "voting is not open for this call"
	case errors.Is(err, calls.ErrPhaseNotOpen):
		return http.StatusConflict, "subscriptions are not open for this call"
	case errors.Is(err, calls.ErrNotOwner):
		return http.StatusForbidden, "project belongs to another submitter"
	case errors.Is(err, voting.ErrStorageUnavailable), errors.Is(err, calls.ErrStorageUnavailable),
		errors.Is(err, report.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable, try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)

	body := gin.H{"error": msg}

	var verr *validation.Error
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}

	c.JSON(status, body)
}
