// Package apierr maps domain errors onto HTTP responses for every API handler.
package apierr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/project-directory/directory/internal/claims"
	"github.com/project-directory/directory/internal/db/repositories"
	"github.com/project-directory/directory/internal/scm"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// Status returns the HTTP status for err.
func Status(err error) int {
	var authErr *claims.AuthorizationError
	switch {
	case errors.Is(err, scm.ErrInvalidIdentifier), errors.Is(err, scm.ErrInvalidStateFilter):
		return http.StatusBadRequest
	case errors.Is(err, claims.ErrMissingSession):
		return http.StatusUnauthorized
	case errors.As(err, &authErr):
		return http.StatusForbidden
	case errors.Is(err, scm.ErrNotFound), errors.Is(err, repositories.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, claims.ErrConflict), errors.Is(err, repositories.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, scm.ErrInternal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Write aborts the request with the JSON error body for err. Upstream and server failures
// are logged and answered with a generic message.
func Write(c *gin.Context, err error) {
	status := Status(err)
	_ = c.Error(err)

	body := gin.H{}
	var authErr *claims.AuthorizationError
	switch {
	case errors.As(err, &authErr):
		body["error"] = authErr.Error()
		body["attempted"] = authErr.Attempted
		body["owner"] = authErr.Owner
	case status == http.StatusBadGateway:
		slog.WarnContext(c.Request.Context(), "provider request failed", "path", c.FullPath(), "error", err)
		body["error"] = scm.ErrInternal.Error()
	case status == http.StatusInternalServerError:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		body["error"] = "internal server error"
	case status == StatusClientClosedRequest:
		body["error"] = "request cancelled"
	default:
		body["error"] = rootMessage(err)
	}

	c.AbortWithStatusJSON(status, body)
}

// BadRequest aborts with 400 and message.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// rootMessage returns the text of the sentinel at the bottom of err's chain, so callers
// see "resource not found" rather than the wrapping context.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
