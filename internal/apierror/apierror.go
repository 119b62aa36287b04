// Package apierror maps domain errors onto the JSON response envelope.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/response"
)

// Status returns the HTTP status and client-facing message for err.
func Status(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, verification.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, verification.ErrPendingVerification):
		return http.StatusForbidden, "your account is pending domain verification"
	case errors.Is(err, verification.ErrNoActiveEnrollment):
		return http.StatusForbidden, "no active enrollment at a verified university"
	case errors.Is(err, verification.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, verification.ErrInvalidState):
		return http.StatusConflict, "request already handled"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// Respond writes err as a failed response. Server errors are logged with detail;
// the client only sees a generic message.
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		response.FailField(c, verr.Field, msg)
		return
	}
	response.Fail(c, status, msg)
}
