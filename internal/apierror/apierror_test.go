package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/registration"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/response"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("email", "is required"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", verification.ErrInvalidCredentials), http.StatusUnauthorized},
		{verification.ErrPendingVerification, http.StatusForbidden},
		{verification.ErrNoActiveEnrollment, http.StatusForbidden},
		{fmt.Errorf("pending domain request: %w", verification.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: request x is already approved", verification.ErrInvalidState), http.StatusConflict},
		{registration.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := Status(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}

func TestStatusHidesInternalDetail(t *testing.T) {
	_, msg := Status(fmt.Errorf("dial tcp 10.0.0.5:5432: refused"))
	assert.Equal(t, "internal error", msg)
}

func TestRespondIncludesValidationField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register/student", nil)

	Respond(c, nil, models.NewValidationError("email", "must be a valid email address"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "email", body.Field)
}
