package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillproof/backend/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	u := &models.User{ID: uuid.New(), Email: "a@ku.ac.ke", Role: models.RoleStudent, IsVerified: true}

	token, err := svc.Generate(u)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.True(t, claims.Verified)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	u := &models.User{ID: uuid.New(), Email: "a@ku.ac.ke", Role: models.RoleAdmin}

	other, err := NewJWTService("other-secret", 1).Generate(u)
	require.NoError(t, err)
	_, err = svc.Validate(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := svc.Generate(u)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
