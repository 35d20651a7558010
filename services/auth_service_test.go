package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(secret string, now time.Time) *AuthService {
	a := NewAuthService(AdminAuthConfig{Secret: secret, Expiry: time.Hour})
	a.now = func() time.Time { return now }
	return a
}

func TestAdminTokenRoundTrip(t *testing.T) {
	auth := newTestAuth("test-secret", kickoff)

	token, err := auth.GenerateToken(operator)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, operator, claims.Actor)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, operator, claims.Subject)
}

func TestAdminTokenRejected(t *testing.T) {
	auth := newTestAuth("test-secret", kickoff)
	token, err := auth.GenerateToken(operator)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestAuth("test-secret", kickoff.Add(2*time.Hour))
		_, err := later.ValidateToken(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := newTestAuth("other-secret", kickoff)
		_, err := other.ValidateToken(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ValidateToken("not.a.token")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("missing admin role", func(t *testing.T) {
		claims := &AdminClaims{
			Actor: operator,
			Role:  "viewer",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(kickoff.Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = auth.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no actor", func(t *testing.T) {
		_, err := auth.GenerateToken("")
		assert.True(t, IsValidation(err))
	})
}
