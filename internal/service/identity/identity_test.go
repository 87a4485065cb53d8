package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	s := NewService("secret")

	token, err := s.Issue("user-1", time.Minute)
	require.NoError(t, err)

	userId, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userId)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewService("secret-a").Issue("user-1", time.Minute)
	require.NoError(t, err)

	_, err = NewService("secret-b").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := NewService("secret")

	token, err := s.Issue("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingUserId(t *testing.T) {
	s := NewService("secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewService("secret").Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
