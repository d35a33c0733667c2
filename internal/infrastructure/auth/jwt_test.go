package auth

import (
	"context"
	"testing"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)

	token, err := m.GenerateAccessToken("user-1", "a@b.c")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestRefreshTokenIsNotAccessToken(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)

	refresh, err := m.GenerateRefreshToken("user-1", "a@b.c")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, entity.ErrInvalidToken)

	claims, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken("user-1", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, entity.ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Minute, time.Hour).GenerateAccessToken("u", "")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Minute, time.Hour).ValidateAccessToken(token)
	assert.ErrorIs(t, err, entity.ErrInvalidToken)
}

func TestPasswordManager(t *testing.T) {
	pm := NewPasswordManagerWithCost(bcrypt.MinCost)
	hash, err := pm.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, pm.VerifyPassword(hash, "correct horse"))
	assert.False(t, pm.VerifyPassword(hash, "battery staple"))
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", UserIDFromContext(ctx))
	assert.Equal(t, "u1", UserIDFromContext(WithUserID(ctx, "u1")))
}

func TestWeakPasswordRejected(t *testing.T) {
	_, err := NewPasswordManagerWithCost(bcrypt.MinCost).HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}
