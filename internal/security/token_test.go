package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub-backend/internal/domain"
)

const testUserID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	t.Run("Round trip", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(testUserID, "ada@example.com", domain.RoleManager)
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, testUserID, claims.UserID)
		assert.Equal(t, "ada@example.com", claims.Email)
		assert.Equal(t, domain.RoleManager, claims.Role)

		_, err = ulid.Parse(claims.ID)
		assert.NoError(t, err, "jti should be a ULID")
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).GenerateAccessToken(testUserID, "", domain.RoleUser)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		past := &tokenManager{secret: []byte("test-secret"), ttl: time.Minute, now: func() time.Time { return time.Now().Add(-time.Hour) }}
		token, err := past.GenerateAccessToken(testUserID, "", domain.RoleUser)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Unsigned token rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{UserID: testUserID})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.ValidateToken(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Default TTL", func(t *testing.T) {
		assert.Equal(t, 24*time.Hour, NewTokenManager("s", 0).TTL())
	})
}
