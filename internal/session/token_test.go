package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, username string, role Role, expiresIn time.Duration) string {
	t.Helper()

	claims := Claims{
		UserID:   1,
		Username: username,
		Name:     "Test User",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecodeToken(t *testing.T) {
	t.Run("Success - decodes identity claims", func(t *testing.T) {
		raw := mintToken(t, "dewi", RoleCashier, time.Hour)

		claims, err := DecodeToken(raw)

		require.NoError(t, err)
		assert.Equal(t, "dewi", claims.Username)
		assert.Equal(t, "Test User", claims.Name)
		assert.Equal(t, RoleCashier, claims.Role)
		assert.Equal(t, int64(1), claims.UserID)
		require.NotNil(t, claims.ExpiresAt)
		assert.InDelta(t, time.Hour.Seconds(), claims.ExpiresIn(time.Now()).Seconds(), 5)
	})

	t.Run("Failed - garbage input", func(t *testing.T) {
		claims, err := DecodeToken("definitely-not-a-jwt")

		assert.Nil(t, claims)
		assert.True(t, errors.Is(err, ErrMalformedToken))
	})

	t.Run("Failed - empty string", func(t *testing.T) {
		claims, err := DecodeToken("")

		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("Failed - missing expiry claim", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Username: "dewi",
			Role:     RoleAdmin,
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		claims, err := DecodeToken(raw)

		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}

func TestRole_LandingPath(t *testing.T) {
	assert.Equal(t, PathAdmin, RoleAdmin.LandingPath())
	assert.Equal(t, PathCashier, RoleCashier.LandingPath())
	assert.Equal(t, PathLogin, Role("UNKNOWN").LandingPath())
}
