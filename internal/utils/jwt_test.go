package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAccessToken_RoundTripClaims(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, "ADMIN", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.InDelta(t, float64(at.Exp.Unix()), claims["exp"], 1)
}

func TestNewAccessToken_RejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right-secret", 1, "CUSTOMER", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}

func TestNewRefreshToken_IsRandomAndHasExpiry(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), a.Exp, time.Minute)
}

func TestHashRefreshRaw_DeterministicAndDistinct(t *testing.T) {
	assert.Equal(t, HashRefreshRaw("token-a"), HashRefreshRaw("token-a"))
	assert.NotEqual(t, HashRefreshRaw("token-a"), HashRefreshRaw("token-b"))
	assert.Len(t, HashRefreshRaw("token-a"), 64)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestPasswordHashingClampsLowCost(t *testing.T) {
	// A zero cost (unset config) must still produce a usable hash at
	// the bcrypt default rather than an error or a degenerate cost.
	hash, err := HashPassword("s3cret", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.True(t, VerifyPassword(hash, "s3cret"))
}
