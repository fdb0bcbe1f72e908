package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/membership/internal/shared"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", 60, "membership")

	signed, err := tokens.Issue(42, "ani@example.com")
	require.NoError(t, err)

	identity, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, shared.Identity{UserID: 42, Email: "ani@example.com"}, identity)
}

func TestTokenServiceClaims(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tokens := NewTokenService("secret", 30, "membership")
	tokens.now = func() time.Time { return fixed }

	signed, err := tokens.Issue(7, "ani@example.com")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(signed, claims)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "membership", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, fixed.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, 30, tokens.TTLMinutes())
}

func TestTokenServiceRejects(t *testing.T) {
	tokens := NewTokenService("secret", 60, "membership")
	valid, err := tokens.Issue(1, "a@example.com")
	require.NoError(t, err)

	t.Run("Should reject expired tokens", func(t *testing.T) {
		expired := NewTokenService("secret", 1, "membership")
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		signed, err := expired.Issue(1, "a@example.com")
		require.NoError(t, err)

		_, err = tokens.Verify(signed)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
	t.Run("Should reject a different secret", func(t *testing.T) {
		_, err := NewTokenService("other", 60, "membership").Verify(valid)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
	t.Run("Should reject a different issuer", func(t *testing.T) {
		_, err := NewTokenService("secret", 60, "someone-else").Verify(valid)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
	t.Run("Should reject unsigned tokens", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "membership",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Verify(unsigned)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
	t.Run("Should reject tokens without expiry", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "membership"}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tokens.Verify(signed)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
	t.Run("Should reject a non-numeric subject", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "membership",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tokens.Verify(signed)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := tokens.Verify(strings.Repeat("x", 20))
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", 60, "membership").Issue(1, "a@example.com")
	assert.Error(t, err)
}
