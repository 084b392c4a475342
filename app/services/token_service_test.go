package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-at-least-32-chars"

func newTestTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(ttl, "recon-api", "recon-clients", testSecret, nil)
	require.NoError(t, err)
	return svc
}

func TestTokenService(t *testing.T) {
	ctx := context.Background()

	t.Run("GenerateAndValidate", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour)

		token, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "seller-dashboard", claims.ClientID)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("EachTokenGetsAFreshID", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour)

		first, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)
		second, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)

		a, err := svc.ValidateToken(ctx, first)
		require.NoError(t, err)
		b, err := svc.ValidateToken(ctx, second)
		require.NoError(t, err)
		assert.NotEqual(t, a.TokenID, b.TokenID)
	})

	t.Run("RevokedTokenIsRejected", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour)

		token, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)
		require.NoError(t, svc.RevokeToken(ctx, token))

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("RevokingOneTokenLeavesOthersValid", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour)

		revoked, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)
		kept, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)

		require.NoError(t, svc.RevokeToken(ctx, revoked))
		_, err = svc.ValidateToken(ctx, kept)
		assert.NoError(t, err)
	})

	t.Run("GarbageTokenIsInvalid", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour)
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("TokenSignedWithAnotherKeyIsInvalid", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour)
		other, err := NewTokenService(time.Hour, "recon-api", "recon-clients", "another-secret-key-with-32-characters!", nil)
		require.NoError(t, err)

		token, err := other.GenerateToken("seller-dashboard")
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("ExpiredTokenIsRejected", func(t *testing.T) {
		svc := newTestTokenService(t, -time.Minute)

		token, err := svc.GenerateToken("seller-dashboard")
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("EmptySecretIsRefused", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, "recon-api", "recon-clients", "", nil)
		assert.Error(t, err)
	})
}

func TestMemoryTokenCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetAndCheck", func(t *testing.T) {
		cache := NewMemoryTokenCache()
		require.NoError(t, cache.SetRevoked(ctx, "tok-1", time.Hour))

		revoked, err := cache.IsRevoked(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = cache.IsRevoked(ctx, "tok-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("NonPositiveTTLIsNotStored", func(t *testing.T) {
		cache := NewMemoryTokenCache()
		require.NoError(t, cache.SetRevoked(ctx, "tok-1", -time.Second))

		revoked, err := cache.IsRevoked(ctx, "tok-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("ExpiredEntriesAreDropped", func(t *testing.T) {
		cache := NewMemoryTokenCache()
		cache.entries["tok-1"] = time.Now().UTC().Add(-time.Minute)

		revoked, err := cache.IsRevoked(ctx, "tok-1")
		require.NoError(t, err)
		assert.False(t, revoked)
		assert.NotContains(t, cache.entries, "tok-1")
	})
}
