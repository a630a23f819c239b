package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-that-is-long-enough-123456"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		BCryptCost:                  4,
	}
}

func newTestService(t *testing.T, now *time.Time) *hmacJWTService {
	t.Helper()
	s, err := newHMACService(testAuthConfig(), func() time.Time { return *now })
	require.NoError(t, err)
	return s
}

func TestNewJWTServiceValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.AuthConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.AuthConfig) {}},
		{name: "short_secret", mutate: func(c *config.AuthConfig) { c.JWTSecret = "short" }, wantErr: true},
		{name: "zero_lifetime", mutate: func(c *config.AuthConfig) { c.TokenLifetimeMinutes = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testAuthConfig()
			tt.mutate(&cfg)
			_, err := NewJWTService(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, &now)
	ctx := context.Background()
	userID := uuid.New()

	token, err := s.GenerateToken(ctx, userID)
	require.NoError(t, err)

	claims, err := s.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt))
	assert.Equal(t, time.Hour, s.AccessTokenLifetime())
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, &now)
	ctx := context.Background()
	userID := uuid.New()

	access, err := s.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := s.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Minute)
	_, err = s.ValidateToken(ctx, access)
	assert.NoError(t, err, "within clock skew")

	now = now.Add(5 * time.Minute)
	_, err = s.ValidateToken(ctx, access)
	assert.ErrorIs(t, err, ErrExpiredToken)
	_, err = s.ValidateRefreshToken(ctx, refresh)
	assert.NoError(t, err)

	now = now.Add(48 * time.Hour)
	_, err = s.ValidateRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := newTestService(t, &now)
	ctx := context.Background()

	access, err := s.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	refresh, err := s.GenerateRefreshToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = s.ValidateToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = s.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestRejectsTamperedTokens(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := newTestService(t, &now)
	ctx := context.Background()

	other, err := newHMACService(config.AuthConfig{
		JWTSecret:                   "another-secret-that-is-long-enough-0000",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
	}, time.Now)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": uuid.NewString(), "type": "access"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "not.a.token",
		"other_key": foreign,
		"none_alg":  none,
		"empty":     "",
	} {
		_, err := s.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(4)
	hash, err := h.Hash("averysecurepassword")
	require.NoError(t, err)
	assert.NotEqual(t, "averysecurepassword", hash)

	assert.NoError(t, h.Compare(hash, "averysecurepassword"))
	assert.ErrorIs(t, h.Compare(hash, "wrong-password"), ErrInvalidCredentials)
	assert.ErrorIs(t, h.Compare("not-a-hash", "averysecurepassword"), ErrInvalidCredentials)
}

func TestBcryptHasherCostFallback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 10, NewBcryptHasher(0).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
