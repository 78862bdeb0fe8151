// Package services provides external service integrations and technical concerns like captchas and tokens
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
// and the process-local revocation store
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
		nil, // redisClient
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "rsa without keys",
			useRSAKeys:  true,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				15*time.Minute,
				7*24*time.Hour,
				"test-issuer",
				"test-audience",
				tt.useRSAKeys,
				"",
				"",
				tt.secretKey,
				nil,
			)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAndValidateAdminTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	accessToken, refreshToken, err := service.GenerateAdminTokens(42)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	claims, err := service.ValidateAdminToken(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdminID)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)

	refreshClaims, err := service.ValidateAdminToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestGenerateAndValidateMemberTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	accessToken, _, err := service.GenerateMemberTokens("acct-123")
	require.NoError(t, err)

	claims, err := service.ValidateMemberToken(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, "acct-123", claims.MemberID)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_Invalid(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = service.ValidateAdminToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// A member token is not an admin token
	memberAccess, _, err := service.GenerateMemberTokens("acct-123")
	require.NoError(t, err)
	_, err = service.ValidateAdminToken(ctx, memberAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_WrongKey(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	other, err := NewTokenService(
		15*time.Minute, 7*24*time.Hour,
		"test-issuer", "test-audience",
		false, "", "",
		"a-completely-different-secret-key-string", nil,
	)
	require.NoError(t, err)

	accessToken, _, err := service.GenerateAdminTokens(1)
	require.NoError(t, err)

	_, err = other.ValidateAdminToken(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshAdminToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	accessToken, refreshToken, err := service.GenerateAdminTokens(7)
	require.NoError(t, err)

	newAccess, newRefresh, err := service.RefreshAdminToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	// Access tokens cannot be used to refresh
	_, _, err = service.RefreshAdminToken(ctx, accessToken)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	accessToken, _, err := service.GenerateAdminTokens(9)
	require.NoError(t, err)

	assert.False(t, service.IsTokenRevoked(ctx, accessToken))
	require.NoError(t, service.RevokeToken(ctx, accessToken))
	assert.True(t, service.IsTokenRevoked(ctx, accessToken))

	_, err = service.ValidateAdminToken(ctx, accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
