package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hashed)

	assert.True(t, CheckPassword(hashed, "secret123"))
	assert.False(t, CheckPassword(hashed, "wrong"))
}

func TestCheckPasswordLegacyPlaintext(t *testing.T) {
	assert.True(t, CheckPassword("plain-password", "plain-password"))
	assert.False(t, CheckPassword("plain-password", "other"))
	assert.False(t, CheckPassword("", ""))
}

func TestGenerateAndValidateToken(t *testing.T) {
	access, refresh, err := GenerateTokens(7, "ooo-roga", RoleClient, "test-secret")
	require.NoError(t, err)

	claims, err := ValidateToken(access, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "ooo-roga", claims.Login)
	assert.Equal(t, RoleClient, claims.Role)
	assert.Equal(t, "access", claims.TokenType)

	claims, err = ValidateToken(refresh, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	access, _, err := GenerateTokens(7, "ooo-roga", RoleClient, "test-secret")
	require.NoError(t, err)

	_, err = ValidateToken(access, "other-secret")
	assert.Error(t, err)
}

func TestGenerateTokensEmptySecret(t *testing.T) {
	_, _, err := GenerateTokens(7, "ooo-roga", RoleClient, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refresh, err := GenerateTokens(7, "ooo-roga", RoleAdmin, "test-secret")
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refresh, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	accessClaims, err := ValidateToken(newAccess, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "access", accessClaims.TokenType)
}

func TestRefreshWithAccessTokenFails(t *testing.T) {
	access, _, err := GenerateTokens(7, "ooo-roga", RoleClient, "test-secret")
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(access, "test-secret")
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}
