package service

import (
	"testing"
	"time"

	apperrors "repair-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)

	access, refresh, err := svc.GenerateTokens(42, 1, []uint64{5, 7})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, uint64(1), claims.BranchID)
	assert.Equal(t, []uint64{5, 7}, claims.RoleIDs)
	assert.False(t, claims.IsRefreshToken)

	// Refresh-токен не несёт ролей, только признак
	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
	assert.Empty(t, claims.RoleIDs)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, time.Hour)
	other := NewJWTService("another-secret", time.Hour, time.Hour)

	access, _, err := svc.GenerateTokens(42, 1, nil)
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, -time.Minute)

	access, _, err := svc.GenerateTokens(42, 1, nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, time.Hour)

	_, err := svc.ValidateToken("не-токен")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
