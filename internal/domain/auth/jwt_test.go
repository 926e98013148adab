package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken(
		"user-1", "maria@stockpro.local",
		[]string{"manager"},
		[]string{"catalog:item:read", "document:operation:create"},
		[]string{"org-1"},
		false,
	)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, "maria@stockpro.local", user.Email)
	assert.Equal(t, []string{"manager"}, user.Roles)
	assert.Contains(t, user.Permissions, "document:operation:create")
	assert.Equal(t, []string{"org-1"}, user.OrgIDs)
	assert.False(t, user.IsAdmin)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, err := NewJWTService(DefaultJWTConfig("secret-a")).
		GenerateAccessToken("user-1", "a@b.c", nil, nil, nil, false)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("secret-b")).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	token, _, err := NewJWTService(cfg).
		GenerateAccessToken("user-1", "a@b.c", nil, nil, nil, false)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestAdminClaimRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	token, _, err := svc.GenerateAccessToken("admin-1", "admin@stockpro.local", []string{"admin"}, nil, nil, true)
	require.NoError(t, err)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}
