package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	appctx "stockpro/internal/core/context"
)

func TestUserCanLogin(t *testing.T) {
	u := NewUser("joao@stockpro.local", "hash")
	require.NoError(t, u.CanLogin())

	u.IsActive = false
	assert.Error(t, u.CanLogin())

	u.IsActive = true
	lock := time.Now().Add(10 * time.Minute)
	u.LockedUntil = &lock
	assert.Error(t, u.CanLogin())

	expired := time.Now().Add(-time.Minute)
	u.LockedUntil = &expired
	assert.NoError(t, u.CanLogin())
}

func TestRecordFailedLoginLocksAfterMaxAttempts(t *testing.T) {
	u := NewUser("joao@stockpro.local", "hash")

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(5, 15*time.Minute)
	}
	assert.False(t, u.IsLocked())

	u.RecordFailedLogin(5, 15*time.Minute)
	assert.True(t, u.IsLocked())

	u.RecordSuccessfulLogin()
	assert.False(t, u.IsLocked())
	assert.Zero(t, u.FailedLoginAttempts)
	assert.NotNil(t, u.LastLoginAt)
}

func TestUserHasPermission(t *testing.T) {
	u := NewUser("ana@stockpro.local", "hash")
	u.Permissions = []string{"catalog:item:read"}

	assert.True(t, u.HasPermission("catalog:item:read"))
	assert.False(t, u.HasPermission("catalog:item:delete"))

	u.IsAdmin = true
	assert.True(t, u.HasPermission("catalog:item:delete"))
}

func TestUserFullName(t *testing.T) {
	u := NewUser("ana@stockpro.local", "hash")
	assert.Equal(t, "ana@stockpro.local", u.FullName())

	u.FirstName = "Ana"
	assert.Equal(t, "Ana", u.FullName())

	u.LastName = "Souza"
	assert.Equal(t, "Ana Souza", u.FullName())
}

func TestRefreshTokenIsValid(t *testing.T) {
	tok := &RefreshToken{ExpiresAt: time.Now().Add(time.Hour)}
	assert.True(t, tok.IsValid())

	revoked := time.Now()
	tok.RevokedAt = &revoked
	assert.False(t, tok.IsValid())

	tok.RevokedAt = nil
	tok.ExpiresAt = time.Now().Add(-time.Minute)
	assert.False(t, tok.IsValid())
}

func TestRequireAdmin(t *testing.T) {
	err := requireAdmin(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "u1", Roles: []string{"operator"},
	})
	err = requireAdmin(ctx)
	require.Error(t, err)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	ctx = appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "u2", Roles: []string{"admin"},
	})
	assert.NoError(t, requireAdmin(ctx))

	ctx = appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "u3", IsAdmin: true,
	})
	assert.NoError(t, requireAdmin(ctx))
}

func TestValidatePassword(t *testing.T) {
	svc := &Service{config: DefaultServiceConfig()}

	assert.Error(t, svc.validatePassword("short"))
	assert.NoError(t, svc.validatePassword("long-enough-password"))
}
