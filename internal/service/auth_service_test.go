package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/domain"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

func newAuthService(f *fixture, allowRegistration bool) *AuthService {
	cfg := config.AuthConfig{BcryptCost: 4, AllowSelfRegistration: allowRegistration}
	return NewAuthService(cfg, auth.NewTokenManager("test-secret", 60), f.deps)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuthService(f, true)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Nia", Email: " Nia@Example.io ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, registered.User.Role)
	assert.Nil(t, registered.User.CompanyID)
	assert.Equal(t, "nia@example.io", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	claims, err := svc.TokenManager().ParseToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = svc.Register(ctx, RegisterInput{Name: "Nia", Email: "nia@example.io", Password: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	loggedIn, err := svc.Login(ctx, "NIA@example.io", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, "nia@example.io", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = svc.Login(ctx, "ghost@example.io", "hunter22")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestAuthService_RegistrationDisabled(t *testing.T) {
	f := newFixture(t)
	_, err := newAuthService(f, false).Register(context.Background(), RegisterInput{Email: "x@y.io", Password: "pw"})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthService_ChangePasswordAndBootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuthService(f, true)

	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "root@itsm.io", "first"))
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "root@itsm.io", "ignored"))

	result, err := svc.Login(ctx, "root@itsm.io", "first")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, result.User.Role)

	principal := domain.PrincipalFromUser(result.User)
	assert.True(t, apperrors.HasCode(svc.ChangePassword(ctx, principal, "nope", "second"), apperrors.CodeUnauthorized))
	require.NoError(t, svc.ChangePassword(ctx, principal, "first", "second"))

	_, err = svc.Login(ctx, "root@itsm.io", "second")
	require.NoError(t, err)
}
