package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput describes a self-registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	base
	tokenMgr          *auth.TokenManager
	bcryptCost        int
	allowRegistration bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, tokens *auth.TokenManager, deps Dependencies) *AuthService {
	return &AuthService{
		base:              newBase(deps),
		tokenMgr:          tokens,
		bcryptCost:        cfg.BcryptCost,
		allowRegistration: cfg.AllowSelfRegistration,
	}
}

// Register creates a client account without a company. An admin binds the company
// later; until then the account sees nothing company-scoped.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if !s.allowRegistration {
		return nil, apperrors.NewForbidden("self-registration is disabled")
	}

	email := normalizeEmail(input.Email)
	if _, err := s.repos().Users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	user := &domain.User{
		ID:           s.newID(),
		Name:         trimmed(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos().Users.Create(ctx, user); err != nil {
		return nil, repoError(err, "user", user.ID)
	}
	s.logger.Info("client registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repos().Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// Me returns the account behind the principal.
func (s *AuthService) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.repos().Users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, repoError(err, "user", principal.UserID)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, principal domain.Principal, currentPassword, newPassword string) error {
	user, err := s.repos().Users.GetByID(ctx, principal.UserID)
	if err != nil {
		return repoError(err, "user", principal.UserID)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	return repoError(s.repos().Users.Update(ctx, user), "user", user.ID)
}

// EnsureBootstrapAdmin creates the initial admin account when it does not exist yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repos().Users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	now := s.now()
	admin := &domain.User{
		ID:           s.newID(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos().Users.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", admin.ID), zap.String("email", email))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
