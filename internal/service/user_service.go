package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// UserCreateInput describes an admin-created account.
type UserCreateInput struct {
	Name      string
	Email     string
	Password  string
	Role      domain.Role
	CompanyID *string
}

// UserUpdateInput carries partial updates; nil fields are left unchanged. An empty
// CompanyID clears the company.
type UserUpdateInput struct {
	Name      *string
	Email     *string
	Password  *string
	Role      *domain.Role
	CompanyID *string
}

// UserListFilter narrows user listings.
type UserListFilter struct {
	Role      *domain.Role
	CompanyID *string
	repository.Page
}

// UserService manages accounts.
type UserService struct {
	base
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(bcryptCost int, deps Dependencies) *UserService {
	return &UserService{base: newBase(deps), bcryptCost: bcryptCost}
}

// List returns the accounts visible to principal.
func (s *UserService) List(ctx context.Context, principal domain.Principal, filter UserListFilter) ([]domain.User, error) {
	if err := s.access.Authorize(principal, access.EntityUser, access.ActionRead, nil); err != nil {
		return nil, err
	}
	repoFilter := repository.UserFilter{Role: filter.Role, CompanyID: filter.CompanyID, Page: filter.Page}
	pinned, ok := clientCompany(principal)
	if !ok {
		return []domain.User{}, nil
	}
	if pinned != nil {
		repoFilter.CompanyID = pinned
	}
	users, err := s.repos().Users.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.Filter(users, s.access.ScopeFor(principal, access.EntityUser)), nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.User, error) {
	user, err := s.repos().Users.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "user", id)
	}
	if user.ID != principal.UserID {
		if err := s.access.Authorize(principal, access.EntityUser, access.ActionRead, *user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Create adds an account. Client accounts must name an existing company; staff accounts
// never carry one.
func (s *UserService) Create(ctx context.Context, principal domain.Principal, input UserCreateInput) (*domain.User, error) {
	if err := s.access.Authorize(principal, access.EntityUser, access.ActionCreate, nil); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(input.Role)})
	}

	email := normalizeEmail(input.Email)
	if _, err := s.repos().Users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	companyID, err := s.companyForRole(ctx, input.Role, optionalID(input.CompanyID), true)
	if err != nil {
		return nil, err
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
		Role:         input.Role,
		CompanyID:    companyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos().Users.Create(ctx, user); err != nil {
		return nil, repoError(err, "user", user.ID)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update applies a partial update.
func (s *UserService) Update(ctx context.Context, principal domain.Principal, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.repos().Users.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "user", id)
	}
	if err := s.access.Authorize(principal, access.EntityUser, access.ActionUpdate, *user); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = trimmed(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if existing, err := s.repos().Users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		user.Email = email
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(*input.Role)})
		}
		user.Role = *input.Role
	}
	if input.CompanyID != nil {
		user.CompanyID = optionalID(input.CompanyID)
	}
	companyID, err := s.companyForRole(ctx, user.Role, user.CompanyID, false)
	if err != nil {
		return nil, err
	}
	user.CompanyID = companyID

	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.now()
	if err := s.repos().Users.Update(ctx, user); err != nil {
		return nil, repoError(err, "user", id)
	}
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	user, err := s.repos().Users.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "user", id)
	}
	if err := s.access.Authorize(principal, access.EntityUser, access.ActionDelete, *user); err != nil {
		return err
	}
	if user.ID == principal.UserID {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	return repoError(s.repos().Users.Delete(ctx, id), "user", id)
}

// companyForRole returns the company reference to store for role. Staff never carry a
// company; a client's company must exist.
func (s *UserService) companyForRole(ctx context.Context, role domain.Role, companyID *string, required bool) (*string, error) {
	if role != domain.RoleClient {
		return nil, nil
	}
	if companyID == nil {
		if required {
			return nil, apperrors.NewValidationError("client accounts require a company", map[string]any{"company_id": "is required"})
		}
		return nil, nil
	}
	if _, err := s.repos().Companies.GetByID(ctx, *companyID); err != nil {
		return nil, repoError(err, "company", *companyID)
	}
	return companyID, nil
}
