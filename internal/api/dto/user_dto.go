package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserCreateRequest payload for admin-created accounts.
type UserCreateRequest struct {
	Name      string      `json:"name" validate:"required"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=6"`
	Role      domain.Role `json:"role" validate:"required,oneof=admin technician client"`
	CompanyID *string     `json:"company_id"`
}

// UserUpdateRequest payload; omitted fields are unchanged.
type UserUpdateRequest struct {
	Name      *string      `json:"name" validate:"omitempty,min=1"`
	Email     *string      `json:"email" validate:"omitempty,email"`
	Password  *string      `json:"password" validate:"omitempty,min=6"`
	Role      *domain.Role `json:"role" validate:"omitempty,oneof=admin technician client"`
	CompanyID *string      `json:"company_id"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CompanyID *string     `json:"company_id"`
	CreatedAt time.Time   `json:"created_at"`
}

// FromUser maps a user.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		CreatedAt: u.CreatedAt,
	}
}

// FromUsers maps a list of users.
func FromUsers(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, FromUser(&users[i]))
	}
	return out
}
