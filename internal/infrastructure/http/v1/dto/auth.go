package dto

import (
	"bakerypos/internal/core/entity"
	"bakerypos/internal/domain/auth"
)

// --- Request DTOs ---

// LoginRequest for staff login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Username: r.Username,
		Password: r.Password,
	}
}

// RefreshTokenRequest for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// CreateUserRequest for an admin creating a staff account.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"max=255"`
	Role     string `json:"role" binding:"required,oneof=admin cashier"`
}

// ToAuthRequest converts to domain request.
func (r *CreateUserRequest) ToAuthRequest() auth.CreateUserRequest {
	return auth.CreateUserRequest{
		Username: r.Username,
		Password: r.Password,
		FullName: r.FullName,
		Role:     r.Role,
	}
}

// ChangePasswordRequest for a user replacing their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,max=72"`
}

// ToAuthRequest converts to domain request.
func (r *ChangePasswordRequest) ToAuthRequest() auth.ChangePasswordRequest {
	return auth.ChangePasswordRequest{
		CurrentPassword: r.CurrentPassword,
		NewPassword:     r.NewPassword,
	}
}

// UpdateUserRequest for an admin editing a staff account.
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	FullName *string `json:"fullName" binding:"omitempty,max=255"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin cashier"`
	Password *string `json:"password" binding:"omitempty,max=72"`
	Version  int     `json:"version" binding:"min=0"`
}

// ToAuthRequest converts to domain request.
func (r *UpdateUserRequest) ToAuthRequest() auth.UpdateUserRequest {
	return auth.UpdateUserRequest{
		Username: r.Username,
		FullName: r.FullName,
		Role:     r.Role,
		Password: r.Password,
		Version:  r.Version,
	}
}

// UserListQuery filters the staff list.
type UserListQuery struct {
	PageQuery
	Search          string `form:"search"`
	Role            string `form:"role" binding:"omitempty,oneof=admin cashier"`
	IncludeInactive bool   `form:"includeInactive"`
}

// --- Response DTOs ---

// UserStatusResponse is returned by the status toggle.
type UserStatusResponse struct {
	Status entity.Status `json:"status"`
}

// LoginResponse is the token pair plus the logged-in user.
type LoginResponse struct {
	*auth.TokenPair
	User *auth.User `json:"user"`
}
