// Package auth provides staff authentication and role checks.
package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
)

var usernameRE = regexp.MustCompile(`^[a-z0-9._-]{3,50}$`)

// IsValidRole reports whether role is known.
func IsValidRole(role string) bool {
	return role == appctx.RoleAdmin || role == appctx.RoleCashier
}

// User is a staff member who can sign in to the till or back office.
type User struct {
	ID                  id.ID         `db:"id" json:"id"`
	Username            string        `db:"username" json:"username"`
	PasswordHash        string        `db:"password_hash" json:"-"`
	FullName            string        `db:"full_name" json:"fullName,omitempty"`
	Role                string        `db:"role" json:"role"`
	Status              entity.Status `db:"status" json:"status"`
	LastLoginAt         *time.Time    `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int           `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time    `db:"locked_until" json:"-"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
	Version             int           `db:"version" json:"version"`
}

// NewUser creates a new active user.
func NewUser(username, passwordHash, role string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		PasswordHash: passwordHash,
		Role:         role,
		Status:       entity.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(_ context.Context) error {
	if !usernameRE.MatchString(u.Username) {
		return apperror.NewValidation("username must be 3-50 lowercase letters, digits or . _ -").
			WithDetail("field", "username")
	}
	if !IsValidRole(u.Role) {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", u.Role)
	}
	return nil
}

// IsLocked returns true if account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin(now time.Time) error {
	if u.Status != entity.StatusActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter and locks the account
// once maxAttempts is reached.
func (u *User) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := now.Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}

// Context is the request-scoped view of the user.
func (u *User) Context() *appctx.UserContext {
	return &appctx.UserContext{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
	}
}

// RefreshToken represents a refresh token for JWT refresh.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	UserID        id.ID      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason *string    `db:"revoked_reason"`
}

// IsValid checks if refresh token is valid at now.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest is an admin creating a staff account.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
}

// ChangePasswordRequest is a signed-in user replacing their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateUserRequest is an admin editing a staff account. Nil fields are
// left unchanged; a non-empty Password resets the password.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"fullName,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
	Version  int     `json:"version"`
}

// UserFilter for listing users.
type UserFilter struct {
	Search          string
	Role            string
	IncludeInactive bool
	Limit           int
	Offset          int
}
