package auth

import (
	"context"
	"time"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByUsername retrieves user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update updates user data.
	Update(ctx context.Context, user *User) error

	// SetStatus flips the user status. Users are never removed.
	SetStatus(ctx context.Context, userID id.ID, status entity.Status) error

	// List retrieves users with filtering.
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)

	// Exists checks if username is taken.
	Exists(ctx context.Context, username string) (bool, error)
}

// TokenRepository defines token storage operations.
type TokenRepository interface {
	// SaveRefreshToken saves a refresh token.
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshToken retrieves refresh token by hash.
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// RevokeRefreshToken revokes a refresh token.
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error

	// RevokeAllUserTokens revokes all tokens for a user.
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error

	// CleanupExpiredTokens removes tokens expired before cutoff.
	CleanupExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
