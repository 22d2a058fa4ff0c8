package auth_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/infrastructure/storage/postgres"
)

// TokenRepo implements auth.TokenRepository. Only token hashes are stored.
type TokenRepo struct {
	txManager *postgres.TxManager
}

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txManager *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txManager: txManager}
}

// SaveRefreshToken saves a refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves refresh token by hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, revoked_reason
		FROM refresh_tokens WHERE token_hash = $1
	`

	var token auth.RefreshToken
	err := q.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt,
		&token.CreatedAt, &token.RevokedAt, &token.RevokedReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("token", "")
	}
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}

	return &token, nil
}

// RevokeRefreshToken revokes a refresh token.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	q := r.txManager.GetQuerier(ctx)

	query := `UPDATE refresh_tokens SET revoked_at = NOW(), revoked_reason = $2 WHERE id = $1 AND revoked_at IS NULL`
	if _, err := q.Exec(ctx, query, tokenID, reason); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

// RevokeAllUserTokens revokes all tokens for a user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	q := r.txManager.GetQuerier(ctx)

	query := `UPDATE refresh_tokens SET revoked_at = NOW(), revoked_reason = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := q.Exec(ctx, query, userID, reason); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	return nil
}

// CleanupExpiredTokens removes tokens that expired or were revoked before cutoff.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked_at < $1`
	result, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup tokens: %w", err)
	}

	return result.RowsAffected(), nil
}

// Ensure interface compliance
var _ auth.TokenRepository = (*TokenRepo)(nil)
