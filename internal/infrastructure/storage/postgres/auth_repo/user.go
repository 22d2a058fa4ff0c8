// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const userColumns = `id, username, password_hash, full_name, role, status,
	last_login_at, failed_login_attempts, locked_until, created_at, updated_at, version`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

func scanUser(row pgx.Row, user *auth.User) error {
	return row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Role, &user.Status,
		&user.LastLoginAt, &user.FailedLoginAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			id, username, password_hash, full_name, role, status,
			failed_login_attempts, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.FullName, user.Role, user.Status,
		user.FailedLoginAttempts, user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("user", "username", user.Username).WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any, key string) (*auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	var user auth.User
	err := scanUser(q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg), &user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves user by ID regardless of status.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, "id = $1", userID, userID.String())
}

// GetByUsername retrieves user by username. Usernames are stored lowercased.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, "username = $1", username, username)
}

// Update updates user data under optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		UPDATE users SET
			password_hash = $2,
			full_name = $3,
			role = $4,
			status = $5,
			last_login_at = $6,
			failed_login_attempts = $7,
			locked_until = $8,
			username = $10,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND version = $9
	`

	result, err := q.Exec(ctx, query,
		user.ID, user.PasswordHash, user.FullName, user.Role, user.Status,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
		user.Version, user.Username,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("user", "username", user.Username).WithCause(err)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}

	user.Version++
	return nil
}

// SetStatus flips the user status.
func (r *UserRepo) SetStatus(ctx context.Context, userID id.ID, status entity.Status) error {
	q := r.txManager.GetQuerier(ctx)

	query := `UPDATE users SET status = $2, updated_at = NOW(), version = version + 1 WHERE id = $1`
	result, err := q.Exec(ctx, query, userID, status)
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}

// listWhere renders the filter as a WHERE clause with its args.
func listWhere(filter auth.UserFilter) (string, []any) {
	where := " WHERE 1 = 1"
	var args []any
	argIdx := 1

	if !filter.IncludeInactive {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, entity.StatusActive)
		argIdx++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (username ILIKE $%d OR full_name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, filter.Role)
	}

	return where, args
}

// List retrieves users with filtering.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, int64, error) {
	q := r.txManager.GetQuerier(ctx)
	where, args := listWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := "SELECT " + userColumns + " FROM users" + where + " ORDER BY username ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []auth.User{}
	for rows.Next() {
		var user auth.User
		if err := scanUser(rows, &user); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

// Exists checks if username is taken.
func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

// Ensure interface compliance
var _ auth.UserRepository = (*UserRepo)(nil)
