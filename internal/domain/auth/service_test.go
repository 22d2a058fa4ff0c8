package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx/txtest"
)

type memUsers struct {
	byID map[id.ID]*User
}

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (m *memUsers) Update(_ context.Context, u *User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) SetStatus(_ context.Context, userID id.ID, status entity.Status) error {
	m.byID[userID].Status = status
	return nil
}

func (m *memUsers) List(context.Context, UserFilter) ([]User, int64, error) {
	return nil, 0, nil
}

func (m *memUsers) Exists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

type memTokens struct {
	byHash map[string]*RefreshToken
}

func (m *memTokens) SaveRefreshToken(_ context.Context, t *RefreshToken) error {
	m.byHash[t.TokenHash] = t
	return nil
}

func (m *memTokens) GetRefreshToken(_ context.Context, hash string) (*RefreshToken, error) {
	t, ok := m.byHash[hash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", hash)
	}
	return t, nil
}

func (m *memTokens) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	for _, t := range m.byHash {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = &reason
		}
	}
	return nil
}

func (m *memTokens) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	for _, t := range m.byHash {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = &reason
		}
	}
	return nil
}

func (m *memTokens) CleanupExpiredTokens(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for k, t := range m.byHash {
		if t.ExpiresAt.Before(cutoff) {
			delete(m.byHash, k)
			n++
		}
	}
	return n, nil
}

func newService(t *testing.T) (*Service, *memUsers) {
	t.Helper()
	users := &memUsers{byID: map[id.ID]*User{}}
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	svc := NewService(users, &memTokens{byHash: map[string]*RefreshToken{}}, txtest.New(),
		NewJWTService(DefaultJWTConfig("test-secret")), cfg)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "Anna.K",
		Password: "correct-horse",
		Role:     appctx.RoleCashier,
	})
	require.NoError(t, err)
	return svc, users
}

func TestCreateUser_Rejections(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "anna.k", Password: "another-pass", Role: appctx.RoleAdmin})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "bob", Password: "short", Role: appctx.RoleAdmin})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "bob", Password: "long-enough", Role: "baker"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLogin_IssuesValidToken(t *testing.T) {
	svc, _ := newService(t)

	tokens, user, err := svc.Login(context.Background(), Credentials{Username: "anna.k", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotNil(t, user.LastLoginAt)

	uc, err := svc.JWT().ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, appctx.RoleCashier, uc.Role)

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	_, err = other.ValidateToken(tokens.AccessToken)
	assert.Error(t, err)
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for range DefaultServiceConfig().MaxLoginAttempts {
		_, _, err := svc.Login(ctx, Credentials{Username: "anna.k", Password: "wrong"})
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, _, err := svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, _, err = svc.Login(ctx, Credentials{Username: "nobody", Password: "x"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestRefreshToken_Rotates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tokens, _, err := svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	require.NoError(t, err)

	next, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, next.RefreshToken)

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized), "old token is revoked")
}

func TestDeactivateUser(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	tokens, user, err := svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(ctx, user.ID))
	assert.Equal(t, entity.StatusInactive, users.byID[user.ID].Status)

	_, _, err = svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tokens, user, err := svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "battery-staple"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "correct-horse", NewPassword: "short"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	}))

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized), "other sessions end")

	_, _, err = svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	_, _, err = svc.Login(ctx, Credentials{Username: "anna.k", Password: "battery-staple"})
	assert.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, CreateUserRequest{Username: "boss", Password: "long-enough", Role: appctx.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "bob", Password: "long-enough", Role: appctx.RoleCashier})
	require.NoError(t, err)

	tokens, anna, err := svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	require.NoError(t, err)

	str := func(s string) *string { return &s }

	t.Run("username taken", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, admin.ID, anna.ID, UpdateUserRequest{Username: str("Bob")})
		assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	})

	t.Run("stale version", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, admin.ID, anna.ID, UpdateUserRequest{FullName: str("Anna"), Version: 99})
		assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentModification))
	})

	t.Run("own role", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, admin.ID, admin.ID, UpdateUserRequest{Role: str(appctx.RoleCashier)})
		assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
	})

	t.Run("promote and rename", func(t *testing.T) {
		updated, err := svc.UpdateUser(ctx, admin.ID, anna.ID, UpdateUserRequest{
			Username: str(" Anna.B "),
			FullName: str("Anna Baker"),
			Role:     str(appctx.RoleAdmin),
		})
		require.NoError(t, err)
		assert.Equal(t, "anna.b", updated.Username)
		assert.Equal(t, "Anna Baker", updated.FullName)
		assert.Equal(t, appctx.RoleAdmin, updated.Role)

		_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized), "role change ends sessions")
	})
}

func TestToggleUserStatus(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, CreateUserRequest{Username: "boss", Password: "long-enough", Role: appctx.RoleAdmin})
	require.NoError(t, err)
	anna, err := users.GetByUsername(ctx, "anna.k")
	require.NoError(t, err)

	_, err = svc.ToggleUserStatus(ctx, admin.ID, admin.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	status, err := svc.ToggleUserStatus(ctx, admin.ID, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInactive, status)
	_, _, err = svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	locked := time.Now().Add(time.Hour)
	users.byID[anna.ID].LockedUntil = &locked

	status, err = svc.ToggleUserStatus(ctx, admin.ID, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, status)
	assert.Nil(t, users.byID[anna.ID].LockedUntil)
	_, _, err = svc.Login(ctx, Credentials{Username: "anna.k", Password: "correct-horse"})
	assert.NoError(t, err)

	_, err = svc.ToggleUserStatus(ctx, admin.ID, id.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
