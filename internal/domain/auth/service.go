package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx"
	"bakerypos/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
	BcryptCost         int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour, // 7 days
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// Service provides authentication logic.
type Service struct {
	userRepo   UserRepository
	tokenRepo  TokenRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		now:        time.Now,
	}
}

// JWT exposes the token validator for the auth middleware.
func (s *Service) JWT() *JWTService {
	return s.jwtService
}

// HashPassword bcrypt-hashes a password with cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser creates a staff account.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := s.checkPasswordLength(req.Password, "password"); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(req.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := NewUser(req.Username, passwordHash, req.Role)
	user.FullName = req.FullName
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.Exists(ctx, user.Username)
		if err != nil {
			return fmt.Errorf("check username exists: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("user", "username", user.Username)
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role)

	return user, nil
}

// Login authenticates user and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	now := s.now()

	user, err := s.userRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(creds.Username)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if err := user.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", err)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin(now)
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"username", user.Username)

	return tokens, user, nil
}

// RefreshToken rotates a refresh token into a new token pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokenRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid(s.now()) {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(s.now()); err != nil {
		return nil, err
	}

	if err := s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed"); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.generateTokenPair(ctx, user)
}

// Logout revokes all user's refresh tokens.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout")
}

// GetUserByID retrieves a user.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int64, error) {
	return s.userRepo.List(ctx, filter)
}

// DeactivateUser disables the account and revokes its sessions.
func (s *Service) DeactivateUser(ctx context.Context, userID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}
		if err := s.userRepo.SetStatus(ctx, userID, entity.StatusInactive); err != nil {
			return fmt.Errorf("deactivate user: %w", err)
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "deactivated")
	})
}

// ChangePassword replaces the password of userID after checking the current
// one. Every refresh token of the user is revoked, so other sessions end.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, req ChangePasswordRequest) error {
	if err := s.checkPasswordLength(req.NewPassword, "newPassword"); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return apperror.NewValidation("current password is incorrect").
				WithDetail("field", "currentPassword")
		}

		hash, err := HashPassword(req.NewPassword, s.config.BcryptCost)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "password changed")
	})
}

// UpdateUser edits a staff account. An admin cannot change their own role.
// A password reset or role change revokes the user's refresh tokens.
func (s *Service) UpdateUser(ctx context.Context, actorID, userID id.ID, req UpdateUserRequest) (*User, error) {
	if req.Password != nil && *req.Password != "" {
		if err := s.checkPasswordLength(*req.Password, "password"); err != nil {
			return nil, err
		}
	}

	var user *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if req.Version != 0 && req.Version != user.Version {
			return apperror.NewConcurrentModification("user", userID)
		}

		revoke := false
		if req.Username != nil {
			username := strings.ToLower(strings.TrimSpace(*req.Username))
			if username != user.Username {
				exists, err := s.userRepo.Exists(ctx, username)
				if err != nil {
					return fmt.Errorf("check username exists: %w", err)
				}
				if exists {
					return apperror.NewDuplicate("user", "username", username)
				}
				user.Username = username
			}
		}
		if req.FullName != nil {
			user.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Role != nil && *req.Role != user.Role {
			if actorID == userID {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot change your own role")
			}
			user.Role = *req.Role
			revoke = true
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := HashPassword(*req.Password, s.config.BcryptCost)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
			revoke = true
		}

		if err := user.Validate(ctx); err != nil {
			return err
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		if revoke {
			return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "account changed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user updated", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// ToggleUserStatus flips a staff account between active and inactive and
// returns the new status. Reactivation clears any login lock; deactivation
// revokes the user's sessions. An admin cannot toggle their own account.
func (s *Service) ToggleUserStatus(ctx context.Context, actorID, userID id.ID) (entity.Status, error) {
	if actorID == userID {
		return "", apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot change the status of your own account")
	}

	var status entity.Status
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.Status == entity.StatusActive {
			status = entity.StatusInactive
			if err := s.userRepo.SetStatus(ctx, userID, status); err != nil {
				return fmt.Errorf("deactivate user: %w", err)
			}
			return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "deactivated")
		}

		status = entity.StatusActive
		user.Status = status
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "user status changed", "user_id", userID, "status", status)
	return status, nil
}

func (s *Service) checkPasswordLength(password, field string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", field)
	}
	return nil
}

// CleanupExpiredTokens removes refresh tokens that expired before now.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.CleanupExpiredTokens(ctx, s.now())
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
	}
	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
