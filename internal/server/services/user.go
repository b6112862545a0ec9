// Package services contains server-side business logic. This file implements
// UserService: registration, login, issuing/refreshing JWTs plus
// server-stored refresh tokens, and the password-reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/server/auth"
	"github.com/cloudcapsule/cloudcapsule/internal/server/config"
	"github.com/cloudcapsule/cloudcapsule/internal/server/mailer"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create accounts
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - RequestPasswordReset / ResetPassword: the reset-token flow
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mailer                       mailer.Mailer
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		mailer:                       ml,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
	}
}

// Register creates a new account with a bcrypt-hashed password. Duplicate
// username or email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the email/password pair and, on success, returns a new
// TokenPair. Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// GetByID returns the account record for the authenticated identity.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByID(ctx, id)
}

// RequestPasswordReset stores a fresh reset token for the account and hands
// the notification to the mail collaborator. An unknown email is NOT an
// error, so callers cannot probe which addresses exist.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	expires := time.Now().Add(s.resetTokenValidityDuration)
	if err := repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return common.ErrorInternal
	}

	body := fmt.Sprintf("Hello %s, use this token to reset your password: %s (valid until %s)",
		user.Username, token, expires.UTC().Format(time.RFC3339))
	return s.mailer.Send(ctx, user.Email, "Reset your Cloud Capsule password", body)
}

// ResetPassword consumes a pending reset token and replaces the account
// password. The token is cleared together with the password update.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: token and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		return common.ErrResetTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}
	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
