package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trainerhub/portal/internal/common"
	"github.com/trainerhub/portal/internal/dbx"
	"github.com/trainerhub/portal/internal/logging"
	"github.com/trainerhub/portal/internal/server/auth"
	"github.com/trainerhub/portal/internal/server/config"
	"github.com/trainerhub/portal/internal/server/email"
	"github.com/trainerhub/portal/internal/server/models"
	"github.com/trainerhub/portal/internal/server/password"
	"github.com/trainerhub/portal/internal/server/repositories/repomanager"
)

// refreshTokenBytes gives 256 bits of entropy per opaque token.
const refreshTokenBytes = 32

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. ExpiresIn is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthService provides the authentication flow:
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate the refresh token and mint a new access token
//   - Logout: revoke the presented refresh token
//   - InitiatePasswordReset / ConfirmPasswordReset: code-based reset
//
// Policy decisions (see DESIGN.md): login requires an active account, the
// refresh token is issued together with the access token at login, and
// refresh tokens rotate on every use.
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	hasher          password.Hasher
	sender          email.Sender
	logger          logging.Logger
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	codeTTL         time.Duration
}

// NewAuthService constructs an AuthService from its collaborators and server
// config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher,
	sender email.Sender, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		hasher:          hasher,
		sender:          sender,
		logger:          logger,
		jwtSecret:       []byte(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		codeTTL:         cfg.OneTimeCodeTTL,
	}
}

// Login verifies the identifier (username or email) and password. Unknown
// user, wrong password, and inactive account all collapse into
// common.ErrorUnauthorized so responses cannot be used to enumerate
// accounts.
func (s *AuthService) Login(ctx context.Context, identifier, plaintext string) (*TokenPair, error) {
	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !user.Active {
		return nil, common.ErrorUnauthorized
	}

	if !s.hasher.Matches(plaintext, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "username", user.Username)
	return pair, nil
}

// Refresh validates the presented refresh token and rotates it: inside one
// transaction every live token of the user (the presented one included) is
// revoked and a fresh one inserted, alongside a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if rt.Revoked {
		return nil, common.ErrRefreshTokenRevoked
	}
	if rt.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading token owner: %w", err)
	}
	if !user.Active {
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Logout revokes the refresh token. An unknown token is treated as already
// logged out.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, refreshToken)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// RevokeAll revokes every live refresh token of the user.
func (s *AuthService) RevokeAll(ctx context.Context, user *models.User) error {
	if err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("error revoking user tokens: %w", err)
	}
	return nil
}

// InitiatePasswordReset issues (or overwrites) the user's one-time code and
// mails it. Returns common.ErrorNotFound when no account has the email.
func (s *AuthService) InitiatePasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	code, err := common.GenerateDigitCode()
	if err != nil {
		return common.ErrorInternal
	}

	err = s.repomanager.OneTimeCodes(s.db).Upsert(ctx, &models.OneTimeCode{
		Email:     emailAddr,
		Code:      code,
		ExpiresAt: time.Now().Add(s.codeTTL),
		UserID:    user.ID,
	})
	if err != nil {
		return fmt.Errorf("error storing reset code: %w", err)
	}

	if err := s.sender.SendPasswordResetEmail(ctx, emailAddr, code); err != nil {
		s.logger.Error(ctx, "reset email failed", "email", emailAddr, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset initiated", "email", emailAddr)
	return nil
}

// ConfirmPasswordReset consumes the code and swaps in the new password hash,
// atomically. Returns common.ErrInvalidCode or common.ErrCodeExpired on code
// failures.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, emailAddr, code, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.repomanager.OneTimeCodes(tx).Consume(ctx, emailAddr, code, time.Now())
		if err != nil {
			return err
		}
		return s.repomanager.Users(tx).UpdatePassword(ctx, userID, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidCode) || errors.Is(err, common.ErrCodeExpired) {
			return err
		}
		return fmt.Errorf("error resetting password: %w", err)
	}

	s.logger.Info(ctx, "password reset completed", "email", emailAddr)
	return nil
}

// --- helpers below ---

func (s *AuthService) lookupUser(ctx context.Context, identifier string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return repo.GetByEmail(ctx, identifier)
}

// issueTokenPair mints an access token and, within one transaction, revokes
// every live refresh token of the user before inserting the new one. This is
// what keeps at most one usable refresh token per user.
func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.Username, user.Roles, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)
		if err := repo.RevokeAllForUser(ctx, user.ID); err != nil {
			return err
		}
		return repo.Create(ctx, user.ID, refresh, time.Now().Add(s.refreshTokenTTL))
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}
