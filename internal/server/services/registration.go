// Package services contains the server-side business logic: the registration
// flow, the authentication flow, and the background sweep of expired rows.
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
	"github.com/trainerhub/portal/internal/server/config"
	"github.com/trainerhub/portal/internal/server/email"
	"github.com/trainerhub/portal/internal/server/models"
	"github.com/trainerhub/portal/internal/server/password"
	"github.com/trainerhub/portal/internal/server/repositories/repomanager"
)

// RegistrationRequest is the input for initiating a registration.
type RegistrationRequest struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// RegistrationService drives the email-verified signup flow:
// Initiate creates an inactive account and mails a 6-digit code,
// Verify consumes the code and activates the account.
type RegistrationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      password.Hasher
	sender      email.Sender
	logger      logging.Logger
	codeTTL     time.Duration
}

// NewRegistrationService constructs a RegistrationService from its
// collaborators and server config.
func NewRegistrationService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher,
	sender email.Sender, logger logging.Logger, cfg *config.Config) *RegistrationService {
	return &RegistrationService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		sender:      sender,
		logger:      logger,
		codeTTL:     cfg.OneTimeCodeTTL,
	}
}

// Initiate creates an inactive user with a hashed password, stores a one-time
// code bound to the user, and sends the verification email. A duplicate
// username or email yields common.ErrorConflict. When the email send fails
// the error surfaces as common.ErrorInternal but the user row and code stay
// persisted; the user can still verify once they obtain the code.
func (s *RegistrationService) Initiate(ctx context.Context, req RegistrationRequest) error {
	usersRepo := s.repomanager.Users(s.db)

	if _, err := usersRepo.GetByUsername(ctx, req.Username); err == nil {
		return common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error checking username: %w", err)
	}

	if _, err := usersRepo.GetByEmail(ctx, req.Email); err == nil {
		return common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error checking email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return common.ErrorInternal
	}

	code, err := common.GenerateDigitCode()
	if err != nil {
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			FullName:     req.FullName,
			Roles:        []string{req.Role},
			Active:       false,
		}
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}

		return s.repomanager.OneTimeCodes(tx).Upsert(ctx, &models.OneTimeCode{
			Email:     req.Email,
			Code:      code,
			ExpiresAt: time.Now().Add(s.codeTTL),
			UserID:    created.ID,
		})
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return common.ErrorConflict
		}
		return fmt.Errorf("error creating registration: %w", err)
	}

	if err := s.sender.SendVerificationEmail(ctx, req.Email, code); err != nil {
		s.logger.Error(ctx, "verification email failed", "email", req.Email, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "registration initiated", "email", req.Email)
	return nil
}

// Verify consumes the one-time code for the email and activates the linked
// user, atomically. Returns common.ErrInvalidCode or common.ErrCodeExpired
// on code failures.
func (s *RegistrationService) Verify(ctx context.Context, emailAddr, code string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.repomanager.OneTimeCodes(tx).Consume(ctx, emailAddr, code, time.Now())
		if err != nil {
			return err
		}
		return s.repomanager.Users(tx).Activate(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidCode) || errors.Is(err, common.ErrCodeExpired) {
			return err
		}
		return fmt.Errorf("error completing registration: %w", err)
	}

	s.logger.Info(ctx, "registration verified", "email", emailAddr)
	return nil
}
