package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tatame/backend/internal/common"
	"github.com/tatame/backend/internal/logging"
	"github.com/tatame/backend/internal/server/auth"
	"github.com/tatame/backend/internal/server/mail"
	"github.com/tatame/backend/internal/server/models"
	"github.com/tatame/backend/internal/server/repositories/repomanager"
	"github.com/tatame/backend/internal/server/security"
)

const bearerPrefix = "Bearer "

// AuthService orchestrates the authentication flows on top of the token
// lifecycle state machine. Every externally visible credential failure is
// common.ErrInvalidCredentials; the internal cause is only logged.
type AuthService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	tokens *TokenService
	signer *auth.Signer
	hasher security.PasswordHasher
	mailer mail.Dispatcher
	logger logging.Logger
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, tokens *TokenService, signer *auth.Signer, hasher security.PasswordHasher, mailer mail.Dispatcher, logger logging.Logger) *AuthService {
	return &AuthService{
		db:     db,
		repos:  repos,
		tokens: tokens,
		signer: signer,
		hasher: hasher,
		mailer: mailer,
		logger: logger.With("component", "auth"),
	}
}

// Login verifies the e-mail/password pair and issues a fresh session pair.
// Unknown e-mail, wrong password and inactive account all fail identically,
// so callers cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "login rejected", "cause", "unknown e-mail", "email", email)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error resolving user: %v", err)
	}

	if !user.Active {
		s.logger.Warn(ctx, "login rejected", "cause", common.ErrUserInactive, "user", user.ID)
		return nil, common.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Warn(ctx, "login rejected", "cause", "wrong password", "user", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	return s.tokens.IssueSessionPair(ctx, user)
}

// Refresh exchanges a refresh token for a new access token. Malformed,
// expired and revoked tokens collapse into ErrInvalidCredentials;
// ErrTypeMismatch passes through because presenting the wrong token kind is
// a caller bug, not a security event.
func (s *AuthService) Refresh(ctx context.Context, refreshValue string) (string, error) {
	accessValue, err := s.tokens.RotateAccess(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, common.ErrTypeMismatch) {
			return "", common.ErrTypeMismatch
		}
		s.logger.Warn(ctx, "refresh rejected", "cause", err)
		return "", common.ErrInvalidCredentials
	}

	return accessValue, nil
}

// Logout parses the Authorization header and revokes every credential of the
// owner of the presented token.
func (s *AuthService) Logout(ctx context.Context, bearerHeader string) error {
	value, ok := bearerValue(bearerHeader)
	if !ok {
		s.logger.Warn(ctx, "logout rejected", "cause", "missing or malformed bearer header")
		return common.ErrInvalidCredentials
	}

	if err := s.tokens.RevokeByValue(ctx, value); err != nil {
		s.logger.Warn(ctx, "logout rejected", "cause", err)
		return common.ErrInvalidCredentials
	}

	return nil
}

// RecoverPassword issues a single-use recovery code for the account and
// hands it to the mail dispatcher. An unknown e-mail surfaces as
// common.ErrorNotFound (and a 404), which reveals account existence; the
// behavior is kept as the product defined it.
func (s *AuthService) RecoverPassword(ctx context.Context, email string) error {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.tokens.IssueSingleUse(ctx, user, models.CredentialRecovery, s.tokens.RecoveryTTL())
	if err != nil {
		return err
	}

	return s.mailer.SendRecoveryCode(ctx, user, code)
}

// ValidateRecoveryCode checks a recovery code without consuming it, so the
// UI can confirm the code before asking for the new password. The code stays
// redeemable until ConfirmPasswordReset.
func (s *AuthService) ValidateRecoveryCode(ctx context.Context, email, code string) error {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn(ctx, "recovery validation rejected", "cause", "unknown e-mail", "email", email)
		return common.ErrInvalidCredentials
	}

	ownerID, err := s.tokens.CheckSingleUse(ctx, code, models.CredentialRecovery)
	if err != nil {
		s.logger.Warn(ctx, "recovery validation rejected", "cause", err)
		return common.ErrInvalidCredentials
	}
	if ownerID != user.ID {
		s.logger.Warn(ctx, "recovery validation rejected", "cause", "code belongs to another account")
		return common.ErrInvalidCredentials
	}

	return nil
}

// ConfirmPasswordReset consumes the recovery code and replaces the password
// hash. Consumption revokes every active recovery code of the owner, so
// nothing older stays redeemable.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn(ctx, "password reset rejected", "cause", "unknown e-mail", "email", email)
		return common.ErrInvalidCredentials
	}

	ownerID, err := s.tokens.ConsumeSingleUse(ctx, code, models.CredentialRecovery)
	if err != nil {
		s.logger.Warn(ctx, "password reset rejected", "cause", err)
		return common.ErrInvalidCredentials
	}
	if ownerID != user.ID {
		s.logger.Warn(ctx, "password reset rejected", "cause", "code belongs to another account")
		return common.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %v", err)
	}
	user.PasswordHash = hash

	if err := s.repos.Users(s.db).Save(ctx, user); err != nil {
		return fmt.Errorf("error saving user: %v", err)
	}

	s.logger.Info(ctx, "password reset", "user", user.ID)
	return nil
}

// SendActivation issues a single-use activation token for the account and
// hands it to the mail dispatcher. Called when an account is provisioned by
// the academy CRUD modules.
func (s *AuthService) SendActivation(ctx context.Context, email string) error {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.IssueSingleUse(ctx, user, models.CredentialActivation, s.tokens.ActivationTTL())
	if err != nil {
		return err
	}

	return s.mailer.SendActivation(ctx, user, token)
}

// ActivateAccount consumes an activation token, sets the first password and
// contact data, and marks the account active.
func (s *AuthService) ActivateAccount(ctx context.Context, token, password, phone, address string) error {
	ownerID, err := s.tokens.ConsumeSingleUse(ctx, token, models.CredentialActivation)
	if err != nil {
		s.logger.Warn(ctx, "activation rejected", "cause", err)
		return common.ErrInvalidCredentials
	}

	user, err := s.repos.Users(s.db).FindByID(ctx, ownerID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %v", err)
	}

	user.PasswordHash = hash
	user.Active = true
	user.Phone = phone
	user.Address = address

	if err := s.repos.Users(s.db).Save(ctx, user); err != nil {
		return fmt.Errorf("error saving user: %v", err)
	}

	s.logger.Info(ctx, "account activated", "user", user.ID)
	return nil
}

// Authenticate turns a bearer credential into the principal it belongs to.
// Signature and expiry come from the token itself; the store record must
// additionally be active so that logout and revocation take effect before
// the token's natural expiry.
func (s *AuthService) Authenticate(ctx context.Context, value string) (*models.User, error) {
	claims, err := s.signer.Verify(value)
	if err != nil {
		s.logger.Warn(ctx, "authentication rejected", "cause", err)
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.repos.Users(s.db).FindByEmail(ctx, claims.Subject)
	if err != nil {
		s.logger.Warn(ctx, "authentication rejected", "cause", "unknown subject", "subject", claims.Subject)
		return nil, common.ErrInvalidCredentials
	}

	rec, err := s.repos.Credentials(s.db).FindByValue(ctx, value)
	if err != nil || !rec.Usable(time.Now()) {
		s.logger.Warn(ctx, "authentication rejected", "cause", "no active record", "user", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// bearerValue extracts the credential from an "Authorization: Bearer <x>"
// header value.
func bearerValue(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	value := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return value, value != ""
}
