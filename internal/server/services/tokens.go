// Package services contains the server-side business logic of the credential
// subsystem: the token lifecycle state machine and the authentication
// service orchestrating login, refresh, logout, recovery and activation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tatame/backend/internal/common"
	"github.com/tatame/backend/internal/dbx"
	"github.com/tatame/backend/internal/logging"
	"github.com/tatame/backend/internal/server/auth"
	"github.com/tatame/backend/internal/server/config"
	"github.com/tatame/backend/internal/server/models"
	"github.com/tatame/backend/internal/server/repositories/repomanager"
	"github.com/tatame/backend/internal/server/security"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService is the credential lifecycle state machine. Per (owner, type)
// a record moves NONE -> ACTIVE -> {REVOKED | EXPIRED}; both end states are
// terminal. Every revoke-then-issue sequence runs inside one transaction so
// a concurrent reader never sees zero or duplicate active credentials of a
// type for the same owner.
type TokenService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	signer *auth.Signer
	logger logging.Logger

	accessTTL     time.Duration
	refreshTTL    time.Duration
	activationTTL time.Duration
	recoveryTTL   time.Duration
}

// NewTokenService constructs a TokenService from server config.
func NewTokenService(db *sql.DB, repos repomanager.RepositoryManager, signer *auth.Signer, logger logging.Logger, cfg *config.Config) *TokenService {
	return &TokenService{
		db:            db,
		repos:         repos,
		signer:        signer,
		logger:        logger.With("component", "tokens"),
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
		activationTTL: cfg.ActivationTokenValidityDuration,
		recoveryTTL:   cfg.RecoveryCodeValidityDuration,
	}
}

// ActivationTTL returns the configured lifetime for activation tokens.
func (s *TokenService) ActivationTTL() time.Duration { return s.activationTTL }

// RecoveryTTL returns the configured lifetime for recovery codes.
func (s *TokenService) RecoveryTTL() time.Duration { return s.recoveryTTL }

// generator is the per-type value-generation strategy: signed token or short
// numeric code. Keeping the table in one place keeps issuance exhaustive
// over credential types.
type generator func(s *TokenService, id string, user *models.User, typ models.CredentialType, ttl time.Duration) (string, error)

// signedToken carries the record id into the token as the jti claim, so the
// value stays globally unique even when the same user gets two credentials
// of the same type within one second.
func signedToken(s *TokenService, id string, user *models.User, typ models.CredentialType, ttl time.Duration) (string, error) {
	return s.signer.Issue(id, user.Email, user.Role, typ, ttl)
}

func numericCode(s *TokenService, _ string, _ *models.User, _ models.CredentialType, _ time.Duration) (string, error) {
	return security.GenerateNumericCode(security.RecoveryCodeLength)
}

var generators = map[models.CredentialType]generator{
	models.CredentialAccess:     signedToken,
	models.CredentialRefresh:    signedToken,
	models.CredentialActivation: signedToken,
	models.CredentialRecovery:   numericCode,
}

func (s *TokenService) mint(user *models.User, typ models.CredentialType, ttl time.Duration) (*models.Credential, error) {
	gen, ok := generators[typ]
	if !ok {
		return nil, fmt.Errorf("no generation strategy for type %s", typ)
	}

	id := uuid.NewString()
	value, err := gen(s, id, user, typ, ttl)
	if err != nil {
		return nil, fmt.Errorf("error generating credential value: %v", err)
	}

	now := time.Now()
	return &models.Credential{
		ID:        id,
		Value:     value,
		Type:      typ,
		OwnerID:   user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IssueSessionPair revokes every active ACCESS and REFRESH credential of the
// owner and persists one fresh pair, all in a single transaction. Login
// therefore establishes exactly one live session per user; concurrent logins
// race safely and the last writer wins.
func (s *TokenService) IssueSessionPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.mint(user, models.CredentialAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.mint(user, models.CredentialRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repos.Credentials(tx)
		if err := creds.RevokeActiveByOwner(ctx, user.ID, models.CredentialAccess, models.CredentialRefresh); err != nil {
			return err
		}
		return creds.SaveAll(ctx, []*models.Credential{access, refresh})
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access.Value, RefreshToken: refresh.Value}, nil
}

// RotateAccess exchanges a refresh credential for a fresh access credential.
// The refresh credential itself stays active; it dies only at its own expiry
// or at logout. The whole exchange runs in one transaction with the refresh
// row locked, so a rotate racing a logout either sees the revocation and
// fails, or finishes first and the logout then kills the new access token
// too.
func (s *TokenService) RotateAccess(ctx context.Context, refreshValue string) (string, error) {
	claims, err := s.signer.Verify(refreshValue)
	if err != nil {
		return "", err
	}

	var accessValue string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repos.Credentials(tx)

		rec, err := creds.FindByValueForUpdate(ctx, refreshValue)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRevokedOrUnknown
			}
			return err
		}
		if rec.Type != models.CredentialRefresh {
			return common.ErrTypeMismatch
		}
		if !rec.Usable(time.Now()) {
			return common.ErrRevokedOrUnknown
		}

		owner := &models.User{ID: rec.OwnerID, Email: claims.Subject, Role: claims.Role}
		access, err := s.mint(owner, models.CredentialAccess, s.accessTTL)
		if err != nil {
			return err
		}

		if err := creds.RevokeActiveByOwner(ctx, rec.OwnerID, models.CredentialAccess); err != nil {
			return err
		}
		if err := creds.Save(ctx, access); err != nil {
			return err
		}

		accessValue = access.Value
		return nil
	}); err != nil {
		return "", err
	}

	return accessValue, nil
}

// RevokeAllForOwner marks every active credential of the owner as revoked
// and expired, optionally filtered by type. A revoked record never returns
// to ACTIVE.
func (s *TokenService) RevokeAllForOwner(ctx context.Context, ownerID string, types ...models.CredentialType) error {
	return s.repos.Credentials(s.db).RevokeActiveByOwner(ctx, ownerID, types...)
}

// RevokeByValue resolves the owner of the given credential and revokes every
// active credential they hold. Used by logout, which only has the access
// token in hand.
func (s *TokenService) RevokeByValue(ctx context.Context, value string) error {
	rec, err := s.repos.Credentials(s.db).FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrRevokedOrUnknown
		}
		return err
	}

	return s.RevokeAllForOwner(ctx, rec.OwnerID)
}

// IssueSingleUse issues a single-use credential (ACTIVATION or RECOVERY),
// superseding any previously active credential of the same type for the
// owner: the newest wins, older ones die in the same transaction.
func (s *TokenService) IssueSingleUse(ctx context.Context, user *models.User, typ models.CredentialType, ttl time.Duration) (string, error) {
	if typ != models.CredentialActivation && typ != models.CredentialRecovery {
		return "", fmt.Errorf("type %s is not single-use", typ)
	}

	cred, err := s.mint(user, typ, ttl)
	if err != nil {
		return "", err
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repos.Credentials(tx)
		if err := creds.RevokeActiveByOwner(ctx, user.ID, typ); err != nil {
			return err
		}
		return creds.Save(ctx, cred)
	}); err != nil {
		return "", err
	}

	return cred.Value, nil
}

// ConsumeSingleUse redeems a single-use credential and returns its owner.
// The validity check and the revocation run in one transaction with the row
// locked, so two concurrent redemptions of the same value serialize: one
// wins, the other sees the revoked record and fails with ErrRevokedOrUnknown.
func (s *TokenService) ConsumeSingleUse(ctx context.Context, value string, typ models.CredentialType) (string, error) {
	var ownerID string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repos.Credentials(tx)

		rec, err := creds.FindByValueForUpdate(ctx, value)
		if err := vetSingleUse(rec, err, typ); err != nil {
			return err
		}

		ownerID = rec.OwnerID
		return creds.RevokeActiveByOwner(ctx, rec.OwnerID, typ)
	}); err != nil {
		return "", err
	}

	return ownerID, nil
}

// CheckSingleUse validates a single-use credential without consuming it.
// The recovery flow's separate "validate" step needs this: the code stays
// redeemable until the final confirm. The replay window between validate and
// confirm is a known property of that flow, not closed here.
func (s *TokenService) CheckSingleUse(ctx context.Context, value string, typ models.CredentialType) (string, error) {
	rec, err := s.repos.Credentials(s.db).FindByValue(ctx, value)
	if err := vetSingleUse(rec, err, typ); err != nil {
		return "", err
	}
	return rec.OwnerID, nil
}

// vetSingleUse collapses a failed lookup, a wrong type and a dead record
// into ErrRevokedOrUnknown on purpose: single-use redemption leaks nothing
// about why it failed.
func vetSingleUse(rec *models.Credential, err error, typ models.CredentialType) error {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrRevokedOrUnknown
		}
		return err
	}
	if rec.Type != typ || !rec.Usable(time.Now()) {
		return common.ErrRevokedOrUnknown
	}
	return nil
}
