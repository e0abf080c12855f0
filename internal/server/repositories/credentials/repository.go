// Package credentials declares the persistence contract for issued bearer
// credentials. Records are append-only apart from revocation; nothing here
// contains lifecycle logic.
package credentials

import (
	"context"

	"github.com/tatame/backend/internal/server/models"
)

// Repository stores every issued credential. "Active" means the revoked and
// expired flags are both clear; the time-based deadline is the caller's
// concern.
type Repository interface {
	// Save persists a single credential record.
	Save(ctx context.Context, cred *models.Credential) error

	// SaveAll persists several records. Callers that need the writes to be
	// atomic run the repository over a transaction handle.
	SaveAll(ctx context.Context, creds []*models.Credential) error

	// FindByValue looks up a credential by its globally unique value.
	// Returns common.ErrorNotFound when absent.
	FindByValue(ctx context.Context, value string) (*models.Credential, error)

	// FindByValueForUpdate is FindByValue with a row lock. Callers that must
	// decide on a record and then write it run this inside a transaction so
	// no concurrent writer slips between the check and the write.
	FindByValueForUpdate(ctx context.Context, value string) (*models.Credential, error)

	// FindActiveByOwner returns all active credentials of the owner.
	FindActiveByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error)

	// FindActiveByOwnerAndType returns the owner's active credentials of one type.
	FindActiveByOwnerAndType(ctx context.Context, ownerID string, typ models.CredentialType) ([]*models.Credential, error)

	// RevokeActiveByOwner marks every active credential of the owner as
	// revoked and expired in one batch write, optionally filtered by type.
	RevokeActiveByOwner(ctx context.Context, ownerID string, types ...models.CredentialType) error
}
