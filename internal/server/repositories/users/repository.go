// Package users is the persistence gateway for principals. Full profile
// management lives in the academy CRUD modules; the credential subsystem only
// needs lookup by e-mail/id and saving auth-relevant fields.
package users

import (
	"context"

	"github.com/tatame/backend/internal/server/models"
)

type Repository interface {
	// FindByEmail returns the principal with the given e-mail, or
	// common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the principal with the given id, or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// Save upserts the principal by id.
	Save(ctx context.Context, user *models.User) error
}
