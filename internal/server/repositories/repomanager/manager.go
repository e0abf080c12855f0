// Package repomanager builds repositories over a shared database handle so
// services can run them against either *sql.DB or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/tatame/backend/internal/dbx"
	"github.com/tatame/backend/internal/server/repositories/credentials"
	"github.com/tatame/backend/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
