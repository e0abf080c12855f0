package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tatame/backend/internal/common"
	"github.com/tatame/backend/internal/dbx"
	"github.com/tatame/backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const credentialColumns = "id, value, type, owner_id, revoked, expired, issued_at, expires_at"

func (r *PostgresRepository) Save(ctx context.Context, cred *models.Credential) error {
	query :=
		`INSERT INTO credentials (id, value, type, owner_id, revoked, expired, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		cred.ID, cred.Value, cred.Type, cred.OwnerID, cred.Revoked, cred.Expired, cred.IssuedAt, cred.ExpiresAt)

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) SaveAll(ctx context.Context, creds []*models.Credential) error {
	for _, cred := range creds {
		if err := r.Save(ctx, cred); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) FindByValue(ctx context.Context, value string) (*models.Credential, error) {
	return r.findByValue(ctx, value, "")
}

func (r *PostgresRepository) FindByValueForUpdate(ctx context.Context, value string) (*models.Credential, error) {
	return r.findByValue(ctx, value, " FOR UPDATE")
}

func (r *PostgresRepository) findByValue(ctx context.Context, value string, lock string) (*models.Credential, error) {
	query :=
		`SELECT ` + credentialColumns + ` FROM credentials
		 WHERE value = $1` + lock

	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&cred.ID, &cred.Value, &cred.Type, &cred.OwnerID, &cred.Revoked, &cred.Expired, &cred.IssuedAt, &cred.ExpiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return cred, nil
}

func (r *PostgresRepository) FindActiveByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error) {
	query :=
		`SELECT ` + credentialColumns + ` FROM credentials
		 WHERE owner_id = $1 AND NOT revoked AND NOT expired
		 `

	return r.queryList(ctx, query, ownerID)
}

func (r *PostgresRepository) FindActiveByOwnerAndType(ctx context.Context, ownerID string, typ models.CredentialType) ([]*models.Credential, error) {
	query :=
		`SELECT ` + credentialColumns + ` FROM credentials
		 WHERE owner_id = $1 AND type = $2 AND NOT revoked AND NOT expired
		 `

	return r.queryList(ctx, query, ownerID, string(typ))
}

func (r *PostgresRepository) RevokeActiveByOwner(ctx context.Context, ownerID string, types ...models.CredentialType) error {
	query :=
		`UPDATE credentials SET revoked = TRUE, expired = TRUE
		 WHERE owner_id = $1 AND NOT revoked AND NOT expired`

	args := []any{ownerID}
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, typ := range types {
			args = append(args, string(typ))
			placeholders[i] = fmt.Sprintf("$%d", i+2)
		}
		query += " AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...any) ([]*models.Credential, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred := &models.Credential{}
		if err := rows.Scan(
			&cred.ID, &cred.Value, &cred.Type, &cred.OwnerID, &cred.Revoked, &cred.Expired, &cred.IssuedAt, &cred.ExpiresAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return creds, nil
}
