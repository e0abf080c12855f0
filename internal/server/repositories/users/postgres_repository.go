package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const userColumns = "id, name, email, password_hash, role, active, phone, address, created_at"

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `

	return r.queryOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `

	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, name, email, password_hash, role, active, phone, address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		     name = EXCLUDED.name,
		     email = EXCLUDED.email,
		     password_hash = EXCLUDED.password_hash,
		     role = EXCLUDED.role,
		     active = EXCLUDED.active,
		     phone = EXCLUDED.phone,
		     address = EXCLUDED.address
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Active, user.Phone, user.Address)

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Active, &user.Phone, &user.Address, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}
