package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatame/backend/internal/common"
	"github.com/tatame/backend/internal/server/models"
)

func newRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, func() { db.Close() }
}

func sampleCredential() *models.Credential {
	now := time.Now()
	return &models.Credential{
		ID:        "11111111-1111-1111-1111-111111111111",
		Value:     "opaque-token",
		Type:      models.CredentialAccess,
		OwnerID:   "22222222-2222-2222-2222-222222222222",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestSave(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	cred := sampleCredential()

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(cred.ID, cred.Value, cred.Type, cred.OwnerID, cred.Revoked, cred.Expired, cred.IssuedAt, cred.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), cred))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByValue_Found(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	cred := sampleCredential()
	rows := sqlmock.NewRows([]string{"id", "value", "type", "owner_id", "revoked", "expired", "issued_at", "expires_at"}).
		AddRow(cred.ID, cred.Value, string(cred.Type), cred.OwnerID, cred.Revoked, cred.Expired, cred.IssuedAt, cred.ExpiresAt)

	mock.ExpectQuery("SELECT (.+) FROM credentials").
		WithArgs(cred.Value).
		WillReturnRows(rows)

	got, err := repo.FindByValue(context.Background(), cred.Value)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, got.ID)
	assert.Equal(t, models.CredentialAccess, got.Type)
}

func TestFindByValueForUpdate_LocksRow(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	cred := sampleCredential()
	rows := sqlmock.NewRows([]string{"id", "value", "type", "owner_id", "revoked", "expired", "issued_at", "expires_at"}).
		AddRow(cred.ID, cred.Value, string(cred.Type), cred.OwnerID, cred.Revoked, cred.Expired, cred.IssuedAt, cred.ExpiresAt)

	mock.ExpectQuery("(?s)SELECT (.+) FROM credentials.+FOR UPDATE").
		WithArgs(cred.Value).
		WillReturnRows(rows)

	got, err := repo.FindByValueForUpdate(context.Background(), cred.Value)
	require.NoError(t, err)
	assert.Equal(t, cred.OwnerID, got.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByValue_NotFound(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM credentials").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "value", "type", "owner_id", "revoked", "expired", "issued_at", "expires_at"}))

	_, err := repo.FindByValue(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindActiveByOwnerAndType(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	cred := sampleCredential()
	rows := sqlmock.NewRows([]string{"id", "value", "type", "owner_id", "revoked", "expired", "issued_at", "expires_at"}).
		AddRow(cred.ID, cred.Value, string(cred.Type), cred.OwnerID, false, false, cred.IssuedAt, cred.ExpiresAt)

	mock.ExpectQuery("SELECT (.+) FROM credentials").
		WithArgs(cred.OwnerID, string(models.CredentialAccess)).
		WillReturnRows(rows)

	got, err := repo.FindActiveByOwnerAndType(context.Background(), cred.OwnerID, models.CredentialAccess)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cred.Value, got[0].Value)
}

func TestRevokeActiveByOwner_AllTypes(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	mock.ExpectExec("UPDATE credentials SET revoked = TRUE, expired = TRUE").
		WithArgs("owner-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeActiveByOwner(context.Background(), "owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeActiveByOwner_FilteredByType(t *testing.T) {
	repo, mock, done := newRepo(t)
	defer done()

	mock.ExpectExec("UPDATE credentials SET revoked = TRUE, expired = TRUE").
		WithArgs("owner-1", string(models.CredentialAccess), string(models.CredentialRefresh)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.RevokeActiveByOwner(context.Background(), "owner-1", models.CredentialAccess, models.CredentialRefresh)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
