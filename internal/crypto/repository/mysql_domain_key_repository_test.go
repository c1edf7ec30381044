package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
)

func TestMySQLDomainKeyRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLDomainKeyRepository(db)
	key := &cryptoDomain.DomainKey{
		Domain:       "contact-secure-data",
		EncryptedKey: []byte("wrapped-key-material"),
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO domain_keys").
		WithArgs(key.Domain, key.EncryptedKey, key.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), key)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDomainKeyRepository_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLDomainKeyRepository(db)
	key := &cryptoDomain.DomainKey{
		Domain:       "contact-secure-data",
		EncryptedKey: []byte("wrapped-key-material"),
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO domain_keys").
		WithArgs(key.Domain, key.EncryptedKey, key.CreatedAt).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = repo.Create(context.Background(), key)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestMySQLDomainKeyRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLDomainKeyRepository(db)
	createdAt := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"domain", "encrypted_key", "created_at"}).
		AddRow("contact-secure-data", []byte("wrapped-key-material"), createdAt)

	mock.ExpectQuery("SELECT domain, encrypted_key, created_at").
		WithArgs("contact-secure-data").
		WillReturnRows(rows)

	key, err := repo.Get(context.Background(), "contact-secure-data")
	require.NoError(t, err)
	assert.Equal(t, "contact-secure-data", key.Domain)
	assert.Equal(t, []byte("wrapped-key-material"), key.EncryptedKey)
}

func TestMySQLDomainKeyRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLDomainKeyRepository(db)

	mock.ExpectQuery("SELECT domain, encrypted_key, created_at").
		WithArgs("missing-domain").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "encrypted_key", "created_at"}))

	_, err = repo.Get(context.Background(), "missing-domain")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
