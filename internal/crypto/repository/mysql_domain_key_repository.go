package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	"github.com/fieldvault/fieldvault/internal/database"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
)

// MySQLDomainKeyRepository implements domain key persistence for MySQL.
//
// Database schema requirements:
//   - domain: VARCHAR(255) PRIMARY KEY
//   - encrypted_key: BLOB (KMS-wrapped key material)
//   - created_at: TIMESTAMP
type MySQLDomainKeyRepository struct {
	db *sql.DB
}

// NewMySQLDomainKeyRepository creates a new MySQLDomainKeyRepository.
func NewMySQLDomainKeyRepository(db *sql.DB) *MySQLDomainKeyRepository {
	return &MySQLDomainKeyRepository{db: db}
}

// Create inserts a new domain key.
//
// Returns apperrors.ErrConflict if the domain already has a key.
func (m *MySQLDomainKeyRepository) Create(ctx context.Context, key *cryptoDomain.DomainKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO domain_keys (domain, encrypted_key, created_at)
			  VALUES (?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, key.Domain, key.EncryptedKey, key.CreatedAt)
	if err != nil {
		// MySQL error number 1062 is a duplicate entry
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create domain key")
	}
	return nil
}

// Get retrieves the key for an encryption domain.
//
// Returns apperrors.ErrNotFound if the domain has no key configured.
func (m *MySQLDomainKeyRepository) Get(ctx context.Context, domain string) (*cryptoDomain.DomainKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT domain, encrypted_key, created_at
			  FROM domain_keys
			  WHERE domain = ?`

	var key cryptoDomain.DomainKey
	err := querier.QueryRowContext(ctx, query, domain).Scan(
		&key.Domain,
		&key.EncryptedKey,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get domain key")
	}

	return &key, nil
}
