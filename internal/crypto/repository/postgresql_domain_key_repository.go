// Package repository implements data persistence for encryption domain keys.
//
// Domain keys carry the KMS-wrapped secret for an encryption domain. The
// database only ever stores wrapped key material; unwrapping happens in the
// service layer. Each repository type has a PostgreSQL and a MySQL
// implementation, both transaction-aware via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	"github.com/fieldvault/fieldvault/internal/database"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
)

// PostgreSQLDomainKeyRepository implements domain key persistence for PostgreSQL.
//
// Database schema requirements:
//   - domain: TEXT PRIMARY KEY
//   - encrypted_key: BYTEA (KMS-wrapped key material)
//   - created_at: TIMESTAMP WITH TIME ZONE
type PostgreSQLDomainKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLDomainKeyRepository creates a new PostgreSQLDomainKeyRepository.
func NewPostgreSQLDomainKeyRepository(db *sql.DB) *PostgreSQLDomainKeyRepository {
	return &PostgreSQLDomainKeyRepository{db: db}
}

// Create inserts a new domain key.
//
// Returns apperrors.ErrConflict if the domain already has a key, so callers
// can treat re-provisioning as a no-op.
func (p *PostgreSQLDomainKeyRepository) Create(ctx context.Context, key *cryptoDomain.DomainKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO domain_keys (domain, encrypted_key, created_at)
			  VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, key.Domain, key.EncryptedKey, key.CreatedAt)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create domain key")
	}
	return nil
}

// Get retrieves the key for an encryption domain.
//
// Returns apperrors.ErrNotFound if the domain has no key configured.
func (p *PostgreSQLDomainKeyRepository) Get(ctx context.Context, domain string) (*cryptoDomain.DomainKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT domain, encrypted_key, created_at
			  FROM domain_keys
			  WHERE domain = $1`

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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
