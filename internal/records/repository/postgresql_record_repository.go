// Package repository implements data persistence for protected credential records.
//
// Repositories store ciphertext columns produced by the mutation gateway and
// the legacy plaintext columns consumed by the backfill driver. Both the
// PostgreSQL and MySQL implementations are transaction-aware via
// database.GetTx() and expose a column-map partial update so the gateway can
// overwrite exactly the fields present in a mutation request.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldvault/fieldvault/internal/database"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

const recordColumns = `id, owner_id, record_type, display_name, created_by, port,
		username_enc, password_enc, url_enc, host_enc, notes_enc, metadata_enc,
		username_legacy, password_legacy, url_legacy, host_legacy, notes_legacy, metadata_legacy,
		created_at, updated_at`

// backfillPredicate matches rows with at least one unmigrated legacy value.
const backfillPredicate = `(username_enc IS NULL AND username_legacy IS NOT NULL AND username_legacy <> '')
		OR (password_enc IS NULL AND password_legacy IS NOT NULL AND password_legacy <> '')
		OR (url_enc IS NULL AND url_legacy IS NOT NULL AND url_legacy <> '')
		OR (host_enc IS NULL AND host_legacy IS NOT NULL AND host_legacy <> '')
		OR (notes_enc IS NULL AND notes_legacy IS NOT NULL AND notes_legacy <> '')
		OR (metadata_enc IS NULL AND metadata_legacy IS NOT NULL AND metadata_legacy <> '')`

// PostgreSQLRecordRepository implements protected record persistence for PostgreSQL.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLRecordRepository creates a new PostgreSQLRecordRepository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

// Create inserts a new protected record with all columns established.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO protected_records
			  (id, owner_id, record_type, display_name, created_by, port,
			   username_enc, password_enc, url_enc, host_enc, notes_enc, metadata_enc,
			   created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.OwnerID,
		record.RecordType,
		record.DisplayName,
		record.CreatedBy,
		record.Port,
		record.UsernameEnc,
		record.PasswordEnc,
		record.URLEnc,
		record.HostEnc,
		record.NotesEnc,
		record.MetadataEnc,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// GetByID retrieves a protected record by its id.
//
// Returns recordsDomain.ErrRecordNotFound if no record exists.
func (p *PostgreSQLRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM protected_records WHERE id = $1`, recordColumns)

	record, err := scanRecord(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record by id")
	}
	return record, nil
}

// ListByOwner retrieves the protected records for an owning entity, ordered by
// display name for stable pagination.
func (p *PostgreSQLRecordRepository) ListByOwner(
	ctx context.Context,
	ownerID int64,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM protected_records
			  WHERE owner_id = $1
			  ORDER BY display_name, id
			  LIMIT $2 OFFSET $3`, recordColumns)

	rows, err := querier.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by owner")
	}
	defer rows.Close()

	var records []*recordsDomain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// ExistsByOwnerAndName reports whether the owner already has a record with the
// given display name. Used by the default-entry provisioner.
func (p *PostgreSQLRecordRepository) ExistsByOwnerAndName(
	ctx context.Context,
	ownerID int64,
	displayName string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM protected_records WHERE owner_id = $1 AND display_name = $2)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, ownerID, displayName).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check record existence")
	}
	return exists, nil
}

// UpdatePartial overwrites exactly the given columns plus updated_at.
//
// Column names must come from the fixed protected_records column set; the
// gateway builds the map, never request input. Returns
// recordsDomain.ErrRecordNotFound if no row matched.
func (p *PostgreSQLRecordRepository) UpdatePartial(
	ctx context.Context,
	id uuid.UUID,
	columns map[string]any,
) error {
	if len(columns) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, p.db)

	names := sortedColumnNames(columns)
	assignments := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", name, i+1))
		args = append(args, columns[name])
	}
	assignments = append(assignments, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE protected_records SET %s WHERE id = $%d",
		strings.Join(assignments, ", "),
		len(args),
	)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}

// ListNeedingBackfill retrieves up to limit records that still carry an
// unmigrated legacy plaintext value. Repeated calls after migrating each batch
// walk the whole table.
func (p *PostgreSQLRecordRepository) ListNeedingBackfill(
	ctx context.Context,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM protected_records
			  WHERE %s
			  ORDER BY id
			  LIMIT $1`, recordColumns, backfillPredicate)

	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records needing backfill")
	}
	defer rows.Close()

	var records []*recordsDomain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// CountNeedingBackfill counts records that still carry an unmigrated legacy
// plaintext value. Used for dry-run reporting before a backfill.
func (p *PostgreSQLRecordRepository) CountNeedingBackfill(ctx context.Context) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM protected_records WHERE %s`, backfillPredicate)

	var count int
	if err := querier.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records needing backfill")
	}
	return count, nil
}

// Delete removes a protected record.
//
// Returns recordsDomain.ErrRecordNotFound if no record exists.
func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM protected_records WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*recordsDomain.Record, error) {
	var record recordsDomain.Record
	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.RecordType,
		&record.DisplayName,
		&record.CreatedBy,
		&record.Port,
		&record.UsernameEnc,
		&record.PasswordEnc,
		&record.URLEnc,
		&record.HostEnc,
		&record.NotesEnc,
		&record.MetadataEnc,
		&record.UsernameLegacy,
		&record.PasswordLegacy,
		&record.URLLegacy,
		&record.HostLegacy,
		&record.NotesLegacy,
		&record.MetadataLegacy,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// sortedColumnNames gives the update builder a deterministic column order.
func sortedColumnNames(columns map[string]any) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
