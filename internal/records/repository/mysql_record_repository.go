package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldvault/fieldvault/internal/database"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// MySQLRecordRepository implements protected record persistence for MySQL.
//
// Record ids are stored as CHAR(36) UUID strings and timestamps as UTC
// TIMESTAMP columns. Otherwise identical in behavior to the PostgreSQL
// implementation.
type MySQLRecordRepository struct {
	db *sql.DB
}

// NewMySQLRecordRepository creates a new MySQLRecordRepository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}

// Create inserts a new protected record with all columns established.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO protected_records
			  (id, owner_id, record_type, display_name, created_by, port,
			   username_enc, password_enc, url_enc, host_enc, notes_enc, metadata_enc,
			   created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID.String(),
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
func (m *MySQLRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT %s FROM protected_records WHERE id = ?`, recordColumns)

	record, err := scanRecord(querier.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record by id")
	}
	return record, nil
}

// ListByOwner retrieves the protected records for an owning entity.
func (m *MySQLRecordRepository) ListByOwner(
	ctx context.Context,
	ownerID int64,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT %s FROM protected_records
			  WHERE owner_id = ?
			  ORDER BY display_name, id
			  LIMIT ? OFFSET ?`, recordColumns)

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
// given display name.
func (m *MySQLRecordRepository) ExistsByOwnerAndName(
	ctx context.Context,
	ownerID int64,
	displayName string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS(SELECT 1 FROM protected_records WHERE owner_id = ? AND display_name = ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, ownerID, displayName).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check record existence")
	}
	return exists, nil
}

// UpdatePartial overwrites exactly the given columns plus updated_at.
func (m *MySQLRecordRepository) UpdatePartial(
	ctx context.Context,
	id uuid.UUID,
	columns map[string]any,
) error {
	if len(columns) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, m.db)

	names := sortedColumnNames(columns)
	assignments := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		assignments = append(assignments, fmt.Sprintf("%s = ?", name))
		args = append(args, columns[name])
	}
	assignments = append(assignments, "updated_at = UTC_TIMESTAMP()")
	args = append(args, id.String())

	query := fmt.Sprintf(
		"UPDATE protected_records SET %s WHERE id = ?",
		strings.Join(assignments, ", "),
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
// unmigrated legacy plaintext value.
func (m *MySQLRecordRepository) ListNeedingBackfill(
	ctx context.Context,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT %s FROM protected_records
			  WHERE %s
			  ORDER BY id
			  LIMIT ?`, recordColumns, backfillPredicate)

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
// plaintext value.
func (m *MySQLRecordRepository) CountNeedingBackfill(ctx context.Context) (int, error) {
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM protected_records WHERE %s`, backfillPredicate)

	var count int
	if err := querier.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records needing backfill")
	}
	return count, nil
}

// Delete removes a protected record.
func (m *MySQLRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM protected_records WHERE id = ?`, id.String())
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
