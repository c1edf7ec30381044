package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

var recordColumnNames = []string{
	"id", "owner_id", "record_type", "display_name", "created_by", "port",
	"username_enc", "password_enc", "url_enc", "host_enc", "notes_enc", "metadata_enc",
	"username_legacy", "password_legacy", "url_legacy", "host_legacy", "notes_legacy", "metadata_legacy",
	"created_at", "updated_at",
}

func recordRow(record *recordsDomain.Record) *sqlmock.Rows {
	return sqlmock.NewRows(recordColumnNames).AddRow(
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
		record.UsernameLegacy,
		record.PasswordLegacy,
		record.URLLegacy,
		record.HostLegacy,
		record.NotesLegacy,
		record.MetadataLegacy,
		record.CreatedAt,
		record.UpdatedAt,
	)
}

func testRecord() *recordsDomain.Record {
	enc := "aes-gcm:bm9uY2U=:Y2lwaGVy"
	now := time.Now().UTC()
	return &recordsDomain.Record{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     42,
		RecordType:  "credentials",
		DisplayName: "Router Admin",
		CreatedBy:   "system",
		UsernameEnc: &enc,
		PasswordEnc: &enc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPostgreSQLRecordRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	record := testRecord()

	mock.ExpectExec("INSERT INTO protected_records").
		WithArgs(
			record.ID, record.OwnerID, record.RecordType, record.DisplayName,
			record.CreatedBy, record.Port,
			record.UsernameEnc, record.PasswordEnc, record.URLEnc,
			record.HostEnc, record.NotesEnc, record.MetadataEnc,
			record.CreatedAt, record.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	record := testRecord()

	mock.ExpectQuery("SELECT (.+) FROM protected_records WHERE id").
		WithArgs(record.ID).
		WillReturnRows(recordRow(record))

	got, err := repo.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.OwnerID, got.OwnerID)
	assert.Equal(t, record.DisplayName, got.DisplayName)
	assert.Equal(t, record.UsernameEnc, got.UsernameEnc)
	assert.Nil(t, got.NotesEnc)
}

func TestPostgreSQLRecordRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery("SELECT (.+) FROM protected_records WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(recordColumnNames))

	_, err = repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
}

func TestPostgreSQLRecordRepository_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	first := testRecord()
	second := testRecord()
	second.DisplayName = "VPN Login"

	rows := recordRow(first)
	rows.AddRow(
		second.ID.String(), second.OwnerID, second.RecordType, second.DisplayName,
		second.CreatedBy, second.Port,
		second.UsernameEnc, second.PasswordEnc, second.URLEnc,
		second.HostEnc, second.NotesEnc, second.MetadataEnc,
		second.UsernameLegacy, second.PasswordLegacy, second.URLLegacy,
		second.HostLegacy, second.NotesLegacy, second.MetadataLegacy,
		second.CreatedAt, second.UpdatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM protected_records").
		WithArgs(int64(42), 50, 0).
		WillReturnRows(rows)

	records, err := repo.ListByOwner(context.Background(), 42, 0, 50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Router Admin", records[0].DisplayName)
	assert.Equal(t, "VPN Login", records[1].DisplayName)
}

func TestPostgreSQLRecordRepository_ExistsByOwnerAndName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42), "Gate Code").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByOwnerAndName(context.Background(), 42, "Gate Code")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42), "House Code").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err = repo.ExistsByOwnerAndName(context.Background(), 42, "House Code")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostgreSQLRecordRepository_UpdatePartial(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	id := uuid.Must(uuid.NewV7())
	enc := "aes-gcm:bm9uY2U=:Y2lwaGVy"

	// Columns are applied in sorted name order.
	mock.ExpectExec(`UPDATE protected_records SET password_enc = \$1, username_enc = \$2, updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs(&enc, nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdatePartial(context.Background(), id, map[string]any{
		"password_enc": &enc,
		"username_enc": nil,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_UpdatePartial_NoColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	// No columns means no statement at all.
	err = repo.UpdatePartial(context.Background(), uuid.Must(uuid.NewV7()), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_UpdatePartial_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE protected_records SET").
		WithArgs("8443", id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdatePartial(context.Background(), id, map[string]any{"port": "8443"})
	assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
}

func TestPostgreSQLRecordRepository_ListNeedingBackfill(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	record := testRecord()
	legacy := "plaintext-password"
	record.PasswordEnc = nil
	record.PasswordLegacy = &legacy

	mock.ExpectQuery("SELECT (.+) FROM protected_records").
		WithArgs(100).
		WillReturnRows(recordRow(record))

	records, err := repo.ListNeedingBackfill(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].PasswordEnc)
	require.NotNil(t, records[0].PasswordLegacy)
	assert.Equal(t, legacy, *records[0].PasswordLegacy)
}

func TestPostgreSQLRecordRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec("DELETE FROM protected_records WHERE id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM protected_records WHERE id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), recordsDomain.ErrRecordNotFound)
}
