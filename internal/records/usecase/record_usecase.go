package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/fieldvault/fieldvault/internal/crypto/service"
	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// recordUseCase implements RecordUseCase.
//
// The encryption domain is fixed at construction, one domain per protected
// record type, so the projection and the gateway never take a domain from the
// caller. Every sensitive value flows through the field codec; the repository
// only ever sees ciphertext columns.
type recordUseCase struct {
	repo   RecordRepository
	codec  cryptoService.FieldCodec
	domain string
}

// NewRecordUseCase creates the mutation gateway and read projection bound to
// the given encryption domain.
func NewRecordUseCase(
	repo RecordRepository,
	codec cryptoService.FieldCodec,
	domain string,
) RecordUseCase {
	return &recordUseCase{
		repo:   repo,
		codec:  codec,
		domain: domain,
	}
}

// Create inserts a new protected record.
//
// Requires a non-zero owner reference and a non-blank display name. Each
// present field is encrypted before the insert; fields left unset establish
// null ciphertext columns. A missing domain secret aborts before any write.
func (r *recordUseCase) Create(
	ctx context.Context,
	input CreateRecordInput,
) (*recordsDomain.RecordView, error) {
	if input.OwnerID == 0 {
		return nil, recordsDomain.ErrOwnerRequired
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, recordsDomain.ErrDisplayNameRequired
	}

	now := time.Now().UTC()
	record := &recordsDomain.Record{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     input.OwnerID,
		RecordType:  input.RecordType,
		DisplayName: input.DisplayName,
		CreatedBy:   input.CreatedBy,
		Port:        input.Fields.Port.Value(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var err error
	if record.UsernameEnc, err = r.codec.EncryptField(ctx, r.domain, input.Fields.Username.Value()); err != nil {
		return nil, err
	}
	if record.PasswordEnc, err = r.codec.EncryptField(ctx, r.domain, input.Fields.Password.Value()); err != nil {
		return nil, err
	}
	if record.URLEnc, err = r.codec.EncryptField(ctx, r.domain, input.Fields.URL.Value()); err != nil {
		return nil, err
	}
	if record.HostEnc, err = r.codec.EncryptField(ctx, r.domain, input.Fields.HostOrIP.Value()); err != nil {
		return nil, err
	}
	if record.NotesEnc, err = r.codec.EncryptField(ctx, r.domain, input.Fields.Notes.Value()); err != nil {
		return nil, err
	}
	if record.MetadataEnc, err = r.codec.EncryptJSON(ctx, r.domain, input.Fields.StructuredMetadata.Value()); err != nil {
		return nil, err
	}

	if err := r.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	return r.project(ctx, record), nil
}

// Update applies a partial mutation to a protected record.
//
// Only fields present in the input are touched: a field carrying a value is
// re-encrypted and overwritten, a cleared field nulls the stored ciphertext,
// and an unset field leaves its column alone. Encryption happens before any
// column is written, so a missing domain secret aborts the whole update.
func (r *recordUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	fields recordsDomain.FieldChanges,
) (*recordsDomain.RecordView, error) {
	if id == uuid.Nil {
		return nil, recordsDomain.ErrRecordIDRequired
	}

	columns := make(map[string]any)

	type encColumn struct {
		name  string
		field recordsDomain.Field
	}
	for _, col := range []encColumn{
		{"username_enc", fields.Username},
		{"password_enc", fields.Password},
		{"url_enc", fields.URL},
		{"host_enc", fields.HostOrIP},
		{"notes_enc", fields.Notes},
	} {
		if !col.field.Present() {
			continue
		}
		ciphertext, err := r.codec.EncryptField(ctx, r.domain, col.field.Value())
		if err != nil {
			return nil, err
		}
		columns[col.name] = ciphertext
	}

	if fields.StructuredMetadata.Present() {
		ciphertext, err := r.codec.EncryptJSON(ctx, r.domain, fields.StructuredMetadata.Value())
		if err != nil {
			return nil, err
		}
		columns["metadata_enc"] = ciphertext
	}

	if fields.Port.Present() {
		columns["port"] = fields.Port.Value()
	}

	if len(columns) > 0 {
		if err := r.repo.UpdatePartial(ctx, id, columns); err != nil {
			return nil, err
		}
	}

	record, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.project(ctx, record), nil
}

// Get returns the decrypted view of a single record.
func (r *recordUseCase) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.RecordView, error) {
	record, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.project(ctx, record), nil
}

// ListByOwner returns the decrypted views of an owner's records.
// Decryption happens once per row per query; nothing is cached across calls.
func (r *recordUseCase) ListByOwner(
	ctx context.Context,
	ownerID int64,
	offset, limit int,
) ([]*recordsDomain.RecordView, error) {
	records, err := r.repo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*recordsDomain.RecordView, 0, len(records))
	for _, record := range records {
		views = append(views, r.project(ctx, record))
	}
	return views, nil
}

// Delete removes a record entirely.
func (r *recordUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return recordsDomain.ErrRecordIDRequired
	}
	return r.repo.Delete(ctx, id)
}

// project decrypts a stored record into its plaintext view. A field that
// fails to decrypt resolves to nil inside the codec; the rest of the record
// stays readable.
func (r *recordUseCase) project(ctx context.Context, record *recordsDomain.Record) *recordsDomain.RecordView {
	return &recordsDomain.RecordView{
		ID:                 record.ID,
		OwnerID:            record.OwnerID,
		RecordType:         record.RecordType,
		DisplayName:        record.DisplayName,
		Username:           r.codec.DecryptField(ctx, r.domain, record.UsernameEnc),
		Password:           r.codec.DecryptField(ctx, r.domain, record.PasswordEnc),
		URL:                r.codec.DecryptField(ctx, r.domain, record.URLEnc),
		HostOrIP:           r.codec.DecryptField(ctx, r.domain, record.HostEnc),
		Port:               record.Port,
		Notes:              r.codec.DecryptField(ctx, r.domain, record.NotesEnc),
		StructuredMetadata: r.codec.DecryptJSON(ctx, r.domain, record.MetadataEnc),
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		CreatedBy:          record.CreatedBy,
	}
}
