// Package usecase implements the business logic for protected credential
// records: the mutation gateway (the only sanctioned write path), the
// decrypting read projection, the legacy backfill driver and the default-entry
// provisioner.
//
// The gateway guarantees plaintext never reaches the repository: every
// sensitive field passes through the field codec before a column is written,
// and a missing domain secret aborts the whole mutation. The read projection
// is pre-bound to one encryption domain per record type, so callers never
// name a domain themselves.
package usecase

import (
	"context"

	"github.com/google/uuid"

	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// RecordRepository defines the interface for protected record persistence.
type RecordRepository interface {
	Create(ctx context.Context, record *recordsDomain.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*recordsDomain.Record, error)
	ExistsByOwnerAndName(ctx context.Context, ownerID int64, displayName string) (bool, error)
	// UpdatePartial overwrites exactly the given columns plus updated_at.
	UpdatePartial(ctx context.Context, id uuid.UUID, columns map[string]any) error
	ListNeedingBackfill(ctx context.Context, limit int) ([]*recordsDomain.Record, error)
	CountNeedingBackfill(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateRecordInput carries the full input for record creation. Fields left
// unset establish null ciphertext columns; creation always writes the full row.
type CreateRecordInput struct {
	OwnerID     int64
	RecordType  string
	DisplayName string
	CreatedBy   string
	Fields      recordsDomain.FieldChanges
}

// RecordUseCase defines the mutation gateway and read projection for
// protected records. All reads return the decrypted RecordView shape.
type RecordUseCase interface {
	// Create inserts a new protected record, encrypting every present field.
	Create(ctx context.Context, input CreateRecordInput) (*recordsDomain.RecordView, error)
	// Update applies a partial mutation: present fields are re-encrypted and
	// overwritten, unset fields keep their stored ciphertext untouched.
	Update(ctx context.Context, id uuid.UUID, fields recordsDomain.FieldChanges) (*recordsDomain.RecordView, error)
	// Get returns the decrypted view of a single record.
	Get(ctx context.Context, id uuid.UUID) (*recordsDomain.RecordView, error)
	// ListByOwner returns the decrypted views of an owner's records.
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*recordsDomain.RecordView, error)
	// Delete removes a record entirely.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BackfillUseCase drives the idempotent migration of legacy plaintext columns
// into ciphertext columns.
type BackfillUseCase interface {
	// Run migrates all pending rows in batches and returns the number of rows
	// migrated. Safe to invoke repeatedly.
	Run(ctx context.Context) (int, error)
	// Pending returns the number of rows a Run would migrate.
	Pending(ctx context.Context) (int, error)
}

// ProvisionUseCase seeds the fixed set of placeholder records for an owner.
type ProvisionUseCase interface {
	// EnsureDefaults creates any missing placeholder records for the owner.
	// Idempotent per owner.
	EnsureDefaults(ctx context.Context, ownerID int64) error
}
