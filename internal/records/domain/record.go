// Package domain defines the core domain models for protected credential records.
//
// A protected record stores credential data (username, password, url, host,
// notes, structured metadata) for an owning entity. Every sensitive attribute
// is persisted only in ciphertext form; the plaintext shape is exposed to
// callers exclusively through RecordView, produced by the decrypting read
// projection. Legacy plaintext columns exist for the transitional backfill and
// are never read by clients after migration.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record is the stored form of a protected record.
//
// Enc fields hold the printable ciphertext encoding for their attribute, nil
// when the attribute was never set. Legacy fields mirror the pre-encryption
// plaintext columns and are written only by legacy systems; the backfill
// driver migrates them into the Enc columns.
type Record struct {
	// ID is the unique identifier for the record.
	ID uuid.UUID
	// OwnerID references the owning entity (e.g., a contact).
	OwnerID int64
	// RecordType tags the kind of credential (e.g., "credentials").
	RecordType string
	// DisplayName is the human-facing label, unique per owner in practice.
	DisplayName string
	// CreatedBy identifies the principal that created the record.
	CreatedBy string
	// Port is a non-sensitive connection port, nil when unset.
	Port *int32

	// Ciphertext columns.
	UsernameEnc *string
	PasswordEnc *string
	URLEnc      *string
	HostEnc     *string
	NotesEnc    *string
	MetadataEnc *string

	// Legacy plaintext columns, kept only for the transitional backfill.
	UsernameLegacy *string
	PasswordLegacy *string
	URLLegacy      *string
	HostLegacy     *string
	NotesLegacy    *string
	MetadataLegacy *string

	// CreatedAt is the UTC timestamp when the record was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last mutation.
	UpdatedAt time.Time
}

// RecordView is the decrypted, read-only shape of a protected record.
//
// Sensitive fields are plaintext pointers: nil means the field was never set,
// was explicitly cleared, or failed to decrypt and was contained to null.
type RecordView struct {
	ID                 uuid.UUID      `json:"id"`
	OwnerID            int64          `json:"owner_id"`
	RecordType         string         `json:"record_type"`
	DisplayName        string         `json:"display_name"`
	Username           *string        `json:"username"`
	Password           *string        `json:"password"`
	URL                *string        `json:"url"`
	HostOrIP           *string        `json:"host_or_ip"`
	Port               *int32         `json:"port"`
	Notes              *string        `json:"notes"`
	StructuredMetadata map[string]any `json:"structured_metadata"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	CreatedBy          string         `json:"created_by"`
}
