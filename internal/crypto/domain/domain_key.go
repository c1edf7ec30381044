package domain

import (
	"time"
)

// DomainKey represents the stored form of an encryption domain's secret.
//
// The secret material is wrapped by an external KMS keeper before it reaches
// the database; the plaintext secret only ever exists in memory. Each domain
// has exactly one active secret at any time.
type DomainKey struct {
	// Domain is the encryption domain name (e.g., "contact-secure-data").
	Domain string
	// EncryptedKey is the 32-byte domain secret wrapped by the KMS keeper.
	EncryptedKey []byte
	// CreatedAt is the UTC timestamp when the secret was provisioned.
	CreatedAt time.Time
}
