// Package service provides the cryptographic services for field-level
// encryption: AEAD ciphers, the domain key store and the field codec.
package service

import (
	"context"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyStore defines the interface for retrieving and provisioning the symmetric
// secret of a named encryption domain.
//
// The secret is owned by the key store; callers may hold it in memory for the
// duration of an operation but must never persist it. Implementations may cache
// within a bounded window, with invalidation on administrative rotation.
type KeyStore interface {
	// GetSecret returns the active 32-byte secret for the domain.
	// Returns apperrors.ErrNotFound if the domain has no secret configured.
	GetSecret(ctx context.Context, domain string) ([]byte, error)

	// CreateSecret provisions a secret for the domain. Idempotent: a no-op if
	// the domain already has a secret. Pass nil material to generate a fresh
	// random secret.
	CreateSecret(ctx context.Context, domain string, material []byte) error
}

// FieldCodec binds encryption domains to the cipher engine and key store.
//
// It implements the transparent encryption contract for sensitive columns:
// absent plaintext maps to absent ciphertext, writes abort when a domain has no
// secret, and decryption failures are contained to the single field.
type FieldCodec interface {
	// EncryptField seals a single plaintext field for the domain.
	// Nil or empty plaintext returns nil ciphertext (field never set and field
	// set to empty must stay distinguishable). Returns ErrDomainNotConfigured
	// if the domain has no secret.
	EncryptField(ctx context.Context, domain string, plaintext *string) (*string, error)

	// DecryptField opens a stored ciphertext for the domain.
	// Nil ciphertext returns nil. A ciphertext that fails to parse or
	// authenticate resolves to nil with a logged warning rather than an error,
	// so one corrupted field never blocks the surrounding record.
	DecryptField(ctx context.Context, domain string, ciphertext *string) *string

	// EncryptJSON seals a structured value by serializing it to canonical JSON
	// first. Nil or empty maps return nil ciphertext.
	EncryptJSON(ctx context.Context, domain string, value map[string]any) (*string, error)

	// DecryptJSON opens and parses a structured field. Parse failures follow
	// the same containment policy as authentication failures: nil result.
	DecryptJSON(ctx context.Context, domain string, ciphertext *string) map[string]any
}

// DomainKeyRepository defines persistence for wrapped domain secrets.
type DomainKeyRepository interface {
	// Create inserts a wrapped domain secret. Returns apperrors.ErrConflict if
	// the domain already has one.
	Create(ctx context.Context, key *cryptoDomain.DomainKey) error

	// Get returns the wrapped secret for a domain, or apperrors.ErrNotFound.
	Get(ctx context.Context, domain string) (*cryptoDomain.DomainKey, error)
}
