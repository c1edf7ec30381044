package domain

import (
	"github.com/fieldvault/fieldvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	// Supported algorithms: AESGCM (aes-gcm), ChaCha20 (chacha20-poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	// All domain secrets must be exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to a wrong key, tampered or truncated ciphertext,
	// or an invalid nonce. For security reasons the specific cause is not
	// disclosed to prevent information leakage.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrDomainNotConfigured indicates no secret exists for an encryption domain.
	//
	// This is a deployment defect: writes must abort rather than silently store
	// plaintext. Wrapped as ErrInternal so it never surfaces as a caller mistake.
	ErrDomainNotConfigured = errors.Wrap(errors.ErrInternal, "encryption domain not configured")

	// ErrInvalidCiphertextFormat indicates a stored ciphertext string could not be parsed.
	ErrInvalidCiphertextFormat = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext format")
)
