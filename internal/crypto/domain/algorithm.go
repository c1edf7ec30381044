// Package domain defines the core cryptographic domain models for field-level
// encryption. Each encryption domain maps to exactly one active symmetric
// secret; fields are sealed with an AEAD so tampering and wrong-key attempts
// are detected instead of producing garbage plaintext.
package domain

// Algorithm represents the AEAD algorithm used for sealing field values.
//
// Both supported algorithms provide authenticated encryption with 256-bit keys,
// 12-byte nonces and 16-byte authentication tags.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// Best choice on CPUs with AES-NI hardware acceleration.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	// Constant-time in software; best choice without AES hardware acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm validates and converts an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
