package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodedCiphertext is the self-contained, printable representation of a sealed
// field value, suitable for storage in a plain text column.
//
// Serialized format: "algorithm:nonce-base64:ciphertext-base64", where the
// ciphertext includes the AEAD authentication tag.
//
// Fields:
//   - Algorithm: AEAD used for sealing (aes-gcm or chacha20-poly1305)
//   - Nonce: the random nonce generated for this sealing operation
//   - Ciphertext: the encrypted payload with authentication tag appended
type EncodedCiphertext struct {
	Algorithm  Algorithm
	Nonce      []byte
	Ciphertext []byte
}

// ParseCiphertext parses the string representation of a sealed field value.
//
// The input must have exactly three colon-separated parts. Base64 payloads use
// standard encoding. Returns ErrInvalidCiphertextFormat on any malformed input;
// callers treat that the same as an authentication failure.
func ParseCiphertext(content string) (EncodedCiphertext, error) {
	parts := strings.Split(content, ":")
	if len(parts) != 3 {
		return EncodedCiphertext{}, fmt.Errorf(
			"%w: expected format 'algorithm:nonce:ciphertext', got %d parts",
			ErrInvalidCiphertextFormat,
			len(parts),
		)
	}

	alg, err := ParseAlgorithm(parts[0])
	if err != nil {
		return EncodedCiphertext{}, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidCiphertextFormat, parts[0])
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return EncodedCiphertext{}, fmt.Errorf("%w: bad nonce encoding: %v", ErrInvalidCiphertextFormat, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return EncodedCiphertext{}, fmt.Errorf("%w: bad payload encoding: %v", ErrInvalidCiphertextFormat, err)
	}
	if len(ciphertext) == 0 {
		return EncodedCiphertext{}, fmt.Errorf("%w: empty payload", ErrInvalidCiphertextFormat)
	}

	return EncodedCiphertext{
		Algorithm:  alg,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// String serializes the EncodedCiphertext to its storage representation.
//
// Round-trips with ParseCiphertext:
//
//	original := EncodedCiphertext{Algorithm: AESGCM, Nonce: nonce, Ciphertext: data}
//	parsed, _ := ParseCiphertext(original.String())
//	// parsed equals original
func (ec EncodedCiphertext) String() string {
	return fmt.Sprintf(
		"%s:%s:%s",
		ec.Algorithm,
		base64.StdEncoding.EncodeToString(ec.Nonce),
		base64.StdEncoding.EncodeToString(ec.Ciphertext),
	)
}
