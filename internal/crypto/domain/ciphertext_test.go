package domain

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedCiphertextRoundTrip(t *testing.T) {
	original := EncodedCiphertext{
		Algorithm:  AESGCM,
		Nonce:      []byte("unique-nonce"),
		Ciphertext: []byte("sealed-payload-with-tag"),
	}

	parsed, err := ParseCiphertext(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseCiphertext(t *testing.T) {
	t.Run("RejectsWrongPartCount", func(t *testing.T) {
		_, err := ParseCiphertext("aes-gcm:only-two-parts")
		assert.ErrorIs(t, err, ErrInvalidCiphertextFormat)

		_, err = ParseCiphertext("a:b:c:d")
		assert.ErrorIs(t, err, ErrInvalidCiphertextFormat)
	})

	t.Run("RejectsUnknownAlgorithm", func(t *testing.T) {
		nonce := base64.StdEncoding.EncodeToString([]byte("nonce"))
		payload := base64.StdEncoding.EncodeToString([]byte("payload"))
		_, err := ParseCiphertext(fmt.Sprintf("rot13:%s:%s", nonce, payload))
		assert.ErrorIs(t, err, ErrInvalidCiphertextFormat)
	})

	t.Run("RejectsBadBase64", func(t *testing.T) {
		_, err := ParseCiphertext("aes-gcm:!!!:AAAA")
		assert.ErrorIs(t, err, ErrInvalidCiphertextFormat)

		_, err = ParseCiphertext("aes-gcm:AAAA:!!!")
		assert.ErrorIs(t, err, ErrInvalidCiphertextFormat)
	})

	t.Run("RejectsEmptyPayload", func(t *testing.T) {
		nonce := base64.StdEncoding.EncodeToString([]byte("nonce"))
		_, err := ParseCiphertext(fmt.Sprintf("aes-gcm:%s:", nonce))
		assert.ErrorIs(t, err, ErrInvalidCiphertextFormat)
	})
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("aes-gcm")
	require.NoError(t, err)
	assert.Equal(t, AESGCM, alg)

	alg, err = ParseAlgorithm("chacha20-poly1305")
	require.NoError(t, err)
	assert.Equal(t, ChaCha20, alg)

	_, err = ParseAlgorithm("des")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0}, b)

	// Must not panic on nil.
	Zero(nil)
}
