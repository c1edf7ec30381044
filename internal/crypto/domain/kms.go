package domain

import (
	"context"
)

// KMSKeeper abstracts the external KMS keeper that wraps domain secrets at
// rest. *secrets.Keeper from gocloud.dev implements this interface.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
