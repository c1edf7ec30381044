package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
)

// xorKeeper is a fake KMS keeper; good enough to prove wrap/unwrap plumbing.
type xorKeeper struct {
	closed bool
}

func (k *xorKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		out[i] = b ^ 0x5a
	}
	return out, nil
}

func (k *xorKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return k.Encrypt(ctx, ciphertext)
}

func (k *xorKeeper) Close() error {
	k.closed = true
	return nil
}

// memDomainKeyRepo is an in-memory DomainKeyRepository fake.
type memDomainKeyRepo struct {
	keys map[string]*cryptoDomain.DomainKey
}

func newMemDomainKeyRepo() *memDomainKeyRepo {
	return &memDomainKeyRepo{keys: make(map[string]*cryptoDomain.DomainKey)}
}

func (r *memDomainKeyRepo) Create(ctx context.Context, key *cryptoDomain.DomainKey) error {
	if _, ok := r.keys[key.Domain]; ok {
		return apperrors.ErrConflict
	}
	r.keys[key.Domain] = key
	return nil
}

func (r *memDomainKeyRepo) Get(ctx context.Context, domain string) (*cryptoDomain.DomainKey, error) {
	key, ok := r.keys[domain]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return key, nil
}

func TestDatabaseKeyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGetRoundTrip", func(t *testing.T) {
		repo := newMemDomainKeyRepo()
		store := NewDatabaseKeyStore(repo, &xorKeeper{})

		material := make([]byte, 32)
		copy(material, "0123456789abcdef0123456789abcdef")
		require.NoError(t, store.CreateSecret(ctx, "contact-secure", material))

		secret, err := store.GetSecret(ctx, "contact-secure")
		require.NoError(t, err)
		assert.Equal(t, material, secret)

		// The database row never holds the plaintext secret.
		stored := repo.keys["contact-secure"]
		assert.NotEqual(t, material, stored.EncryptedKey)
	})

	t.Run("CreateGeneratesRandomMaterial", func(t *testing.T) {
		store := NewDatabaseKeyStore(newMemDomainKeyRepo(), &xorKeeper{})
		require.NoError(t, store.CreateSecret(ctx, "d", nil))

		secret, err := store.GetSecret(ctx, "d")
		require.NoError(t, err)
		assert.Len(t, secret, 32)
		assert.NotEqual(t, make([]byte, 32), secret)
	})

	t.Run("CreateIsIdempotent", func(t *testing.T) {
		store := NewDatabaseKeyStore(newMemDomainKeyRepo(), &xorKeeper{})
		require.NoError(t, store.CreateSecret(ctx, "d", nil))

		first, err := store.GetSecret(ctx, "d")
		require.NoError(t, err)

		require.NoError(t, store.CreateSecret(ctx, "d", nil))
		second, err := store.GetSecret(ctx, "d")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("RejectsWrongSizeMaterial", func(t *testing.T) {
		store := NewDatabaseKeyStore(newMemDomainKeyRepo(), &xorKeeper{})
		err := store.CreateSecret(ctx, "d", []byte("too short"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("MissingDomainReturnsNotFound", func(t *testing.T) {
		store := NewDatabaseKeyStore(newMemDomainKeyRepo(), &xorKeeper{})
		_, err := store.GetSecret(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
