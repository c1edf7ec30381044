package service

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
	"github.com/fieldvault/fieldvault/internal/metrics"
)

// memKeyStore is an in-memory KeyStore fake with deterministic secrets.
type memKeyStore struct {
	mu      sync.Mutex
	secrets map[string][]byte
	gets    int
}

func newMemKeyStore() *memKeyStore {
	return &memKeyStore{secrets: make(map[string][]byte)}
}

func (m *memKeyStore) GetSecret(ctx context.Context, domain string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	secret, ok := m.secrets[domain]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := make([]byte, len(secret))
	copy(out, secret)
	return out, nil
}

func (m *memKeyStore) CreateSecret(ctx context.Context, domain string, material []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[domain]; ok {
		return nil
	}
	if material == nil {
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return err
		}
	}
	stored := make([]byte, len(material))
	copy(stored, material)
	m.secrets[domain] = stored
	return nil
}

func newTestCodec(t *testing.T, keyStore KeyStore) *DomainFieldCodec {
	t.Helper()
	return NewDomainFieldCodec(
		keyStore,
		NewAEADManager(),
		cryptoDomain.AESGCM,
		slog.New(slog.DiscardHandler),
		metrics.NewNoOpBusinessMetrics(),
	)
}

func strptr(s string) *string {
	return &s
}

func TestDomainFieldCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "contact-secure", nil))
	codec := newTestCodec(t, keyStore)

	plaintexts := []string{"S3cr3t!", "admin", "192.168.1.1", "long note\nwith lines", "héllo wörld"}
	for _, p := range plaintexts {
		ciphertext, err := codec.EncryptField(ctx, "contact-secure", strptr(p))
		require.NoError(t, err)
		require.NotNil(t, ciphertext)
		assert.NotEqual(t, p, *ciphertext)

		decrypted := codec.DecryptField(ctx, "contact-secure", ciphertext)
		require.NotNil(t, decrypted)
		assert.Equal(t, p, *decrypted)
	}
}

func TestDomainFieldCodecNullPropagation(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "contact-secure", nil))
	codec := newTestCodec(t, keyStore)

	t.Run("NilPlaintextEncryptsToNil", func(t *testing.T) {
		ciphertext, err := codec.EncryptField(ctx, "contact-secure", nil)
		require.NoError(t, err)
		assert.Nil(t, ciphertext)
	})

	t.Run("EmptyPlaintextEncryptsToNil", func(t *testing.T) {
		ciphertext, err := codec.EncryptField(ctx, "contact-secure", strptr(""))
		require.NoError(t, err)
		assert.Nil(t, ciphertext)
	})

	t.Run("NilCiphertextDecryptsToNil", func(t *testing.T) {
		assert.Nil(t, codec.DecryptField(ctx, "contact-secure", nil))
	})
}

func TestDomainFieldCodecNonDeterminism(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "contact-secure", nil))
	codec := newTestCodec(t, keyStore)

	c1, err := codec.EncryptField(ctx, "contact-secure", strptr("same"))
	require.NoError(t, err)
	c2, err := codec.EncryptField(ctx, "contact-secure", strptr("same"))
	require.NoError(t, err)

	assert.NotEqual(t, *c1, *c2)

	d1 := codec.DecryptField(ctx, "contact-secure", c1)
	d2 := codec.DecryptField(ctx, "contact-secure", c2)
	require.NotNil(t, d1)
	require.NotNil(t, d2)
	assert.Equal(t, "same", *d1)
	assert.Equal(t, "same", *d2)
}

func TestDomainFieldCodecDomainNotConfigured(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t, newMemKeyStore())

	ciphertext, err := codec.EncryptField(ctx, "missing-domain", strptr("value"))
	assert.Nil(t, ciphertext)
	assert.ErrorIs(t, err, cryptoDomain.ErrDomainNotConfigured)
}

func TestDomainFieldCodecTamperContainment(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "contact-secure", nil))
	codec := newTestCodec(t, keyStore)

	ciphertext, err := codec.EncryptField(ctx, "contact-secure", strptr("S3cr3t!"))
	require.NoError(t, err)

	// Any single-character mutation must resolve to nil, never to plausible
	// plaintext or a panic.
	original := *ciphertext
	for i := 0; i < len(original); i += 7 {
		mutated := []byte(original)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		tampered := string(mutated)
		assert.Nil(t, codec.DecryptField(ctx, "contact-secure", &tampered))
	}
}

func TestDomainFieldCodecContainsWrongKey(t *testing.T) {
	ctx := context.Background()

	storeA := newMemKeyStore()
	require.NoError(t, storeA.CreateSecret(ctx, "d", nil))
	ciphertext, err := newTestCodec(t, storeA).EncryptField(ctx, "d", strptr("value"))
	require.NoError(t, err)

	storeB := newMemKeyStore()
	require.NoError(t, storeB.CreateSecret(ctx, "d", nil))
	assert.Nil(t, newTestCodec(t, storeB).DecryptField(ctx, "d", ciphertext))
}

func TestDomainFieldCodecContainsGarbageCiphertext(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "d", nil))
	codec := newTestCodec(t, keyStore)

	for _, garbage := range []string{"", "not-a-ciphertext", "a:b", "aes-gcm:!!!:??", "aes-gcm:AAAA:"} {
		g := garbage
		assert.Nil(t, codec.DecryptField(ctx, "d", &g), garbage)
	}
}

func TestDomainFieldCodecStructuredValues(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "d", nil))
	codec := newTestCodec(t, keyStore)

	t.Run("RoundTrip", func(t *testing.T) {
		value := map[string]any{"vlan": "management", "snmp_community": "private"}
		ciphertext, err := codec.EncryptJSON(ctx, "d", value)
		require.NoError(t, err)
		require.NotNil(t, ciphertext)

		decrypted := codec.DecryptJSON(ctx, "d", ciphertext)
		assert.Equal(t, value, decrypted)
	})

	t.Run("EmptyMapEncryptsToNil", func(t *testing.T) {
		ciphertext, err := codec.EncryptJSON(ctx, "d", nil)
		require.NoError(t, err)
		assert.Nil(t, ciphertext)

		ciphertext, err = codec.EncryptJSON(ctx, "d", map[string]any{})
		require.NoError(t, err)
		assert.Nil(t, ciphertext)
	})

	t.Run("UnparsableDecryptedPayloadContained", func(t *testing.T) {
		// A plain string field read through the structured path must resolve
		// to nil, not error out.
		ciphertext, err := codec.EncryptField(ctx, "d", strptr("not json"))
		require.NoError(t, err)
		assert.Nil(t, codec.DecryptJSON(ctx, "d", ciphertext))
	})
}

func TestDomainFieldCodecRecordsContainmentMetric(t *testing.T) {
	ctx := context.Background()
	keyStore := newMemKeyStore()
	require.NoError(t, keyStore.CreateSecret(ctx, "d", nil))

	provider, err := metrics.NewProvider("fieldvault")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()
	business, err := metrics.NewBusinessMetrics(provider.MeterProvider(), "fieldvault")
	require.NoError(t, err)

	codec := NewDomainFieldCodec(
		keyStore,
		NewAEADManager(),
		cryptoDomain.AESGCM,
		slog.New(slog.DiscardHandler),
		business,
	)

	garbage := "aes-gcm:AAAA:AAAA"
	assert.Nil(t, codec.DecryptField(ctx, "d", &garbage))
}

func TestCachingKeyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CachesWithinTTL", func(t *testing.T) {
		inner := newMemKeyStore()
		require.NoError(t, inner.CreateSecret(ctx, "d", nil))
		cache := NewCachingKeyStore(inner, time.Minute)
		defer cache.Close()

		first, err := cache.GetSecret(ctx, "d")
		require.NoError(t, err)
		second, err := cache.GetSecret(ctx, "d")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.gets)
	})

	t.Run("InvalidateForcesRefetch", func(t *testing.T) {
		inner := newMemKeyStore()
		require.NoError(t, inner.CreateSecret(ctx, "d", nil))
		cache := NewCachingKeyStore(inner, time.Minute)
		defer cache.Close()

		_, err := cache.GetSecret(ctx, "d")
		require.NoError(t, err)
		cache.Invalidate("d")
		_, err = cache.GetSecret(ctx, "d")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.gets)
	})

	t.Run("ZeroTTLDisablesCaching", func(t *testing.T) {
		inner := newMemKeyStore()
		require.NoError(t, inner.CreateSecret(ctx, "d", nil))
		cache := NewCachingKeyStore(inner, 0)
		defer cache.Close()

		_, err := cache.GetSecret(ctx, "d")
		require.NoError(t, err)
		_, err = cache.GetSecret(ctx, "d")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.gets)
	})

	t.Run("CallerZeroingDoesNotCorruptCache", func(t *testing.T) {
		inner := newMemKeyStore()
		require.NoError(t, inner.CreateSecret(ctx, "d", nil))
		cache := NewCachingKeyStore(inner, time.Minute)
		defer cache.Close()

		first, err := cache.GetSecret(ctx, "d")
		require.NoError(t, err)
		cryptoDomain.Zero(first)

		second, err := cache.GetSecret(ctx, "d")
		require.NoError(t, err)
		assert.NotEqual(t, make([]byte, 32), second)
	})

	t.Run("MissingDomainPassesThrough", func(t *testing.T) {
		cache := NewCachingKeyStore(newMemKeyStore(), time.Minute)
		defer cache.Close()

		_, err := cache.GetSecret(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
