package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
)

// DatabaseKeyStore implements KeyStore backed by the domain_keys table.
//
// Domain secrets are wrapped by the KMS keeper before persistence, so the
// database only ever holds ciphertext key material. GetSecret unwraps on each
// call; wrap with NewCachingKeyStore to bound the unwrap rate.
type DatabaseKeyStore struct {
	repo   DomainKeyRepository
	keeper cryptoDomain.KMSKeeper
}

// NewDatabaseKeyStore creates a KeyStore backed by the given repository and KMS keeper.
func NewDatabaseKeyStore(repo DomainKeyRepository, keeper cryptoDomain.KMSKeeper) *DatabaseKeyStore {
	return &DatabaseKeyStore{
		repo:   repo,
		keeper: keeper,
	}
}

// GetSecret returns the active secret for the domain, unwrapped by the KMS keeper.
// Returns apperrors.ErrNotFound if the domain has no secret configured.
func (s *DatabaseKeyStore) GetSecret(ctx context.Context, domain string) ([]byte, error) {
	key, err := s.repo.Get(ctx, domain)
	if err != nil {
		return nil, err
	}

	secret, err := s.keeper.Decrypt(ctx, key.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap secret for domain %s: %w", domain, err)
	}
	if len(secret) != 32 {
		cryptoDomain.Zero(secret)
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return secret, nil
}

// CreateSecret provisions a secret for the domain. Idempotent: if the domain
// already has a secret the call is a no-op. Pass nil material to generate a
// fresh random 32-byte secret.
func (s *DatabaseKeyStore) CreateSecret(ctx context.Context, domain string, material []byte) error {
	if material == nil {
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return fmt.Errorf("failed to generate domain secret: %w", err)
		}
		defer cryptoDomain.Zero(material)
	} else if len(material) != 32 {
		return cryptoDomain.ErrInvalidKeySize
	}

	wrapped, err := s.keeper.Encrypt(ctx, material)
	if err != nil {
		return fmt.Errorf("failed to wrap secret for domain %s: %w", domain, err)
	}

	err = s.repo.Create(ctx, &cryptoDomain.DomainKey{
		Domain:       domain,
		EncryptedKey: wrapped,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			// Already provisioned.
			return nil
		}
		return err
	}

	return nil
}
