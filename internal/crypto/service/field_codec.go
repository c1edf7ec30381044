package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
	"github.com/fieldvault/fieldvault/internal/metrics"
)

// DomainFieldCodec implements FieldCodec by binding encryption domains to the
// key store and AEAD manager.
//
// Containment policy: decryption failures (wrong key, tampered or truncated
// ciphertext, unparsable encoding) resolve the single field to nil with a
// logged warning and an error-status metric. The surrounding record and its
// sibling fields stay readable; one corrupted field must never make a whole
// record page un-viewable. Write-path failures are the opposite: they always
// abort, because the alternative is persisting plaintext.
type DomainFieldCodec struct {
	keyStore    KeyStore
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
	logger      *slog.Logger
	metrics     metrics.BusinessMetrics
}

// NewDomainFieldCodec creates the codec with the provided dependencies.
func NewDomainFieldCodec(
	keyStore KeyStore,
	aeadManager AEADManager,
	algorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
) *DomainFieldCodec {
	return &DomainFieldCodec{
		keyStore:    keyStore,
		aeadManager: aeadManager,
		algorithm:   algorithm,
		logger:      logger,
		metrics:     businessMetrics,
	}
}

// EncryptField seals a single plaintext field for the domain.
//
// Nil or empty plaintext returns nil ciphertext: "field never set" must stay
// distinguishable from "field set to empty", and there is nothing worth
// encrypting. Returns ErrDomainNotConfigured when the domain has no secret,
// aborting the write rather than falling back to plaintext storage.
func (c *DomainFieldCodec) EncryptField(
	ctx context.Context,
	domain string,
	plaintext *string,
) (*string, error) {
	if plaintext == nil || *plaintext == "" {
		return nil, nil
	}

	secret, err := c.keyStore.GetSecret(ctx, domain)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrDomainNotConfigured, domain)
		}
		return nil, err
	}
	defer cryptoDomain.Zero(secret)

	aead, err := c.aeadManager.CreateCipher(secret, c.algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(*plaintext), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to seal field for domain %s: %w", domain, err)
	}

	encoded := cryptoDomain.EncodedCiphertext{
		Algorithm:  c.algorithm,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}.String()

	return &encoded, nil
}

// DecryptField opens a stored ciphertext for the domain.
//
// Nil ciphertext returns nil without error. Any failure to parse, fetch the
// secret, or authenticate resolves to nil under the containment policy.
func (c *DomainFieldCodec) DecryptField(
	ctx context.Context,
	domain string,
	ciphertext *string,
) *string {
	if ciphertext == nil {
		return nil
	}

	plaintext, err := c.openField(ctx, domain, *ciphertext)
	if err != nil {
		c.containDecryptFailure(ctx, domain, err)
		return nil
	}

	value := string(plaintext)
	return &value
}

// EncryptJSON seals a structured value by serializing it to canonical JSON
// first (object keys are sorted by encoding/json). Nil or empty maps return
// nil ciphertext, matching the null-propagation rule for plain fields.
func (c *DomainFieldCodec) EncryptJSON(
	ctx context.Context,
	domain string,
	value map[string]any,
) (*string, error) {
	if len(value) == 0 {
		return nil, nil
	}

	serialized, err := json.Marshal(value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unserializable metadata: %v", err))
	}

	plaintext := string(serialized)
	return c.EncryptField(ctx, domain, &plaintext)
}

// DecryptJSON opens and parses a structured field. Parse failures follow the
// same containment policy as authentication failures.
func (c *DomainFieldCodec) DecryptJSON(
	ctx context.Context,
	domain string,
	ciphertext *string,
) map[string]any {
	plaintext := c.DecryptField(ctx, domain, ciphertext)
	if plaintext == nil {
		return nil
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(*plaintext), &value); err != nil {
		c.containDecryptFailure(ctx, domain, fmt.Errorf("failed to parse structured field: %w", err))
		return nil
	}

	return value
}

// openField performs the parse, key fetch and AEAD open for one field.
func (c *DomainFieldCodec) openField(ctx context.Context, domain, ciphertext string) ([]byte, error) {
	encoded, err := cryptoDomain.ParseCiphertext(ciphertext)
	if err != nil {
		return nil, err
	}

	secret, err := c.keyStore.GetSecret(ctx, domain)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(secret)

	aead, err := c.aeadManager.CreateCipher(secret, encoded.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(encoded.Ciphertext, encoded.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// containDecryptFailure records the warning and counter for a contained field.
// The ciphertext itself is never logged.
func (c *DomainFieldCodec) containDecryptFailure(ctx context.Context, domain string, err error) {
	if c.logger != nil {
		c.logger.Warn("field decryption failed, resolving field to null",
			slog.String("domain", domain),
			slog.Any("error", err),
		)
	}
	if c.metrics != nil {
		c.metrics.RecordOperation(ctx, "crypto", "field_decrypt", "error")
	}
}
