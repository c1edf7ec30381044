package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	cryptoService "github.com/fieldvault/fieldvault/internal/crypto/service"
)

// RunCreateDomainKey provisions the secret for an encryption domain.
// The secret material is generated randomly, wrapped by the configured KMS
// keeper and stored in the database. Idempotent: running it again for a domain
// that already has a secret is a no-op, so existing ciphertext stays decryptable.
//
// Requirements: Database must be migrated and KMS_KEY_URI must be set.
func RunCreateDomainKey(
	ctx context.Context,
	keyStore cryptoService.KeyStore,
	logger *slog.Logger,
	domain string,
) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return fmt.Errorf("domain must not be empty")
	}

	logger.Info("provisioning domain secret", slog.String("domain", domain))

	if err := keyStore.CreateSecret(ctx, domain, nil); err != nil {
		return fmt.Errorf("failed to provision domain secret: %w", err)
	}

	logger.Info("domain secret ready", slog.String("domain", domain))
	return nil
}
