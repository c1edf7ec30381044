package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/fieldvault/fieldvault/internal/crypto/domain"
	cryptoRepository "github.com/fieldvault/fieldvault/internal/crypto/repository"
	cryptoService "github.com/fieldvault/fieldvault/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = c.initKMSService()
	})
	return c.kmsService
}

// KMSKeeper returns the keeper that wraps domain secrets at rest.
func (c *Container) KMSKeeper() (cryptoDomain.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		c.kmsKeeper, err = c.initKMSKeeper()
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = c.initAEADManager()
	})
	return c.aeadManager
}

// DomainKeyRepository returns the domain key repository based on the database driver.
func (c *Container) DomainKeyRepository() (cryptoService.DomainKeyRepository, error) {
	var err error
	c.domainKeyRepositoryInit.Do(func() {
		c.domainKeyRepository, err = c.initDomainKeyRepository()
		if err != nil {
			c.initErrors["domainKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["domainKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.domainKeyRepository, nil
}

// KeyStore returns the key store serving domain secrets.
func (c *Container) KeyStore() (cryptoService.KeyStore, error) {
	var err error
	c.keyStoreInit.Do(func() {
		c.keyStore, err = c.initKeyStore()
		if err != nil {
			c.initErrors["keyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// FieldCodec returns the field codec binding encryption domains to the cipher engine.
func (c *Container) FieldCodec() (cryptoService.FieldCodec, error) {
	var err error
	c.fieldCodecInit.Do(func() {
		c.fieldCodec, err = c.initFieldCodec()
		if err != nil {
			c.initErrors["fieldCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldCodec"]; exists {
		return nil, storedErr
	}
	return c.fieldCodec, nil
}

// initKMSService creates the KMS service for wrapping and unwrapping domain secrets.
func (c *Container) initKMSService() cryptoService.KMSService {
	return cryptoService.NewKMSService()
}

// initKMSKeeper opens the keeper for the configured KMS key URI.
func (c *Container) initKMSKeeper() (cryptoDomain.KMSKeeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, fmt.Errorf("KMS_KEY_URI must be set to wrap domain secrets")
	}

	kmsService := c.KMSService()

	keeper, err := kmsService.OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	return keeper, nil
}

// initAEADManager creates the AEAD manager service.
func (c *Container) initAEADManager() cryptoService.AEADManager {
	return cryptoService.NewAEADManager()
}

// initDomainKeyRepository creates the domain key repository based on the database driver.
func (c *Container) initDomainKeyRepository() (cryptoService.DomainKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for domain key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLDomainKeyRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLDomainKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyStore creates the database key store wrapped by the caching layer.
func (c *Container) initKeyStore() (cryptoService.KeyStore, error) {
	repo, err := c.DomainKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get domain key repository for key store: %w", err)
	}

	keeper, err := c.KMSKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms keeper for key store: %w", err)
	}

	keyStore := cryptoService.NewDatabaseKeyStore(repo, keeper)

	return cryptoService.NewCachingKeyStore(keyStore, c.config.KeyCacheTTL), nil
}

// initFieldCodec creates the field codec with all its dependencies.
func (c *Container) initFieldCodec() (cryptoService.FieldCodec, error) {
	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for field codec: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse encryption algorithm: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for field codec: %w", err)
	}

	return cryptoService.NewDomainFieldCodec(
		keyStore,
		c.AEADManager(),
		algorithm,
		c.Logger(),
		businessMetrics,
	), nil
}
