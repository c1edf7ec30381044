package app

import (
	"fmt"

	recordsHTTP "github.com/fieldvault/fieldvault/internal/records/http"
	recordsRepository "github.com/fieldvault/fieldvault/internal/records/repository"
	recordsUsecase "github.com/fieldvault/fieldvault/internal/records/usecase"
)

// RecordRepository returns the protected record repository based on the database driver.
func (c *Container) RecordRepository() (recordsUsecase.RecordRepository, error) {
	var err error
	c.recordRepositoryInit.Do(func() {
		c.recordRepository, err = c.initRecordRepository()
		if err != nil {
			c.initErrors["recordRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordRepository"]; exists {
		return nil, storedErr
	}
	return c.recordRepository, nil
}

// RecordUseCase returns the record use case instance.
func (c *Container) RecordUseCase() (recordsUsecase.RecordUseCase, error) {
	var err error
	c.recordUseCaseInit.Do(func() {
		c.recordUseCase, err = c.initRecordUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.recordUseCase, nil
}

// BackfillUseCase returns the backfill use case instance.
func (c *Container) BackfillUseCase() (recordsUsecase.BackfillUseCase, error) {
	var err error
	c.backfillUseCaseInit.Do(func() {
		c.backfillUseCase, err = c.initBackfillUseCase()
		if err != nil {
			c.initErrors["backfillUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["backfillUseCase"]; exists {
		return nil, storedErr
	}
	return c.backfillUseCase, nil
}

// ProvisionUseCase returns the default-entry provisioner instance.
func (c *Container) ProvisionUseCase() (recordsUsecase.ProvisionUseCase, error) {
	var err error
	c.provisionUseCaseInit.Do(func() {
		c.provisionUseCase, err = c.initProvisionUseCase()
		if err != nil {
			c.initErrors["provisionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["provisionUseCase"]; exists {
		return nil, storedErr
	}
	return c.provisionUseCase, nil
}

// RecordHandler returns the HTTP handler for protected records.
func (c *Container) RecordHandler() (*recordsHTTP.RecordHandler, error) {
	var err error
	c.recordHandlerInit.Do(func() {
		c.recordHandler, err = c.initRecordHandler()
		if err != nil {
			c.initErrors["recordHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordHandler"]; exists {
		return nil, storedErr
	}
	return c.recordHandler, nil
}

// initRecordRepository creates the record repository based on the database driver.
func (c *Container) initRecordRepository() (recordsUsecase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return recordsRepository.NewPostgreSQLRecordRepository(db), nil
	case "mysql":
		return recordsRepository.NewMySQLRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRecordUseCase creates the record use case with all its dependencies.
func (c *Container) initRecordUseCase() (recordsUsecase.RecordUseCase, error) {
	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
	}

	codec, err := c.FieldCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get field codec for record use case: %w", err)
	}

	useCase := recordsUsecase.NewRecordUseCase(repo, codec, c.config.EncryptionDomain)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
		}
		useCase = recordsUsecase.NewRecordUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initBackfillUseCase creates the backfill use case with all its dependencies.
func (c *Container) initBackfillUseCase() (recordsUsecase.BackfillUseCase, error) {
	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for backfill use case: %w", err)
	}

	codec, err := c.FieldCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get field codec for backfill use case: %w", err)
	}

	return recordsUsecase.NewBackfillUseCase(
		repo,
		codec,
		c.config.EncryptionDomain,
		c.config.BackfillBatchSize,
		c.Logger(),
	), nil
}

// initProvisionUseCase creates the default-entry provisioner with all its dependencies.
func (c *Container) initProvisionUseCase() (recordsUsecase.ProvisionUseCase, error) {
	gateway, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for provision use case: %w", err)
	}

	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for provision use case: %w", err)
	}

	return recordsUsecase.NewProvisionUseCase(gateway, repo, c.Logger()), nil
}

// initRecordHandler creates the HTTP handler for protected records.
func (c *Container) initRecordHandler() (*recordsHTTP.RecordHandler, error) {
	recordUseCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for record handler: %w", err)
	}

	provisionUseCase, err := c.ProvisionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get provision use case for record handler: %w", err)
	}

	return recordsHTTP.NewRecordHandler(recordUseCase, provisionUseCase, c.Logger()), nil
}
